// Package metadatasync implements the service that refreshes the metadata
// fields of every document in the full-text index.
package metadatasync

import (
	"context"
	"io/ioutil"

	"github.com/annosync/annosync/indexer"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/annosync/annosync/service/metadatasync Syncer

// Syncer is implemented by objects that can refresh indexed metadata.
type Syncer interface {
	SyncMetadata(ctx context.Context) (indexer.Stats, error)
}

// Config encapsulates the settings for configuring the metadata-sync service.
type Config struct {
	// The indexer that runs the job.
	Syncer Syncer

	// A clock instance for measuring the run time. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Syncer == nil {
		err = multierror.Append(err, xerrors.Errorf("syncer has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service runs a single metadata-sync job.
type Service struct {
	cfg Config
}

// NewService creates a new metadata-sync service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("metadata-sync service: config validation failed: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return indexer.JobMetadataSync }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.Info("starting job")
	start := svc.cfg.Clock.Now()
	stats, err := svc.cfg.Syncer.SyncMetadata(ctx)
	logger := svc.cfg.Logger.WithFields(stats.Fields()).WithField("elapsed", svc.cfg.Clock.Now().Sub(start).String())
	if err != nil {
		logger.WithField("err", err.Error()).Error("job failed")
		return err
	}

	logger.Info("completed job")
	return nil
}
