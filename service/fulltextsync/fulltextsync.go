// Package fulltextsync implements the service that incrementally indexes
// records whose annotation pages have changed.
package fulltextsync

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/indexer"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/annosync/annosync/service/fulltextsync Syncer,IndexAPI

// Syncer is implemented by objects that can index changed records.
type Syncer interface {
	SyncFulltext(ctx context.Context, since time.Time) (indexer.Stats, error)
}

// IndexAPI provides the high-water mark of the full-text index.
type IndexAPI interface {
	LatestTimestamp(ctx context.Context, field string) (time.Time, error)
}

// Config encapsulates the settings for configuring the fulltext-sync service.
type Config struct {
	// The indexer that runs the job.
	Syncer Syncer

	// An API for querying the full-text index.
	IndexAPI IndexAPI

	// Records changed after this time are indexed. If zero, the most
	// recent full-text modification time in the index is used instead.
	Since time.Time

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
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("index API has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service runs a single fulltext-sync job.
type Service struct {
	cfg Config
}

// NewService creates a new fulltext-sync service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("fulltext-sync service: config validation failed: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return indexer.JobFulltextSync }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	since := svc.cfg.Since
	if since.IsZero() {
		latest, err := svc.cfg.IndexAPI.LatestTimestamp(ctx, index.FieldFulltextModified)
		if err != nil {
			return xerrors.Errorf("determine start time: %w", err)
		}
		since = latest
	}

	svc.cfg.Logger.WithField("since", since.Format(time.RFC3339)).Info("starting job")
	start := svc.cfg.Clock.Now()
	stats, err := svc.cfg.Syncer.SyncFulltext(ctx, since)
	logger := svc.cfg.Logger.WithFields(stats.Fields()).WithField("elapsed", svc.cfg.Clock.Now().Sub(start).String())
	if err != nil {
		logger.WithField("err", err.Error()).Error("job failed")
		return err
	}

	logger.Info("completed job")
	return nil
}
