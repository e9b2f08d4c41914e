// Package indexer keeps a full-text index in sync with the annotation page
// source store and the metadata index.
package indexer

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/pipeline"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Names of the supported sync jobs.
const (
	JobFulltextSync = "fulltext-sync"
	JobMetadataSync = "metadata-sync"
)

// ErrSkipLimitExceeded is returned when more records fail than a job run
// tolerates.
var ErrSkipLimitExceeded = xerrors.New("skip limit exceeded")

// Config encapsulates the settings for configuring an Indexer.
type Config struct {
	// The annotation page source store.
	SourceStore SourceStore

	// The metadata index.
	MetadataIndex MetadataIndex

	// The full-text index to keep in sync.
	FulltextIndex FulltextIndex

	// The full-text index schema. Content in languages without a declared
	// field is stored in the language-less field.
	Schema *index.Schema

	// The number of records processed as a single chunk.
	ChunkSize int

	// The maximum number of records processed concurrently.
	ThreadPoolSize int

	// The maximum number of chunks in flight.
	ThrottleLimit int

	// The number of record failures a job run tolerates before aborting.
	SkipLimit int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.SourceStore == nil {
		err = multierror.Append(err, xerrors.Errorf("source store has not been provided"))
	}
	if cfg.MetadataIndex == nil {
		err = multierror.Append(err, xerrors.Errorf("metadata index has not been provided"))
	}
	if cfg.FulltextIndex == nil {
		err = multierror.Append(err, xerrors.Errorf("fulltext index has not been provided"))
	}
	if cfg.ChunkSize <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for chunk size"))
	}
	if cfg.ThreadPoolSize <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for thread pool size"))
	}
	if cfg.ThrottleLimit <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for throttle limit"))
	}
	if cfg.SkipLimit < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for skip limit"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Indexer runs the fulltext and metadata sync jobs. Each job streams record
// chunks through a pipeline with the following stages:
//
// - Run every record of the chunk through the job's item processors.
// - Write the staged updates and delete the documents of removed records.
type Indexer struct {
	cfg Config

	fulltextPipe *pipeline.Pipeline
	metadataPipe *pipeline.Pipeline
}

// New returns a new Indexer instance.
func New(cfg Config) (*Indexer, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("indexer: config validation failed: %w", err)
	}

	// The item pool is shared by both jobs.
	tokens := make(chan struct{}, cfg.ThreadPoolSize)
	merger := NewMetadataMerger(cfg.MetadataIndex)

	return &Indexer{
		cfg: cfg,
		fulltextPipe: assembleJobPipeline(cfg, tokens, processorChain{
			NewActionDeriver(cfg.SourceStore, cfg.FulltextIndex),
			NewFulltextFieldBuilder(cfg.SourceStore, cfg.Schema),
			merger,
		}),
		metadataPipe: assembleJobPipeline(cfg, tokens, processorChain{
			merger,
		}),
	}, nil
}

// assembleJobPipeline creates a job pipeline that runs chain over each
// record.
func assembleJobPipeline(cfg Config, tokens chan struct{}, chain ItemProcessor) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.FixedWorkerPool(newChunkProcessor(chain, tokens), cfg.ThrottleLimit),
		pipeline.Join(
			&upsertWriter{index: cfg.FulltextIndex},
			&deleteWriter{index: cfg.FulltextIndex},
		),
	)
}

// SyncFulltext indexes every record whose annotation pages changed after
// since. Timestamps are compared at index.TimestampPrecision, so entries
// modified within the same millisecond as since are not selected again.
// Calls to SyncFulltext block until all changed records have been
// processed, the skip limit is exceeded or the context expires.
func (ix *Indexer) SyncFulltext(ctx context.Context, since time.Time) (Stats, error) {
	it, err := ix.cfg.SourceStore.ChangedSince(ctx, endOfTick(since))
	if err != nil {
		return Stats{}, xerrors.Errorf("fulltext sync: %w", err)
	}
	return ix.run(ctx, JobFulltextSync, ix.fulltextPipe, changedRecordIterator{IDIterator: it})
}

// SyncMetadata refreshes the metadata fields of every document in the
// full-text index. Calls to SyncMetadata block until all documents have
// been processed, the skip limit is exceeded or the context expires.
func (ix *Indexer) SyncMetadata(ctx context.Context) (Stats, error) {
	it, err := ix.cfg.FulltextIndex.Records(ctx)
	if err != nil {
		return Stats{}, xerrors.Errorf("metadata sync: %w", err)
	}
	return ix.run(ctx, JobMetadataSync, ix.metadataPipe, &indexedRecordIterator{Iterator: it})
}

func (ix *Indexer) run(ctx context.Context, job string, p *pipeline.Pipeline, it itemIterator) (Stats, error) {
	runID := uuid.New().String()
	run := newRunState(job, ix.cfg.SkipLimit, ix.cfg.Logger.WithFields(logrus.Fields{
		"job":    job,
		"run_id": runID,
	}))

	sink := new(countingSink)
	err := p.Process(ctx, &chunkSource{it: it, size: ix.cfg.ChunkSize, run: run}, sink)
	if closeErr := it.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	// The pipeline stops quietly when ctx is cancelled.
	if err == nil {
		err = ctx.Err()
	}

	run.stats.Chunks = sink.getCount()
	stats := run.snapshot()
	stats.RunID = runID
	if err != nil {
		return stats, xerrors.Errorf("%s: %w", job, err)
	}
	return stats, nil
}

// endOfTick returns the last instant of the index timestamp unit that
// contains t.
func endOfTick(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Truncate(index.TimestampPrecision).Add(index.TimestampPrecision - time.Nanosecond)
}
