package indexer

import (
	"sync/atomic"

	"github.com/annosync/annosync/record"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Stats summarizes a job run.
type Stats struct {
	// A unique ID for the run.
	RunID string

	// Number of record IDs read from the job source.
	Processed int64

	// Number of records that needed no index changes.
	Discarded int64

	// Number of records dropped because of processing failures.
	Skipped int64

	// Number of documents written to and deleted from the index.
	Written int64
	Deleted int64

	// Number of chunks that completed the pipeline.
	Chunks int64
}

// Fields returns the stats as log fields.
func (s Stats) Fields() logrus.Fields {
	return logrus.Fields{
		"run_id":    s.RunID,
		"processed": s.Processed,
		"discarded": s.Discarded,
		"skipped":   s.Skipped,
		"written":   s.Written,
		"deleted":   s.Deleted,
		"chunks":    s.Chunks,
	}
}

// runState is shared by every chunk of a single job run. All counters are
// updated atomically.
type runState struct {
	job       string
	logger    *logrus.Entry
	skipLimit int64

	stats Stats
}

func newRunState(job string, skipLimit int, logger *logrus.Entry) *runState {
	return &runState{
		job:       job,
		logger:    logger,
		skipLimit: int64(skipLimit),
	}
}

func (r *runState) addProcessed(n int) {
	atomic.AddInt64(&r.stats.Processed, int64(n))
	itemsProcessed.WithLabelValues(r.job).Add(float64(n))
}

func (r *runState) addDiscarded() {
	atomic.AddInt64(&r.stats.Discarded, 1)
	itemsDiscarded.WithLabelValues(r.job).Inc()
}

func (r *runState) addWritten(n int) {
	atomic.AddInt64(&r.stats.Written, int64(n))
	docsWritten.WithLabelValues(r.job).Add(float64(n))
}

func (r *runState) addDeleted(n int) {
	atomic.AddInt64(&r.stats.Deleted, int64(n))
	docsDeleted.WithLabelValues(r.job).Add(float64(n))
}

// skip logs a failed record and counts it against the skip limit. It
// returns ErrSkipLimitExceeded once the limit is exceeded.
func (r *runState) skip(id record.ID, err error) error {
	n := atomic.AddInt64(&r.stats.Skipped, 1)
	itemsSkipped.WithLabelValues(r.job).Inc()
	r.logger.WithFields(logrus.Fields{
		"record_id": id.Key(),
		"err":       err.Error(),
	}).Error("skipping record")

	if n > r.skipLimit {
		return xerrors.Errorf("%d records failed: %w", n, ErrSkipLimitExceeded)
	}
	return nil
}

// snapshot returns a copy of the run stats.
func (r *runState) snapshot() Stats {
	return Stats{
		Processed: atomic.LoadInt64(&r.stats.Processed),
		Discarded: atomic.LoadInt64(&r.stats.Discarded),
		Skipped:   atomic.LoadInt64(&r.stats.Skipped),
		Written:   atomic.LoadInt64(&r.stats.Written),
		Deleted:   atomic.LoadInt64(&r.stats.Deleted),
		Chunks:    atomic.LoadInt64(&r.stats.Chunks),
	}
}
