package service

import (
	"github.com/annosync/annosync/indexer"
	"golang.org/x/xerrors"
)

// ErrUnknownJob is returned for job names that do not match a sync job.
var ErrUnknownJob = xerrors.New("unknown job")

// ResolveJob validates a job name. An empty name selects the fulltext-sync
// job.
func ResolveJob(name string) (string, error) {
	switch name {
	case "":
		return indexer.JobFulltextSync, nil
	case indexer.JobFulltextSync, indexer.JobMetadataSync:
		return name, nil
	default:
		return "", xerrors.Errorf("%q: %w", name, ErrUnknownJob)
	}
}
