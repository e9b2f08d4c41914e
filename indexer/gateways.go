package indexer

import (
	"context"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	"github.com/annosync/annosync/record"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/annosync/annosync/indexer SourceStore,MetadataIndex,FulltextIndex
//go:generate mockgen -package mocks -destination mocks/mock_annopage.go github.com/annosync/annosync/annopage IDIterator
//go:generate mockgen -package mocks -destination mocks/mock_index.go github.com/annosync/annosync/fulltext/index Iterator

// SourceStore is implemented by objects that provide read access to the
// annotation page entries of a record.
type SourceStore interface {
	// ExistsActive returns true if the record owns at least one active entry.
	ExistsActive(ctx context.Context, id record.ID) (bool, error)

	// Entries returns all active and inactive entries for a record.
	Entries(ctx context.Context, id record.ID) ([]*annopage.Entry, error)

	// ChangedSince returns an iterator for the IDs of records with entries
	// modified after the specified time.
	ChangedSince(ctx context.Context, since time.Time) (annopage.IDIterator, error)
}

// MetadataIndex is implemented by objects that can look up the metadata
// document of a record.
type MetadataIndex interface {
	// FindByID returns the metadata document for a record key or
	// metadata.ErrNotFound.
	FindByID(ctx context.Context, key string) (*metadata.Document, error)
}

// FulltextIndex is implemented by the full-text index that is kept in sync
// with the source store and the metadata index.
type FulltextIndex interface {
	// Exists returns true if a document exists for the record key.
	Exists(ctx context.Context, key string) (bool, error)

	// Schema returns the set of fields declared by the index.
	Schema(ctx context.Context) (*index.Schema, error)

	// Records returns a cursor-paged iterator over all indexed documents.
	Records(ctx context.Context) (index.Iterator, error)

	// Update applies a batch of partial document updates.
	Update(ctx context.Context, updates []*index.Update) error

	// Delete removes a batch of documents by key.
	Delete(ctx context.Context, keys []string) error

	// LatestTimestamp returns the most recent value of a timestamp field.
	LatestTimestamp(ctx context.Context, field string) (time.Time, error)
}
