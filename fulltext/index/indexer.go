package index

import (
	"context"
	"time"
)

// Indexer is implemented by full-text index stores.
type Indexer interface {
	// Exists returns true if a document with the specified key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// FindByID returns the stored fields of a document or ErrNotFound.
	FindByID(ctx context.Context, key string) (map[string]interface{}, error)

	// Schema returns the set of fields declared by the index.
	Schema(ctx context.Context) (*Schema, error)

	// Records returns an iterator over every document in the index in
	// ascending key order.
	Records(ctx context.Context) (Iterator, error)

	// Update applies a batch of partial updates. Documents that do not
	// exist yet are created.
	Update(ctx context.Context, updates []*Update) error

	// Delete removes a batch of documents by key. Unknown keys are
	// ignored.
	Delete(ctx context.Context, keys []string) error

	// LatestTimestamp returns the most recent value of a timestamp field
	// across all documents, or the zero time if no document has it.
	LatestTimestamp(ctx context.Context, field string) (time.Time, error)
}

// Record is a document summary returned by an Iterator.
type Record struct {
	// The document key.
	Key string

	// The stored value of FieldMetadataModified; zero if missing.
	MetadataModified time.Time
}

// Iterator is implemented by objects that can page through index documents.
type Iterator interface {
	// Next loads the next record. It returns false if no more records
	// are available or an error occurs. A call following a failed fetch
	// resumes from the same position.
	Next() bool

	// Error returns the error of the last failed fetch, if any.
	Error() error

	// Close releases any resources held by the iterator.
	Close() error

	// Record returns the current record.
	Record() *Record
}
