package metadata

import "context"

// FieldID is the field holding a document's canonical record key.
const FieldID = "europeana_id"

// Store is implemented by objects that provide access to metadata documents.
type Store interface {
	// Put inserts or replaces the metadata document for a record key.
	Put(ctx context.Context, key string, fields map[string]interface{}) error

	// FindByID looks up the metadata document for a record key. If no
	// document exists, FindByID returns ErrNotFound.
	FindByID(ctx context.Context, key string) (*Document, error)
}
