package annopage

import (
	"context"
	"time"

	"github.com/annosync/annosync/record"
)

// Entry is a single page/language full-text annotation for a record.
type Entry struct {
	// The record this entry belongs to.
	RecordID record.ID

	// The page within the record.
	PageID string

	// The language of the full-text value; empty when unknown.
	Language string

	// The full-text content of the page.
	Value string

	// The media resource the full-text value was derived from.
	TargetID string

	// The last time this entry was modified.
	Modified time.Time

	// Active is false for deprecated or withdrawn entries.
	Active bool
}

// Store is implemented by objects that persist annotation page entries.
type Store interface {
	// UpsertEntry creates a new entry or updates the existing entry with
	// the same record, page and language.
	UpsertEntry(ctx context.Context, entry *Entry) error

	// ExistsActive returns true if at least one active entry exists for
	// the specified record.
	ExistsActive(ctx context.Context, id record.ID) (bool, error)

	// Entries returns all active and inactive entries for a record.
	Entries(ctx context.Context, id record.ID) ([]*Entry, error)

	// ChangedSince returns an iterator for the IDs of records that own at
	// least one entry modified after the specified time. IDs are returned
	// ordered by dataset ID and then local ID.
	ChangedSince(ctx context.Context, since time.Time) (IDIterator, error)
}

// IDIterator is implemented by objects that can iterate record IDs.
type IDIterator interface {
	// Next advances the iterator. If no more items are available or an
	// error occurs, calls to Next return false. Calling Next after a
	// failed page fetch retries that fetch.
	Next() bool

	// Error returns the error of the last failed fetch. It is cleared by
	// the next successful one.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error

	// ID returns the currently fetched record ID.
	ID() record.ID
}
