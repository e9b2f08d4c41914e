package cdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/record"
	_ "github.com/lib/pq" // postgres driver
	"golang.org/x/xerrors"
)

// The number of record IDs fetched by each page of the change feed.
const defaultPageSize = 500

var (
	ensureSchemaQueries = []string{`
CREATE TABLE IF NOT EXISTS annopages (
	dataset_id TEXT NOT NULL,
	local_id TEXT NOT NULL,
	page_id TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	fulltext TEXT NOT NULL DEFAULT '',
	target_id TEXT NOT NULL DEFAULT '',
	modified TIMESTAMPTZ NOT NULL,
	active BOOLEAN NOT NULL,
	PRIMARY KEY (dataset_id, local_id, page_id, language)
)`,
		"CREATE INDEX IF NOT EXISTS annopages_modified_idx ON annopages (modified)",
	}

	upsertEntryQuery = `
INSERT INTO annopages (dataset_id, local_id, page_id, language, fulltext, target_id, modified, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (dataset_id, local_id, page_id, language) DO UPDATE SET
	fulltext=excluded.fulltext, target_id=excluded.target_id, modified=excluded.modified, active=excluded.active
`
	existsActiveQuery = "SELECT EXISTS(SELECT 1 FROM annopages WHERE dataset_id=$1 AND local_id=$2 AND active)"
	entriesQuery      = "SELECT page_id, language, fulltext, target_id, modified, active FROM annopages WHERE dataset_id=$1 AND local_id=$2"
	changedPageQuery  = `
SELECT DISTINCT dataset_id, local_id FROM annopages
WHERE modified > $1 AND (dataset_id, local_id) > ($2, $3)
ORDER BY dataset_id, local_id
LIMIT $4
`

	// Compile-time check for ensuring CockroachDBStore implements annopage.Store.
	_ annopage.Store = (*CockroachDBStore)(nil)
)

// CockroachDBStore implements an annotation page store backed by a
// cockroachdb (or any postgres-compatible) instance.
type CockroachDBStore struct {
	db       *sql.DB
	pageSize int
}

// NewCockroachDBStore returns a CockroachDBStore instance that connects to the
// database specified by dsn and ensures that the annopages table exists.
func NewCockroachDBStore(dsn string) (*CockroachDBStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for _, q := range ensureSchemaQueries {
		if _, err = db.Exec(q); err != nil {
			_ = db.Close()
			return nil, xerrors.Errorf("ensure schema: %w", err)
		}
	}

	return &CockroachDBStore{db: db, pageSize: defaultPageSize}, nil
}

// Close terminates the connection to the backing database.
func (s *CockroachDBStore) Close() error {
	return s.db.Close()
}

// UpsertEntry creates a new entry or updates an existing entry.
func (s *CockroachDBStore) UpsertEntry(ctx context.Context, e *annopage.Entry) error {
	_, err := s.db.ExecContext(ctx, upsertEntryQuery,
		e.RecordID.DatasetID, e.RecordID.LocalID, e.PageID, e.Language,
		e.Value, e.TargetID, e.Modified.UTC(), e.Active,
	)
	if err != nil {
		return xerrors.Errorf("upsert entry: %w", err)
	}
	return nil
}

// ExistsActive returns true if the record has at least one active entry.
func (s *CockroachDBStore) ExistsActive(ctx context.Context, id record.ID) (bool, error) {
	var exists bool
	row := s.db.QueryRowContext(ctx, existsActiveQuery, id.DatasetID, id.LocalID)
	if err := row.Scan(&exists); err != nil {
		return false, xerrors.Errorf("exists active: %w", err)
	}
	return exists, nil
}

// Entries returns all entries for a record.
func (s *CockroachDBStore) Entries(ctx context.Context, id record.ID) ([]*annopage.Entry, error) {
	rows, err := s.db.QueryContext(ctx, entriesQuery, id.DatasetID, id.LocalID)
	if err != nil {
		return nil, xerrors.Errorf("entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*annopage.Entry
	for rows.Next() {
		e := &annopage.Entry{RecordID: id}
		if err = rows.Scan(&e.PageID, &e.Language, &e.Value, &e.TargetID, &e.Modified, &e.Active); err != nil {
			return nil, xerrors.Errorf("entries: %w", err)
		}
		e.Modified = e.Modified.UTC()
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, xerrors.Errorf("entries: %w", err)
	}
	return out, nil
}

// ChangedSince returns a paging iterator over the IDs of records with at
// least one entry modified after since.
func (s *CockroachDBStore) ChangedSince(ctx context.Context, since time.Time) (annopage.IDIterator, error) {
	it := &changedIterator{ctx: ctx, db: s.db, since: since.UTC(), pageSize: s.pageSize}
	if err := it.fetchPage(); err != nil {
		return nil, xerrors.Errorf("changed since: %w", err)
	}
	return it, nil
}
