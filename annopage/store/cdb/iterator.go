package cdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/annosync/annosync/record"
	"golang.org/x/xerrors"
)

// changedIterator is an annopage.IDIterator that pages through the change
// feed using the last seen (dataset_id, local_id) pair as a keyset cursor.
type changedIterator struct {
	ctx      context.Context
	db       *sql.DB
	since    time.Time
	pageSize int

	page      []record.ID
	pageIdx   int
	exhausted bool

	latchedID record.ID
	lastErr   error
}

// Next implements annopage.IDIterator.
func (i *changedIterator) Next() bool {
	if i.pageIdx >= len(i.page) {
		if i.exhausted {
			return false
		}
		if i.lastErr = i.fetchPage(); i.lastErr != nil || len(i.page) == 0 {
			return false
		}
	}

	i.latchedID = i.page[i.pageIdx]
	i.pageIdx++
	return true
}

// fetchPage loads the page of IDs that follows the last ID of the current
// page. The current page is kept when the query fails.
func (i *changedIterator) fetchPage() error {
	var afterDataset, afterLocal string
	if n := len(i.page); n != 0 {
		afterDataset, afterLocal = i.page[n-1].DatasetID, i.page[n-1].LocalID
	}

	rows, err := i.db.QueryContext(i.ctx, changedPageQuery, i.since, afterDataset, afterLocal, i.pageSize)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	page := make([]record.ID, 0, i.pageSize)
	for rows.Next() {
		var id record.ID
		if err = rows.Scan(&id.DatasetID, &id.LocalID); err != nil {
			return err
		}
		page = append(page, id)
	}
	if err = rows.Err(); err != nil {
		return err
	}

	i.page, i.pageIdx = page, 0
	i.exhausted = len(page) < i.pageSize
	return nil
}

// Error implements annopage.IDIterator.
func (i *changedIterator) Error() error {
	if i.lastErr != nil {
		return xerrors.Errorf("changed records iterator: %w", i.lastErr)
	}
	return nil
}

// Close implements annopage.IDIterator.
func (i *changedIterator) Close() error {
	i.page = nil
	i.exhausted = true
	return nil
}

// ID implements annopage.IDIterator.
func (i *changedIterator) ID() record.ID {
	return i.latchedID
}
