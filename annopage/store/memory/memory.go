package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/record"
)

// Compile-time check to ensure InMemoryStore implements annopage.Store.
var _ annopage.Store = (*InMemoryStore)(nil)

type entryKey struct {
	pageID   string
	language string
}

// InMemoryStore implements an annotation page store that keeps its entries
// in memory. It is safe for concurrent use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[record.ID]map[entryKey]*annopage.Entry
}

// NewInMemoryStore returns an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[record.ID]map[entryKey]*annopage.Entry),
	}
}

// UpsertEntry creates a new entry or updates an existing one.
func (s *InMemoryStore) UpsertEntry(_ context.Context, entry *annopage.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.records[entry.RecordID]
	if entries == nil {
		entries = make(map[entryKey]*annopage.Entry)
		s.records[entry.RecordID] = entries
	}

	ecopy := new(annopage.Entry)
	*ecopy = *entry
	entries[entryKey{pageID: entry.PageID, language: entry.Language}] = ecopy
	return nil
}

// ExistsActive returns true if the record has at least one active entry.
func (s *InMemoryStore) ExistsActive(_ context.Context, id record.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.records[id] {
		if entry.Active {
			return true, nil
		}
	}
	return false, nil
}

// Entries returns copies of all entries for a record.
func (s *InMemoryStore) Entries(_ context.Context, id record.ID) ([]*annopage.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*annopage.Entry, 0, len(s.records[id]))
	for _, entry := range s.records[id] {
		ecopy := new(annopage.Entry)
		*ecopy = *entry
		out = append(out, ecopy)
	}
	return out, nil
}

// ChangedSince returns an iterator over the IDs of records with at least one
// entry modified after since.
func (s *InMemoryStore) ChangedSince(_ context.Context, since time.Time) (annopage.IDIterator, error) {
	s.mu.RLock()
	var ids []record.ID
	for id, entries := range s.records {
		for _, entry := range entries {
			if entry.Modified.After(since) {
				ids = append(ids, id)
				break
			}
		}
	}
	s.mu.RUnlock()

	sort.Slice(ids, func(l, r int) bool {
		if ids[l].DatasetID != ids[r].DatasetID {
			return ids[l].DatasetID < ids[r].DatasetID
		}
		return ids[l].LocalID < ids[r].LocalID
	})
	return &idIterator{ids: ids}, nil
}
