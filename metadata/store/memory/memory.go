package memory

import (
	"context"
	"sync"

	"github.com/annosync/annosync/metadata"
	"golang.org/x/xerrors"
)

// Compile-time check to ensure InMemoryStore implements metadata.Store.
var _ metadata.Store = (*InMemoryStore)(nil)

// InMemoryStore is a metadata.Store that keeps documents in memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}
}

// NewInMemoryStore returns an empty in-memory metadata store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]map[string]interface{})}
}

// Put inserts or replaces the document for key.
func (s *InMemoryStore) Put(_ context.Context, key string, fields map[string]interface{}) error {
	fcopy := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		fcopy[k] = v
	}

	s.mu.Lock()
	s.docs[key] = fcopy
	s.mu.Unlock()
	return nil
}

// FindByID looks up the document for key.
func (s *InMemoryStore) FindByID(_ context.Context, key string) (*metadata.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, found := s.docs[key]
	if !found {
		return nil, xerrors.Errorf("find by ID: %w", metadata.ErrNotFound)
	}
	return metadata.NewDocument(fields), nil
}

// Delete removes the document for key. Deleting a missing document is a no-op.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}
