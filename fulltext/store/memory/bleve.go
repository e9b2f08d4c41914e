package memory

import (
	"context"
	"sync"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	"github.com/blevesearch/bleve/v2"
	"golang.org/x/xerrors"
)

// The size of each page of records fetched by the iterator.
const batchSize = 10

// DefaultSchemaFields lists the fields declared by an in-memory index that
// was created without an explicit field list.
var DefaultSchemaFields = []string{
	index.FieldKey,
	index.FieldFulltextModified,
	index.FieldMetadataModified,
	index.FieldIssued,
	index.FieldIsFulltext,
	index.FulltextField(""),
	index.FulltextField("de"),
	index.FulltextField("en"),
	index.FulltextField("es"),
	index.FulltextField("fr"),
	index.FulltextField("it"),
	index.FulltextField("nl"),
	index.FulltextField("pl"),
}

// Compile-time check to ensure InMemoryBleveIndexer implements index.Indexer.
var _ index.Indexer = (*InMemoryBleveIndexer)(nil)

// InMemoryBleveIndexer is an index.Indexer that keeps documents in memory
// and uses an in-memory bleve index for sorting and paging through them.
type InMemoryBleveIndexer struct {
	mu     sync.RWMutex
	docs   map[string]map[string]interface{}
	schema []string

	idx bleve.Index
}

// NewInMemoryBleveIndexer creates an in-memory indexer whose schema declares
// the specified fields. If no fields are given, DefaultSchemaFields is used.
func NewInMemoryBleveIndexer(schemaFields ...string) (*InMemoryBleveIndexer, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	if len(schemaFields) == 0 {
		schemaFields = DefaultSchemaFields
	}

	return &InMemoryBleveIndexer{
		idx:    idx,
		docs:   make(map[string]map[string]interface{}),
		schema: append([]string(nil), schemaFields...),
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *InMemoryBleveIndexer) Close() error {
	return i.idx.Close()
}

// Exists returns true if a document with the specified key exists.
func (i *InMemoryBleveIndexer) Exists(_ context.Context, key string) (bool, error) {
	i.mu.RLock()
	_, found := i.docs[key]
	i.mu.RUnlock()
	return found, nil
}

// FindByID returns a copy of the stored document fields.
func (i *InMemoryBleveIndexer) FindByID(_ context.Context, key string) (map[string]interface{}, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	doc, found := i.docs[key]
	if !found {
		return nil, xerrors.Errorf("find by ID: %w", index.ErrNotFound)
	}
	return copyDoc(doc), nil
}

// Schema returns the fields declared by the index.
func (i *InMemoryBleveIndexer) Schema(context.Context) (*index.Schema, error) {
	return index.NewSchema(i.schema...), nil
}

// Update applies a batch of partial updates.
func (i *InMemoryBleveIndexer) Update(_ context.Context, updates []*index.Update) error {
	for _, u := range updates {
		if u.Key == "" {
			return xerrors.Errorf("update: %w", index.ErrMissingKey)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	for _, u := range updates {
		doc := i.docs[u.Key]
		if doc == nil {
			doc = map[string]interface{}{index.FieldKey: u.Key}
			i.docs[u.Key] = doc
		}

		for _, f := range u.Fields {
			if f.Name == index.FieldKey {
				continue
			}
			if f.Op == index.OpSet && index.IsEmptyValue(f.Value) {
				delete(doc, f.Name)
				continue
			}
			doc[f.Name] = f.Value
		}

		if err := batch.Index(u.Key, doc); err != nil {
			return xerrors.Errorf("update: %w", err)
		}
	}

	if err := i.idx.Batch(batch); err != nil {
		return xerrors.Errorf("update: %w", err)
	}
	return nil
}

// Delete removes a batch of documents.
func (i *InMemoryBleveIndexer) Delete(_ context.Context, keys []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.idx.NewBatch()
	for _, key := range keys {
		delete(i.docs, key)
		batch.Delete(key)
	}

	if err := i.idx.Batch(batch); err != nil {
		return xerrors.Errorf("delete: %w", err)
	}
	return nil
}

// LatestTimestamp returns the most recent value of field across all documents.
func (i *InMemoryBleveIndexer) LatestTimestamp(_ context.Context, field string) (time.Time, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	searchReq := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 1, 0, false)
	searchReq.SortBy([]string{"-" + field})
	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return time.Time{}, xerrors.Errorf("latest timestamp: %w", err)
	}

	if len(rs.Hits) == 0 {
		return time.Time{}, nil
	}

	// Documents without the field sort last.
	v, found := i.docs[rs.Hits[0].ID][field]
	if !found {
		return time.Time{}, nil
	}

	ts, err := metadata.ParseTimestamp(v)
	if err != nil {
		return time.Time{}, xerrors.Errorf("latest timestamp: %w", err)
	}
	return ts, nil
}

// Records returns an iterator over all documents in ascending key order.
func (i *InMemoryBleveIndexer) Records(context.Context) (index.Iterator, error) {
	return &bleveIterator{idx: i}, nil
}

// recordFor builds the iterator record for the specified document key.
func (i *InMemoryBleveIndexer) recordFor(key string) *index.Record {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rec := &index.Record{Key: key}
	if v, found := i.docs[key][index.FieldMetadataModified]; found {
		rec.MetadataModified, _ = metadata.ParseTimestamp(v)
	}
	return rec
}

func copyDoc(doc map[string]interface{}) map[string]interface{} {
	dcopy := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		dcopy[k] = v
	}
	return dcopy
}
