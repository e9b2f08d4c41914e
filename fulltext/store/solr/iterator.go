package solr

import (
	"context"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	solrgo "github.com/stevenferrer/solr-go"
	"golang.org/x/xerrors"
)

// keysetIterator implements index.Iterator by paging through documents in
// key order. The continuation token is the last key of the previous page;
// iteration ends when a fetch does not advance it.
type keysetIterator struct {
	ctx context.Context
	s   *SolrIndexer

	token   string
	docs    []solrgo.M
	docIdx  int
	done    bool

	latchedRecord *index.Record
	lastErr       error
}

// Close implements index.Iterator.
func (it *keysetIterator) Close() error {
	it.done = true
	it.docs = nil
	return nil
}

// Next implements index.Iterator.
func (it *keysetIterator) Next() bool {
	for it.docIdx >= len(it.docs) {
		if it.done {
			return false
		}
		if it.lastErr = it.fetchPage(); it.lastErr != nil {
			return false
		}
	}

	doc := it.docs[it.docIdx]
	it.docIdx++

	key, _ := doc[index.FieldKey].(string)
	rec := &index.Record{Key: key}
	if v, found := doc[index.FieldMetadataModified]; found {
		rec.MetadataModified, _ = metadata.ParseTimestamp(v)
	}
	it.latchedRecord = rec
	return true
}

// fetchPage loads the page following the continuation token. A failed fetch
// leaves the iterator position unchanged.
func (it *keysetIterator) fetchPage() error {
	q := solrgo.NewQuery("*:*").
		Sort(index.FieldKey+" asc").
		Fields(index.FieldKey, index.FieldMetadataModified).
		Limit(it.s.pageSize)
	if it.token != "" {
		q = q.Filters(afterQuery(index.FieldKey, it.token))
	}

	res, err := it.s.query(it.ctx, q)
	if err != nil {
		return xerrors.Errorf("records iterator: %w", err)
	}

	it.docs, it.docIdx = res.Response.Documents, 0
	next := it.token
	if n := len(it.docs); n != 0 {
		next, _ = it.docs[n-1][index.FieldKey].(string)
	}
	if next == it.token {
		it.docs, it.done = nil, true
	}
	it.token = next
	return nil
}

// Error implements index.Iterator.
func (it *keysetIterator) Error() error {
	return it.lastErr
}

// Record implements index.Iterator.
func (it *keysetIterator) Record() *index.Record {
	return it.latchedRecord
}
