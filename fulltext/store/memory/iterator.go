package memory

import (
	"github.com/annosync/annosync/fulltext/index"
	"github.com/blevesearch/bleve/v2"
)

// bleveIterator implements index.Iterator using the document key as a
// search-after cursor.
type bleveIterator struct {
	idx *InMemoryBleveIndexer

	cursor  string
	page    []string
	pageIdx int
	done    bool

	latchedRecord *index.Record
	lastErr       error
}

// Close implements index.Iterator.
func (it *bleveIterator) Close() error {
	it.done = true
	it.page = nil
	return nil
}

// Next implements index.Iterator.
func (it *bleveIterator) Next() bool {
	if it.done {
		return false
	}

	if it.pageIdx >= len(it.page) {
		if it.lastErr = it.fetchPage(); it.lastErr != nil {
			return false
		}
		if len(it.page) == 0 {
			it.done = true
			return false
		}
	}

	it.latchedRecord = it.idx.recordFor(it.page[it.pageIdx])
	it.pageIdx++
	return true
}

// fetchPage loads the page of keys following the current cursor.
func (it *bleveIterator) fetchPage() error {
	searchReq := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), batchSize, 0, false)
	searchReq.SortBy([]string{"_id"})
	if it.cursor != "" {
		searchReq.SearchAfter = []string{it.cursor}
	}

	it.idx.mu.RLock()
	rs, err := it.idx.idx.Search(searchReq)
	it.idx.mu.RUnlock()
	if err != nil {
		return err
	}

	it.page, it.pageIdx = it.page[:0], 0
	for _, hit := range rs.Hits {
		it.page = append(it.page, hit.ID)
	}

	if n := len(it.page); n != 0 {
		if it.page[n-1] == it.cursor {
			// The cursor did not advance; nothing left to read.
			it.page = it.page[:0]
			return nil
		}
		it.cursor = it.page[n-1]
	}
	return nil
}

// Error implements index.Iterator.
func (it *bleveIterator) Error() error {
	return it.lastErr
}

// Record implements index.Iterator.
func (it *bleveIterator) Record() *index.Record {
	return it.latchedRecord
}
