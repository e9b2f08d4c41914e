package indexer

import (
	"context"
	"sync"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/pipeline"
	"github.com/annosync/annosync/record"
	"golang.org/x/xerrors"
)

var (
	_ pipeline.Payload = (*chunkPayload)(nil)

	chunkPool = sync.Pool{
		New: func() interface{} { return new(chunkPayload) },
	}
)

// chunkPayload carries a fixed-size group of work items through the job
// pipeline.
type chunkPayload struct {
	items []*WorkItem
	run   *runState
}

// Clone implements pipeline.Payload.
func (p *chunkPayload) Clone() pipeline.Payload {
	newP := chunkPool.Get().(*chunkPayload)
	newP.run = p.run
	for _, item := range p.items {
		newP.items = append(newP.items, item.Clone())
	}
	return newP
}

// MarkAsProcessed implements pipeline.Payload.
func (p *chunkPayload) MarkAsProcessed() {
	for i := range p.items {
		p.items[i] = nil
	}
	p.items = p.items[:0]
	p.run = nil
	chunkPool.Put(p)
}

// itemIterator yields the initial work items of a job.
type itemIterator interface {
	Next() bool
	Error() error
	Close() error
	Item() *WorkItem
}

// chunkSource groups the items of an itemIterator into chunks.
type chunkSource struct {
	it   itemIterator
	size int
	run  *runState
	cur  *chunkPayload
	done bool
}

func (s *chunkSource) Error() error              { return s.it.Error() }
func (s *chunkSource) Payload() pipeline.Payload { return s.cur }
func (s *chunkSource) Next(context.Context) bool {
	// Iteration ends at the first false Next so that a failed fetch is
	// reported instead of resumed.
	if s.done {
		return false
	}

	p := chunkPool.Get().(*chunkPayload)
	p.run = s.run
	for len(p.items) < s.size {
		if !s.it.Next() {
			s.done = true
			break
		}
		p.items = append(p.items, s.it.Item())
	}

	if len(p.items) == 0 {
		p.MarkAsProcessed()
		return false
	}

	s.run.addProcessed(len(p.items))
	s.cur = p
	return true
}

// changedRecordIterator turns the IDs of changed records into fresh work
// items for the fulltext job.
type changedRecordIterator struct {
	annopage.IDIterator
}

func (it changedRecordIterator) Item() *WorkItem {
	return NewWorkItem(it.ID())
}

// indexedRecordIterator turns index records into metadata-sync work items.
// The stored metadata modification time is staged so that records with
// up-to-date metadata are skipped. Index keys that do not parse end the
// iteration with an error.
type indexedRecordIterator struct {
	index.Iterator
	item *WorkItem
	err  error
}

func (it *indexedRecordIterator) Next() bool {
	if it.err != nil || !it.Iterator.Next() {
		return false
	}

	rec := it.Record()
	id, err := record.Parse(rec.Key)
	if err != nil {
		it.err = xerrors.Errorf("indexed record: %w", err)
		return false
	}

	it.item = NewWorkItem(id, UpdateMetadataFields, WriteDocument)
	if !rec.MetadataModified.IsZero() {
		it.item.Doc.SetLiteral(index.FieldMetadataModified, rec.MetadataModified)
	}
	return true
}

func (it *indexedRecordIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	return it.Iterator.Error()
}

func (it *indexedRecordIterator) Item() *WorkItem { return it.item }
