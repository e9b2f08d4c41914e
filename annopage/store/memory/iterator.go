package memory

import "github.com/annosync/annosync/record"

// idIterator is an annopage.IDIterator implementation for the in-memory store.
type idIterator struct {
	ids      []record.ID
	curIndex int
}

// Next implements annopage.IDIterator.
func (i *idIterator) Next() bool {
	if i.curIndex >= len(i.ids) {
		return false
	}
	i.curIndex++
	return true
}

// Error implements annopage.IDIterator.
func (i *idIterator) Error() error { return nil }

// Close implements annopage.IDIterator.
func (i *idIterator) Close() error { return nil }

// ID implements annopage.IDIterator.
func (i *idIterator) ID() record.ID { return i.ids[i.curIndex-1] }
