package indexer

import (
	"strings"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/record"
)

// Action describes an operation that must be applied to the index document
// of a record.
type Action uint8

// The supported indexing actions. A work item carries a set of them.
const (
	WriteDocument Action = 1 << iota
	DeleteDocument
	UpdateFulltextFields
	UpdateMetadataFields
)

var actionNames = []struct {
	action Action
	name   string
}{
	{WriteDocument, "WriteDocument"},
	{DeleteDocument, "DeleteDocument"},
	{UpdateFulltextFields, "UpdateFulltextFields"},
	{UpdateMetadataFields, "UpdateMetadataFields"},
}

// ActionSet is a set of indexing actions.
type ActionSet uint8

// NewActionSet returns a set containing the specified actions.
func NewActionSet(actions ...Action) ActionSet {
	var set ActionSet
	for _, a := range actions {
		set |= ActionSet(a)
	}
	return set
}

// Has returns true if the set contains action a.
func (s ActionSet) Has(a Action) bool { return s&ActionSet(a) != 0 }

// String implements fmt.Stringer.
func (s ActionSet) String() string {
	var names []string
	for _, an := range actionNames {
		if s.Has(an.action) {
			names = append(names, an.name)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// WorkItem tracks the actions and the staged partial update for a single
// record while it moves through a job.
type WorkItem struct {
	ID      record.ID
	Actions ActionSet
	Doc     *index.Update
}

// NewWorkItem returns a work item for id with the specified initial actions.
func NewWorkItem(id record.ID, actions ...Action) *WorkItem {
	item := &WorkItem{ID: id, Doc: index.NewUpdate(id.Key())}
	item.Add(actions...)
	return item
}

// Has returns true if the item carries action a.
func (w *WorkItem) Has(a Action) bool { return w.Actions.Has(a) }

// Add adds actions to the item. Once an item is marked for deletion no
// further actions can be added to it; adding DeleteDocument is the same as
// calling MarkForDeletion.
func (w *WorkItem) Add(actions ...Action) {
	for _, a := range actions {
		if w.Has(DeleteDocument) {
			return
		}
		if a == DeleteDocument {
			w.MarkForDeletion()
			return
		}
		w.Actions |= ActionSet(a)
	}
}

// MarkForDeletion replaces the item actions with DeleteDocument and drops
// any staged fields.
func (w *WorkItem) MarkForDeletion() {
	w.Actions = NewActionSet(DeleteDocument)
	w.Doc.Reset()
}

// Clone returns a deep copy of the item.
func (w *WorkItem) Clone() *WorkItem {
	return &WorkItem{
		ID:      w.ID,
		Actions: w.Actions,
		Doc:     w.Doc.Clone(),
	}
}
