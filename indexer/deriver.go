package indexer

import (
	"context"

	"golang.org/x/xerrors"
)

// ActionDeriver decides which actions a record needs by checking whether
// it is active in the source store and whether the full-text index already
// holds a document for it.
type ActionDeriver struct {
	source SourceStore
	index  FulltextIndex
}

// NewActionDeriver returns a new ActionDeriver instance.
func NewActionDeriver(source SourceStore, index FulltextIndex) *ActionDeriver {
	return &ActionDeriver{source: source, index: index}
}

// Process implements ItemProcessor.
func (d *ActionDeriver) Process(ctx context.Context, item *WorkItem) (*WorkItem, error) {
	active, err := d.source.ExistsActive(ctx, item.ID)
	if err != nil {
		return nil, xerrors.Errorf("derive actions: %w", err)
	}
	exists, err := d.index.Exists(ctx, item.ID.Key())
	if err != nil {
		return nil, xerrors.Errorf("derive actions: %w", err)
	}

	switch {
	case active && !exists:
		// Never indexed before; needs a full metadata snapshot.
		item.Add(UpdateFulltextFields, UpdateMetadataFields, WriteDocument)
	case active && exists:
		item.Add(UpdateFulltextFields, WriteDocument)
	case exists:
		item.MarkForDeletion()
	default:
		return nil, nil
	}
	return item, nil
}
