package indexer

import (
	"context"
	"strings"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	"golang.org/x/xerrors"
)

// Fields that are never copied from a metadata document.
var reservedFields = map[string]struct{}{
	index.FieldKey:        {},
	index.FieldVersion:    {},
	index.FieldIndexedAt:  {},
	index.FieldIsFulltext: {},
}

// issuedLayout is the calendar date format of metadata issue dates.
const issuedLayout = "2006-01-02"

// MetadataMerger stages the fields of a record's metadata document.
type MetadataMerger struct {
	metadata MetadataIndex
}

// NewMetadataMerger returns a new MetadataMerger instance.
func NewMetadataMerger(metadata MetadataIndex) *MetadataMerger {
	return &MetadataMerger{metadata: metadata}
}

// Process implements ItemProcessor.
func (m *MetadataMerger) Process(ctx context.Context, item *WorkItem) (*WorkItem, error) {
	if !item.Has(UpdateMetadataFields) {
		return item, nil
	}

	doc, err := m.metadata.FindByID(ctx, item.ID.Key())
	if err != nil && !xerrors.Is(err, metadata.ErrNotFound) {
		return nil, xerrors.Errorf("merge metadata: %w", err)
	} else if doc.IsEmpty() {
		// Full-text documents without metadata are not allowed.
		item.MarkForDeletion()
		return item, nil
	}

	if staged := stagedMetadataModified(item); !staged.IsZero() && !staged.Before(doc.Modified) {
		return nil, nil
	}

	for _, f := range doc.Fields {
		if _, reserved := reservedFields[f.Name]; reserved {
			continue
		}

		if f.Name == metadata.FieldIssued {
			if issued := parseIssued(doc.Strings(f.Name)); len(issued) != 0 {
				item.Doc.Set(index.FieldIssued, issued)
			}
			continue
		}
		item.Doc.Set(f.Name, f.Value)
	}

	item.Doc.Set(index.FieldIsFulltext, true)
	if v, found := doc.Get(metadata.FieldModified); found {
		item.Doc.SetLiteral(index.FieldMetadataModified, v)
	}

	return item, nil
}

// stagedMetadataModified returns the metadata modification time staged in
// the item or the zero time if none is staged.
func stagedMetadataModified(item *WorkItem) time.Time {
	f, found := item.Doc.Get(index.FieldMetadataModified)
	if !found {
		return time.Time{}
	}
	ts, err := metadata.ParseTimestamp(f.Value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// parseIssued converts calendar dates to start-of-day UTC instants.
// Values that are not calendar dates are dropped.
func parseIssued(values []string) []string {
	var out []string
	for _, v := range values {
		d, err := time.Parse(issuedLayout, strings.TrimSpace(v))
		if err != nil {
			continue
		}
		out = append(out, d.UTC().Format(time.RFC3339))
	}
	return out
}
