package metadata

import (
	"sort"
	"time"

	"golang.org/x/xerrors"
)

// The names of the fields that receive special treatment when a metadata
// document is merged into the full-text index.
const (
	// FieldModified holds the last modification time of the metadata record.
	FieldModified = "timestamp_update"

	// FieldIssued holds loosely formatted issue dates.
	FieldIssued = "proxy_dcterms_issued"

	// FieldIsFulltext flags documents that carry full-text content.
	FieldIsFulltext = "is_fulltext"
)

// ErrNotFound is returned when no metadata exists for a record.
var ErrNotFound = xerrors.New("metadata not found")

// Field is a single named metadata value. Multi-valued fields hold a
// []interface{} or []string value.
type Field struct {
	Name  string
	Value interface{}
}

// Document is a read-only snapshot of a metadata index entry.
type Document struct {
	// Fields in ascending name order.
	Fields []Field

	// The parsed value of FieldModified; zero if missing or unparsable.
	Modified time.Time
}

// NewDocument creates a Document from an unordered field map.
func NewDocument(fields map[string]interface{}) *Document {
	doc := &Document{Fields: make([]Field, 0, len(fields))}
	for name, value := range fields {
		doc.Fields = append(doc.Fields, Field{Name: name, Value: value})
	}
	sort.Slice(doc.Fields, func(l, r int) bool { return doc.Fields[l].Name < doc.Fields[r].Name })

	if v, found := fields[FieldModified]; found {
		doc.Modified, _ = ParseTimestamp(v)
	}
	return doc
}

// IsEmpty returns true if the document has no fields.
func (d *Document) IsEmpty() bool {
	return d == nil || len(d.Fields) == 0
}

// Get returns the value of the named field.
func (d *Document) Get(name string) (interface{}, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Strings returns the named field as a list of strings. Single values are
// returned as a one-element list; non-string values are skipped.
func (d *Document) Strings(name string) []string {
	v, found := d.Get(name)
	if !found {
		return nil
	}

	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return append([]string(nil), val...)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ParseTimestamp converts a stored timestamp value into a time.Time. It
// accepts time.Time values and RFC3339 strings.
func ParseTimestamp(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return time.Time{}, xerrors.Errorf("parse timestamp: %w", err)
		}
		return t.UTC(), nil
	default:
		return time.Time{}, xerrors.Errorf("parse timestamp: unsupported value type %T", v)
	}
}
