package index

import (
	"time"

	"github.com/annosync/annosync/metadata"
)

// TimestampPrecision is the resolution of date values stored in an index.
// Finer instants are truncated on write.
const TimestampPrecision = time.Millisecond

// Field names shared by every full-text index implementation.
const (
	// FieldKey is the primary key of an index document. It identifies
	// the document in updates but is never modified by them.
	FieldKey = metadata.FieldID

	// FieldFulltextPrefix prefixes the per-language content fields. The
	// bare prefix holds content in unknown or unsupported languages.
	FieldFulltextPrefix = "fulltext."

	// FieldFulltextModified holds the most recent modification time of
	// the indexed full-text content.
	FieldFulltextModified = "timestamp_update_fulltext"

	// FieldMetadataModified holds the modification time of the metadata
	// that was last merged into the document.
	FieldMetadataModified = metadata.FieldModified

	// FieldIssued holds normalised issue dates as ISO-8601 instants.
	FieldIssued = "issued"

	// FieldIsFulltext flags documents that carry full-text content.
	FieldIsFulltext = metadata.FieldIsFulltext

	// FieldVersion and FieldIndexedAt are maintained by the index itself.
	FieldVersion   = "_version_"
	FieldIndexedAt = "timestamp"
)

// FulltextField returns the content field name for a language. An empty
// language yields the language-less field.
func FulltextField(lang string) string {
	return FieldFulltextPrefix + lang
}

// Schema describes the set of fields declared by an index.
type Schema struct {
	fields map[string]struct{}
}

// NewSchema returns a schema declaring the specified fields.
func NewSchema(fields ...string) *Schema {
	s := &Schema{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		s.fields[f] = struct{}{}
	}
	return s
}

// Has returns true if the schema declares the named field.
func (s *Schema) Has(field string) bool {
	if s == nil {
		return false
	}
	_, found := s.fields[field]
	return found
}
