package indexer

import (
	"context"
	"sort"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/fulltext/index"
	"golang.org/x/xerrors"
)

// FulltextFieldBuilder stages the per-language content fields of a record
// and the time its content was last modified.
type FulltextFieldBuilder struct {
	source SourceStore
	schema *index.Schema
}

// NewFulltextFieldBuilder returns a builder that places content in the
// language fields declared by schema. Content in any other language is
// stored in the language-less field.
func NewFulltextFieldBuilder(source SourceStore, schema *index.Schema) *FulltextFieldBuilder {
	return &FulltextFieldBuilder{source: source, schema: schema}
}

// Process implements ItemProcessor.
func (b *FulltextFieldBuilder) Process(ctx context.Context, item *WorkItem) (*WorkItem, error) {
	if !item.Has(UpdateFulltextFields) {
		return item, nil
	}

	entries, err := b.source.Entries(ctx, item.ID)
	if err != nil {
		return nil, xerrors.Errorf("build fulltext fields: %w", err)
	}

	var (
		buckets = make(map[string][]string)
		latest  = time.Unix(0, 0).UTC()
		active  int
	)
	for _, e := range entries {
		if !e.Active {
			continue
		}

		active++
		lang := b.bucketFor(e)
		buckets[lang] = append(buckets[lang], "{"+e.TargetID+"} "+e.Value)
		if e.Modified.After(latest) {
			latest = e.Modified.UTC()
		}
	}

	// The entries were deactivated after the actions were derived.
	if active == 0 {
		item.MarkForDeletion()
		return item, nil
	}

	// Clear languages that no longer have active content.
	for _, e := range entries {
		if e.Active {
			continue
		}
		if lang := b.bucketFor(e); buckets[lang] == nil {
			buckets[lang] = []string{}
		}
	}

	langs := make([]string, 0, len(buckets))
	for lang := range buckets {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		item.Doc.Set(index.FulltextField(lang), buckets[lang])
	}
	item.Doc.Set(index.FieldFulltextModified, latest.Truncate(index.TimestampPrecision))

	return item, nil
}

// bucketFor returns the language bucket for an entry.
func (b *FulltextFieldBuilder) bucketFor(e *annopage.Entry) string {
	if e.Language == "" || !b.schema.Has(index.FulltextField(e.Language)) {
		return ""
	}
	return e.Language
}
