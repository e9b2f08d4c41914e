package indextest

import (
	"context"
	"fmt"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of index-related tests that can
// be executed against any type that implements index.Indexer.
type SuiteBase struct {
	idx index.Indexer
}

// SetIndexer configures the test-suite to run all tests against idx.
func (s *SuiteBase) SetIndexer(idx index.Indexer) {
	s.idx = idx
}

// TestPartialUpdates verifies that updates create missing documents and
// only touch the fields they name.
func (s *SuiteBase) TestPartialUpdates(c *gc.C) {
	ctx := context.TODO()
	key := "/9200396/BibliographicResource_1"

	exists, err := s.idx.Exists(ctx, key)
	c.Assert(err, gc.IsNil)
	c.Assert(exists, gc.Equals, false)

	u := index.NewUpdate(key)
	u.Set(index.FulltextField("en"), []string{"{t1} hello"})
	u.Set(index.FulltextField("fr"), []string{"{t1} bonjour"})
	u.Set("title", []string{"Some title"})
	err = s.idx.Update(ctx, []*index.Update{u})
	c.Assert(err, gc.IsNil)

	exists, err = s.idx.Exists(ctx, key)
	c.Assert(err, gc.IsNil)
	c.Assert(exists, gc.Equals, true)

	// Clear the french field and replace the english one.
	u = index.NewUpdate(key)
	u.Set(index.FulltextField("en"), []string{"{t1} hello world"})
	u.Set(index.FulltextField("fr"), []string{})
	err = s.idx.Update(ctx, []*index.Update{u})
	c.Assert(err, gc.IsNil)

	doc, err := s.idx.FindByID(ctx, key)
	c.Assert(err, gc.IsNil)
	c.Assert(asStrings(doc[index.FulltextField("en")]), gc.DeepEquals, []string{"{t1} hello world"})
	c.Assert(asStrings(doc["title"]), gc.DeepEquals, []string{"Some title"}, gc.Commentf("untouched field was modified"))
	_, hasFr := doc[index.FulltextField("fr")]
	c.Assert(hasFr, gc.Equals, false, gc.Commentf("expected cleared field to be removed"))
}

// TestUpdateWithoutKey verifies that updates must specify a document key.
func (s *SuiteBase) TestUpdateWithoutKey(c *gc.C) {
	u := index.NewUpdate("")
	u.Set("title", []string{"no key"})
	err := s.idx.Update(context.TODO(), []*index.Update{u})
	c.Assert(xerrors.Is(err, index.ErrMissingKey), gc.Equals, true)
}

// TestDelete verifies batched deletes.
func (s *SuiteBase) TestDelete(c *gc.C) {
	ctx := context.TODO()
	keys := []string{"/ds/a", "/ds/b", "/ds/c"}
	for _, key := range keys {
		u := index.NewUpdate(key)
		u.Set("title", []string{key})
		c.Assert(s.idx.Update(ctx, []*index.Update{u}), gc.IsNil)
	}

	err := s.idx.Delete(ctx, []string{"/ds/a", "/ds/c", "/ds/unknown"})
	c.Assert(err, gc.IsNil)

	for key, exp := range map[string]bool{"/ds/a": false, "/ds/b": true, "/ds/c": false} {
		exists, err := s.idx.Exists(ctx, key)
		c.Assert(err, gc.IsNil)
		c.Assert(exists, gc.Equals, exp, gc.Commentf("key %s", key))
	}

	_, err = s.idx.FindByID(ctx, "/ds/a")
	c.Assert(xerrors.Is(err, index.ErrNotFound), gc.Equals, true)
}

// TestLatestTimestamp verifies the high-water mark lookup.
func (s *SuiteBase) TestLatestTimestamp(c *gc.C) {
	ctx := context.TODO()

	got, err := s.idx.LatestTimestamp(ctx, index.FieldFulltextModified)
	c.Assert(err, gc.IsNil)
	c.Assert(got.IsZero(), gc.Equals, true)

	base := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	var updates []*index.Update
	for i, offset := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
		u := index.NewUpdate(fmt.Sprintf("/ds/%d", i))
		u.Set(index.FieldFulltextModified, base.Add(offset))
		updates = append(updates, u)
	}

	// A document without the field must not affect the result.
	u := index.NewUpdate("/ds/no-timestamp")
	u.Set("title", []string{"untimed"})
	updates = append(updates, u)

	c.Assert(s.idx.Update(ctx, updates), gc.IsNil)

	got, err = s.idx.LatestTimestamp(ctx, index.FieldFulltextModified)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Equal(base.Add(3*time.Hour)), gc.Equals, true, gc.Commentf("got %v", got))
}

// TestRecords verifies that the iterator visits every document once, in
// ascending key order, across multiple pages.
func (s *SuiteBase) TestRecords(c *gc.C) {
	ctx := context.TODO()
	modified := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	var (
		updates []*index.Update
		expKeys []string
	)
	for i := 0; i < 25; i++ {
		key := fmt.Sprintf("/ds/rec-%03d", i)
		expKeys = append(expKeys, key)

		u := index.NewUpdate(key)
		u.SetLiteral(index.FieldMetadataModified, modified.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		updates = append(updates, u)
	}
	c.Assert(s.idx.Update(ctx, updates), gc.IsNil)

	it, err := s.idx.Records(ctx)
	c.Assert(err, gc.IsNil)

	var gotKeys []string
	for it.Next() {
		rec := it.Record()
		i := len(gotKeys)
		gotKeys = append(gotKeys, rec.Key)
		c.Assert(rec.MetadataModified.Equal(modified.Add(time.Duration(i)*time.Minute)), gc.Equals, true, gc.Commentf("record %s", rec.Key))
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(gotKeys, gc.DeepEquals, expKeys)
}

// TestSchema verifies that the schema lists the content fields.
func (s *SuiteBase) TestSchema(c *gc.C) {
	schema, err := s.idx.Schema(context.TODO())
	c.Assert(err, gc.IsNil)
	c.Assert(schema.Has(index.FieldKey), gc.Equals, true)
	c.Assert(schema.Has(index.FulltextField("en")), gc.Equals, true)
	c.Assert(schema.Has(index.FulltextField("xx-unsupported")), gc.Equals, false)
}

func asStrings(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = fmt.Sprint(item)
		}
		return out
	default:
		return nil
	}
}
