package metadatatest

import (
	"context"
	"time"

	"github.com/annosync/annosync/metadata"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of tests that can be executed against
// any type that implements metadata.Store.
type SuiteBase struct {
	s metadata.Store
}

// SetStore configures the test-suite to run all tests against s.
func (s *SuiteBase) SetStore(store metadata.Store) {
	s.s = store
}

// TestPutAndFind verifies that stored documents can be looked up by key.
func (s *SuiteBase) TestPutAndFind(c *gc.C) {
	ctx := context.TODO()
	key := "/9200357/BibliographicResource_3000095247"
	modified := time.Date(2022, 6, 1, 10, 0, 0, 0, time.UTC)

	err := s.s.Put(ctx, key, map[string]interface{}{
		metadata.FieldID:       key,
		metadata.FieldModified: modified.Format(time.RFC3339),
		metadata.FieldIssued:   []interface{}{"1911-02-03", "1911"},
		"title":                []interface{}{"Wiener Zeitung"},
	})
	c.Assert(err, gc.IsNil)

	doc, err := s.s.FindByID(ctx, key)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.Modified, gc.Equals, modified)
	c.Assert(doc.Strings("title"), gc.DeepEquals, []string{"Wiener Zeitung"})
	c.Assert(doc.Strings(metadata.FieldIssued), gc.DeepEquals, []string{"1911-02-03", "1911"})

	// Replace the document.
	err = s.s.Put(ctx, key, map[string]interface{}{
		metadata.FieldID:       key,
		metadata.FieldModified: modified.Add(time.Hour).Format(time.RFC3339),
	})
	c.Assert(err, gc.IsNil)

	doc, err = s.s.FindByID(ctx, key)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.Modified, gc.Equals, modified.Add(time.Hour))
	_, hasTitle := doc.Get("title")
	c.Assert(hasTitle, gc.Equals, false)
}

// TestFindMissing verifies that looking up an unknown key yields ErrNotFound.
func (s *SuiteBase) TestFindMissing(c *gc.C) {
	_, err := s.s.FindByID(context.TODO(), "/unknown/record")
	c.Assert(xerrors.Is(err, metadata.ErrNotFound), gc.Equals, true)
}
