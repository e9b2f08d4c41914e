package annopagetest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/record"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of store-related tests that can be
// executed against any type that implements annopage.Store.
type SuiteBase struct {
	s annopage.Store
}

// SetStore configures the test-suite to run all tests against s.
func (s *SuiteBase) SetStore(store annopage.Store) {
	s.s = store
}

// TestUpsertAndFetchEntries verifies that entries can be inserted, updated and
// retrieved by record ID.
func (s *SuiteBase) TestUpsertAndFetchEntries(c *gc.C) {
	ctx := context.TODO()
	id := record.New("9200300", "BibliographicResource_1")
	modified := time.Now().Add(-time.Hour).Truncate(time.Millisecond).UTC()

	en := &annopage.Entry{RecordID: id, PageID: "1", Language: "en", Value: "hello", TargetID: "t1", Modified: modified, Active: true}
	fr := &annopage.Entry{RecordID: id, PageID: "1", Language: "fr", Value: "bonjour", TargetID: "t1", Modified: modified, Active: false}
	c.Assert(s.s.UpsertEntry(ctx, en), gc.IsNil)
	c.Assert(s.s.UpsertEntry(ctx, fr), gc.IsNil)

	// Update the english entry in place.
	updated := *en
	updated.Value = "hello world"
	updated.Modified = modified.Add(time.Minute)
	c.Assert(s.s.UpsertEntry(ctx, &updated), gc.IsNil)

	entries, err := s.s.Entries(ctx, id)
	c.Assert(err, gc.IsNil)
	c.Assert(entries, gc.HasLen, 2)
	sortEntries(entries)
	c.Assert(entries[0], gc.DeepEquals, &updated)
	c.Assert(entries[1], gc.DeepEquals, fr)

	// Unknown records yield no entries.
	entries, err = s.s.Entries(ctx, record.New("9200300", "missing"))
	c.Assert(err, gc.IsNil)
	c.Assert(entries, gc.HasLen, 0)
}

// TestExistsActive verifies that only records with at least one active entry
// are reported as active.
func (s *SuiteBase) TestExistsActive(c *gc.C) {
	ctx := context.TODO()
	active := record.New("1", "active")
	inactive := record.New("1", "inactive")

	c.Assert(s.s.UpsertEntry(ctx, &annopage.Entry{RecordID: active, PageID: "1", Language: "en", Modified: time.Now().UTC(), Active: true}), gc.IsNil)
	c.Assert(s.s.UpsertEntry(ctx, &annopage.Entry{RecordID: active, PageID: "2", Language: "en", Modified: time.Now().UTC(), Active: false}), gc.IsNil)
	c.Assert(s.s.UpsertEntry(ctx, &annopage.Entry{RecordID: inactive, PageID: "1", Language: "en", Modified: time.Now().UTC(), Active: false}), gc.IsNil)

	specs := []struct {
		id  record.ID
		exp bool
	}{
		{id: active, exp: true},
		{id: inactive, exp: false},
		{id: record.New("1", "unknown"), exp: false},
	}
	for i, spec := range specs {
		got, err := s.s.ExistsActive(ctx, spec.id)
		c.Assert(err, gc.IsNil)
		c.Assert(got, gc.Equals, spec.exp, gc.Commentf("spec %d: %s", i, spec.id))
	}
}

// TestChangedSince verifies that the change feed returns each changed record
// exactly once, ordered by dataset and local ID.
func (s *SuiteBase) TestChangedSince(c *gc.C) {
	ctx := context.TODO()
	cutoff := time.Now().Add(-time.Hour).Truncate(time.Millisecond).UTC()

	var expIDs []string
	for i := 0; i < 25; i++ {
		id := record.New("ds", fmt.Sprintf("rec-%03d", i))
		modified := cutoff.Add(-time.Minute)
		if i%2 == 0 {
			modified = cutoff.Add(time.Minute)
			expIDs = append(expIDs, id.Key())
		}

		// Two entries per record so that the feed must de-duplicate.
		for _, lang := range []string{"en", "de"} {
			entry := &annopage.Entry{RecordID: id, PageID: "1", Language: lang, Value: "v", Modified: modified, Active: i%3 != 0}
			c.Assert(s.s.UpsertEntry(ctx, entry), gc.IsNil)
		}
	}

	it, err := s.s.ChangedSince(ctx, cutoff)
	c.Assert(err, gc.IsNil)

	var got []string
	for it.Next() {
		got = append(got, it.ID().Key())
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, expIDs)

	// Nothing changed after now.
	it, err = s.s.ChangedSince(ctx, time.Now().Add(time.Hour))
	c.Assert(err, gc.IsNil)
	c.Assert(it.Next(), gc.Equals, false)
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
}

func sortEntries(entries []*annopage.Entry) {
	sort.Slice(entries, func(l, r int) bool {
		if entries[l].PageID != entries[r].PageID {
			return entries[l].PageID < entries[r].PageID
		}
		return entries[l].Language < entries[r].Language
	})
}
