package indexer

import (
	"context"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/indexer/mocks"
	"github.com/annosync/annosync/record"
	"github.com/golang/mock/gomock"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(FulltextFieldBuilderTestSuite))

type FulltextFieldBuilderTestSuite struct {
	ctrl   *gomock.Controller
	source *mocks.MockSourceStore
	schema *index.Schema
	id     record.ID
}

func (s *FulltextFieldBuilderTestSuite) SetUpTest(c *gc.C) {
	s.ctrl = gomock.NewController(c)
	s.source = mocks.NewMockSourceStore(s.ctrl)
	s.schema = index.NewSchema(index.FulltextField(""), index.FulltextField("en"), index.FulltextField("fr"))
	s.id = record.New("ds", "rec")
}

func (s *FulltextFieldBuilderTestSuite) TearDownTest(c *gc.C) {
	s.ctrl.Finish()
}

func (s *FulltextFieldBuilderTestSuite) TestLanguageBucketClearing(c *gc.C) {
	t0 := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	s.source.EXPECT().Entries(gomock.Any(), s.id).Return([]*annopage.Entry{
		{RecordID: s.id, PageID: "1", Language: "en", Value: "hello", TargetID: "t1", Modified: t0, Active: true},
		{RecordID: s.id, PageID: "2", Language: "en", Value: "world", TargetID: "t2", Modified: t0.Add(time.Hour), Active: true},
		{RecordID: s.id, PageID: "1", Language: "fr", Value: "bonjour", TargetID: "t1", Modified: t0.Add(2 * time.Hour), Active: false},
	}, nil)

	item := s.process(c, UpdateFulltextFields, WriteDocument)
	c.Assert(item.Actions, gc.Equals, NewActionSet(UpdateFulltextFields, WriteDocument))
	c.Assert(item.Doc.Fields, gc.DeepEquals, []index.FieldUpdate{
		{Name: "fulltext.en", Op: index.OpSet, Value: []string{"{t1} hello", "{t2} world"}},
		{Name: "fulltext.fr", Op: index.OpSet, Value: []string{}},
		// Inactive entries do not affect the modification time.
		{Name: index.FieldFulltextModified, Op: index.OpSet, Value: t0.Add(time.Hour)},
	})
}

func (s *FulltextFieldBuilderTestSuite) TestUnsupportedLanguageFolding(c *gc.C) {
	t0 := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	s.source.EXPECT().Entries(gomock.Any(), s.id).Return([]*annopage.Entry{
		{RecordID: s.id, PageID: "1", Language: "fi", Value: "hei", TargetID: "t1", Modified: t0, Active: true},
		{RecordID: s.id, PageID: "2", Language: "", Value: "???", TargetID: "t2", Modified: t0, Active: true},
		{RecordID: s.id, PageID: "3", Language: "en", Value: "hi", TargetID: "t3", Modified: t0, Active: true},
	}, nil)

	item := s.process(c, UpdateFulltextFields, WriteDocument)
	c.Assert(item.Doc.Fields, gc.DeepEquals, []index.FieldUpdate{
		{Name: "fulltext.", Op: index.OpSet, Value: []string{"{t1} hei", "{t2} ???"}},
		{Name: "fulltext.en", Op: index.OpSet, Value: []string{"{t3} hi"}},
		{Name: index.FieldFulltextModified, Op: index.OpSet, Value: t0},
	})
	_, found := item.Doc.Get("fulltext.fi")
	c.Assert(found, gc.Equals, false)
}

func (s *FulltextFieldBuilderTestSuite) TestModificationTimeIsTruncated(c *gc.C) {
	t0 := time.Date(2021, 3, 4, 5, 6, 7, 891234567, time.UTC)
	s.source.EXPECT().Entries(gomock.Any(), s.id).Return([]*annopage.Entry{
		{RecordID: s.id, PageID: "1", Language: "en", Value: "hi", TargetID: "t1", Modified: t0, Active: true},
	}, nil)

	item := s.process(c, UpdateFulltextFields, WriteDocument)
	modified, found := item.Doc.Get(index.FieldFulltextModified)
	c.Assert(found, gc.Equals, true)
	c.Assert(modified.Value, gc.Equals, time.Date(2021, 3, 4, 5, 6, 7, 891000000, time.UTC))
}

func (s *FulltextFieldBuilderTestSuite) TestNoActiveEntries(c *gc.C) {
	s.source.EXPECT().Entries(gomock.Any(), s.id).Return([]*annopage.Entry{
		{RecordID: s.id, PageID: "1", Language: "en", Value: "gone", TargetID: "t1", Active: false},
	}, nil)

	item := s.process(c, UpdateFulltextFields, UpdateMetadataFields, WriteDocument)
	c.Assert(item.Actions, gc.Equals, NewActionSet(DeleteDocument))
	c.Assert(item.Doc.Fields, gc.HasLen, 0)
}

func (s *FulltextFieldBuilderTestSuite) TestSkipWithoutAction(c *gc.C) {
	// No calls to the source store are expected.
	item := s.process(c, DeleteDocument)
	c.Assert(item.Actions, gc.Equals, NewActionSet(DeleteDocument))
}

func (s *FulltextFieldBuilderTestSuite) process(c *gc.C, actions ...Action) *WorkItem {
	out, err := NewFulltextFieldBuilder(s.source, s.schema).Process(context.TODO(), NewWorkItem(s.id, actions...))
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.NotNil)
	return out
}
