package indexer

import (
	"context"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/indexer/mocks"
	"github.com/annosync/annosync/metadata"
	"github.com/annosync/annosync/record"
	"github.com/golang/mock/gomock"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(MetadataMergerTestSuite))

type MetadataMergerTestSuite struct {
	ctrl     *gomock.Controller
	metadata *mocks.MockMetadataIndex
	id       record.ID
}

func (s *MetadataMergerTestSuite) SetUpTest(c *gc.C) {
	s.ctrl = gomock.NewController(c)
	s.metadata = mocks.NewMockMetadataIndex(s.ctrl)
	s.id = record.New("ds", "rec")
}

func (s *MetadataMergerTestSuite) TearDownTest(c *gc.C) {
	s.ctrl.Finish()
}

func (s *MetadataMergerTestSuite) TestMerge(c *gc.C) {
	s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(metadata.NewDocument(map[string]interface{}{
		metadata.FieldID:         "/ds/rec",
		metadata.FieldModified:   "2022-01-02T03:04:05.000Z",
		metadata.FieldIssued:     []interface{}{"1901-02-03", "circa 1900", " 1910-12-31 "},
		metadata.FieldIsFulltext: false,
		index.FieldVersion:       int64(1234),
		index.FieldIndexedAt:     "2022-01-02T03:04:06.000Z",
		"title":                  []interface{}{"A title"},
		"COMPLETENESS":           7,
	}), nil)

	item := NewWorkItem(s.id, UpdateMetadataFields, WriteDocument)
	item.Doc.Set(index.FulltextField("en"), []string{"{t1} hello"})

	out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), item)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.NotNil)
	c.Assert(out.Doc.Fields, gc.DeepEquals, []index.FieldUpdate{
		{Name: "fulltext.en", Op: index.OpSet, Value: []string{"{t1} hello"}},
		{Name: "COMPLETENESS", Op: index.OpSet, Value: 7},
		{Name: index.FieldIssued, Op: index.OpSet, Value: []string{"1901-02-03T00:00:00Z", "1910-12-31T00:00:00Z"}},
		{Name: metadata.FieldModified, Op: index.OpLiteral, Value: "2022-01-02T03:04:05.000Z"},
		{Name: "title", Op: index.OpSet, Value: []interface{}{"A title"}},
		{Name: index.FieldIsFulltext, Op: index.OpSet, Value: true},
	})
}

func (s *MetadataMergerTestSuite) TestUnparsableIssuedDatesAreDropped(c *gc.C) {
	s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(metadata.NewDocument(map[string]interface{}{
		metadata.FieldIssued: []interface{}{"19th century"},
		"title":              "t",
	}), nil)

	out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), NewWorkItem(s.id, UpdateMetadataFields, WriteDocument))
	c.Assert(err, gc.IsNil)
	_, found := out.Doc.Get(index.FieldIssued)
	c.Assert(found, gc.Equals, false)
	_, found = out.Doc.Get(metadata.FieldIssued)
	c.Assert(found, gc.Equals, false)
	// No modification time to copy.
	_, found = out.Doc.Get(index.FieldMetadataModified)
	c.Assert(found, gc.Equals, false)
}

func (s *MetadataMergerTestSuite) TestStalenessGuard(c *gc.C) {
	docTS := time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC)
	specs := []struct {
		descr   string
		staged  interface{}
		discard bool
	}{
		{descr: "stored metadata is newer", staged: docTS.Add(time.Second), discard: true},
		{descr: "stored metadata is current", staged: docTS.Format(time.RFC3339), discard: true},
		{descr: "stored metadata is older", staged: docTS.Add(-time.Second), discard: false},
		{descr: "no stored metadata timestamp", staged: nil, discard: false},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(metadata.NewDocument(map[string]interface{}{
			metadata.FieldModified: docTS.Format(time.RFC3339),
			"title":                "t",
		}), nil)

		item := NewWorkItem(s.id, UpdateMetadataFields, WriteDocument)
		if spec.staged != nil {
			item.Doc.SetLiteral(index.FieldMetadataModified, spec.staged)
		}

		out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), item)
		c.Assert(err, gc.IsNil)
		if spec.discard {
			c.Assert(out, gc.IsNil)
			continue
		}

		c.Assert(out, gc.NotNil)
		f, found := out.Doc.Get(index.FieldMetadataModified)
		c.Assert(found, gc.Equals, true)
		c.Assert(f, gc.DeepEquals, index.FieldUpdate{Name: index.FieldMetadataModified, Op: index.OpLiteral, Value: docTS.Format(time.RFC3339)})
	}
}

func (s *MetadataMergerTestSuite) TestMissingMetadata(c *gc.C) {
	s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(nil, xerrors.Errorf("find by ID: %w", metadata.ErrNotFound))

	item := NewWorkItem(s.id, UpdateFulltextFields, UpdateMetadataFields, WriteDocument)
	item.Doc.Set(index.FulltextField("en"), []string{"{t1} hello"})

	out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), item)
	c.Assert(err, gc.IsNil)
	c.Assert(out.Actions, gc.Equals, NewActionSet(DeleteDocument))
	c.Assert(out.Doc.Fields, gc.HasLen, 0)
}

func (s *MetadataMergerTestSuite) TestEmptyMetadata(c *gc.C) {
	s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(metadata.NewDocument(nil), nil)

	out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), NewWorkItem(s.id, UpdateMetadataFields, WriteDocument))
	c.Assert(err, gc.IsNil)
	c.Assert(out.Actions, gc.Equals, NewActionSet(DeleteDocument))
}

func (s *MetadataMergerTestSuite) TestLookupError(c *gc.C) {
	s.metadata.EXPECT().FindByID(gomock.Any(), "/ds/rec").Return(nil, xerrors.New("cluster unavailable"))

	_, err := NewMetadataMerger(s.metadata).Process(context.TODO(), NewWorkItem(s.id, UpdateMetadataFields, WriteDocument))
	c.Assert(err, gc.ErrorMatches, "merge metadata: cluster unavailable")
}

func (s *MetadataMergerTestSuite) TestSkipWithoutAction(c *gc.C) {
	// No metadata lookups are expected.
	item := NewWorkItem(s.id, UpdateFulltextFields, WriteDocument)
	out, err := NewMetadataMerger(s.metadata).Process(context.TODO(), item)
	c.Assert(err, gc.IsNil)
	c.Assert(out, gc.Equals, item)
}
