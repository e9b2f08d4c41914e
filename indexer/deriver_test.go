package indexer

import (
	"context"

	"github.com/annosync/annosync/indexer/mocks"
	"github.com/annosync/annosync/record"
	"github.com/golang/mock/gomock"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(ActionDeriverTestSuite))

type ActionDeriverTestSuite struct {
	source *mocks.MockSourceStore
	index  *mocks.MockFulltextIndex
}

func (s *ActionDeriverTestSuite) TestReconciliationMatrix(c *gc.C) {
	specs := []struct {
		descr  string
		active bool
		exists bool
		exp    *ActionSet
	}{
		{
			descr:  "new active record",
			active: true,
			exp:    actionSetPtr(UpdateFulltextFields, UpdateMetadataFields, WriteDocument),
		},
		{
			descr:  "indexed active record",
			active: true,
			exists: true,
			exp:    actionSetPtr(UpdateFulltextFields, WriteDocument),
		},
		{
			descr:  "indexed inactive record",
			exists: true,
			exp:    actionSetPtr(DeleteDocument),
		},
		{
			descr: "record absent from both stores",
		},
	}

	for specIndex, spec := range specs {
		c.Logf("[spec %d] %s", specIndex, spec.descr)
		ctrl := gomock.NewController(c)
		s.source = mocks.NewMockSourceStore(ctrl)
		s.index = mocks.NewMockFulltextIndex(ctrl)

		id := record.New("ds", "rec")
		s.source.EXPECT().ExistsActive(gomock.Any(), id).Return(spec.active, nil)
		s.index.EXPECT().Exists(gomock.Any(), "/ds/rec").Return(spec.exists, nil)

		out, err := NewActionDeriver(s.source, s.index).Process(context.TODO(), NewWorkItem(id))
		c.Assert(err, gc.IsNil)
		if spec.exp == nil {
			c.Assert(out, gc.IsNil)
		} else {
			c.Assert(out, gc.NotNil)
			c.Assert(out.Actions, gc.Equals, *spec.exp)
		}
		ctrl.Finish()
	}
}

func (s *ActionDeriverTestSuite) TestGatewayError(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.source = mocks.NewMockSourceStore(ctrl)
	s.index = mocks.NewMockFulltextIndex(ctrl)

	s.source.EXPECT().ExistsActive(gomock.Any(), gomock.Any()).Return(false, xerrors.New("connection refused"))

	_, err := NewActionDeriver(s.source, s.index).Process(context.TODO(), NewWorkItem(record.New("ds", "rec")))
	c.Assert(err, gc.ErrorMatches, "derive actions: connection refused")
}

func actionSetPtr(actions ...Action) *ActionSet {
	set := NewActionSet(actions...)
	return &set
}
