package indexer

import (
	"context"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/indexer/mocks"
	"github.com/annosync/annosync/metadata"
	"github.com/annosync/annosync/record"
	"github.com/annosync/annosync/retry"
	"github.com/golang/mock/gomock"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(RetryingGatewayTestSuite))

type RetryingGatewayTestSuite struct{}

func (s *RetryingGatewayTestSuite) TestTransientErrorsAreRetried(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	source := mocks.NewMockSourceStore(ctrl)

	id := record.New("ds", "1")
	gomock.InOrder(
		source.EXPECT().ExistsActive(gomock.Any(), id).Return(false, xerrors.New("connection reset")),
		source.EXPECT().ExistsActive(gomock.Any(), id).Return(true, nil),
	)

	active, err := RetryingSourceStore(source, retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}).ExistsActive(context.TODO(), id)
	c.Assert(err, gc.IsNil)
	c.Assert(active, gc.Equals, true)
}

func (s *RetryingGatewayTestSuite) TestRetriesAreBounded(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	fulltext := mocks.NewMockFulltextIndex(ctrl)

	fulltext.EXPECT().Delete(gomock.Any(), []string{"/ds/1"}).Return(xerrors.New("503")).Times(2)

	err := RetryingFulltextIndex(fulltext, retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}).Delete(context.TODO(), []string{"/ds/1"})
	c.Assert(err, gc.ErrorMatches, "delete: giving up after 2 attempts: 503")
}

func (s *RetryingGatewayTestSuite) TestMissingMetadataIsNotRetried(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	md := mocks.NewMockMetadataIndex(ctrl)

	md.EXPECT().FindByID(gomock.Any(), "/ds/1").Return(nil, xerrors.Errorf("find by ID: %w", metadata.ErrNotFound))

	_, err := RetryingMetadataIndex(md, retry.Policy{MaxAttempts: 5, Delay: time.Millisecond}).FindByID(context.TODO(), "/ds/1")
	c.Assert(xerrors.Is(err, metadata.ErrNotFound), gc.Equals, true)
}

func (s *RetryingGatewayTestSuite) TestChangedSinceResumesAfterFailedPage(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	source := mocks.NewMockSourceStore(ctrl)
	it := mocks.NewMockIDIterator(ctrl)

	since := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	first, second := record.New("ds", "1"), record.New("ds", "2")
	source.EXPECT().ChangedSince(gomock.Any(), since).Return(it, nil)
	gomock.InOrder(
		it.EXPECT().Next().Return(true),
		it.EXPECT().ID().Return(first),
		it.EXPECT().Next().Return(false),
		it.EXPECT().Error().Return(xerrors.New("connection reset")),
		it.EXPECT().Next().Return(true),
		it.EXPECT().Error().Return(nil),
		it.EXPECT().ID().Return(second),
		it.EXPECT().Next().Return(false),
		it.EXPECT().Error().Return(nil),
		it.EXPECT().Close().Return(nil),
	)

	changed, err := RetryingSourceStore(source, retry.Policy{MaxAttempts: 3, Delay: time.Millisecond}).ChangedSince(context.TODO(), since)
	c.Assert(err, gc.IsNil)

	var got []record.ID
	for changed.Next() {
		got = append(got, changed.ID())
	}
	c.Assert(changed.Error(), gc.IsNil)
	c.Assert(changed.Close(), gc.IsNil)
	c.Assert(got, gc.DeepEquals, []record.ID{first, second})
}

func (s *RetryingGatewayTestSuite) TestRecordsPageRetriesAreBounded(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	fulltext := mocks.NewMockFulltextIndex(ctrl)
	it := mocks.NewMockIterator(ctrl)

	fulltext.EXPECT().Records(gomock.Any()).Return(it, nil)
	gomock.InOrder(
		it.EXPECT().Next().Return(true),
		it.EXPECT().Record().Return(&index.Record{Key: "/ds/1"}),
		it.EXPECT().Next().Return(false),
		it.EXPECT().Error().Return(xerrors.New("503")),
		it.EXPECT().Next().Return(false),
		it.EXPECT().Error().Return(xerrors.New("503")),
	)

	records, err := RetryingFulltextIndex(fulltext, retry.Policy{MaxAttempts: 2, Delay: time.Millisecond}).Records(context.TODO())
	c.Assert(err, gc.IsNil)

	var keys []string
	for records.Next() {
		keys = append(keys, records.Record().Key)
	}
	c.Assert(keys, gc.DeepEquals, []string{"/ds/1"})
	c.Assert(records.Error(), gc.ErrorMatches, "records: giving up after 2 attempts: 503")

	// The iterator stays failed once retries are exhausted.
	c.Assert(records.Next(), gc.Equals, false)
}
