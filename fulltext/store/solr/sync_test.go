package solr

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/annosync/annosync/annopage"
	pagememory "github.com/annosync/annosync/annopage/store/memory"
	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/indexer"
	"github.com/annosync/annosync/metadata"
	mdmemory "github.com/annosync/annosync/metadata/store/memory"
	"github.com/annosync/annosync/record"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(IncrementalSyncTestSuite))

// IncrementalSyncTestSuite runs fulltext sync jobs against an emulated core.
type IncrementalSyncTestSuite struct {
	fake     *fakeSolr
	srv      *httptest.Server
	idx      *SolrIndexer
	source   *pagememory.InMemoryStore
	metadata *mdmemory.InMemoryStore
}

func (s *IncrementalSyncTestSuite) SetUpTest(c *gc.C) {
	s.fake = newFakeSolr(fakeSchemaFields...)
	s.srv = httptest.NewServer(s.fake)

	var err error
	s.idx, err = NewSolrIndexer(s.srv.URL+"/solr/fulltext", 0)
	c.Assert(err, gc.IsNil)
	s.source = pagememory.NewInMemoryStore()
	s.metadata = mdmemory.NewInMemoryStore()
}

func (s *IncrementalSyncTestSuite) TearDownTest(c *gc.C) {
	s.srv.Close()
}

func (s *IncrementalSyncTestSuite) TestSubMillisecondModificationsAreNotReindexed(c *gc.C) {
	modified := time.Date(2021, 6, 1, 12, 0, 0, 123456000, time.UTC)
	for i := 0; i < 3; i++ {
		id := record.New("ds", fmt.Sprintf("rec-%d", i))
		c.Assert(s.source.UpsertEntry(context.TODO(), &annopage.Entry{
			RecordID: id,
			PageID:   "1",
			Language: "en",
			Value:    "text",
			TargetID: "t1",
			Modified: modified,
			Active:   true,
		}), gc.IsNil)
		c.Assert(s.metadata.Put(context.TODO(), id.Key(), map[string]interface{}{
			metadata.FieldID:       id.Key(),
			metadata.FieldModified: "2021-05-01T00:00:00.000Z",
		}), gc.IsNil)
	}

	schema, err := s.idx.Schema(context.TODO())
	c.Assert(err, gc.IsNil)
	ix, err := indexer.New(indexer.Config{
		SourceStore:    s.source,
		MetadataIndex:  s.metadata,
		FulltextIndex:  s.idx,
		Schema:         schema,
		ChunkSize:      10,
		ThreadPoolSize: 2,
		ThrottleLimit:  1,
	})
	c.Assert(err, gc.IsNil)

	stats, err := ix.SyncFulltext(context.TODO(), time.Time{})
	c.Assert(err, gc.IsNil)
	c.Assert(stats.Written, gc.Equals, int64(3))
	writes := len(s.fake.bodies)

	for run := 0; run < 2; run++ {
		latest, err := s.idx.LatestTimestamp(context.TODO(), index.FieldFulltextModified)
		c.Assert(err, gc.IsNil)
		c.Assert(latest, gc.Equals, modified.Truncate(index.TimestampPrecision))

		stats, err = ix.SyncFulltext(context.TODO(), latest)
		c.Assert(err, gc.IsNil)
		c.Assert(stats.Processed, gc.Equals, int64(0), gc.Commentf("run %d", run))
		c.Assert(len(s.fake.bodies), gc.Equals, writes, gc.Commentf("run %d", run))
	}
}
