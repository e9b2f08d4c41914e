package service

import (
	"github.com/annosync/annosync/indexer"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(JobTestSuite))

type JobTestSuite struct{}

func (s *JobTestSuite) TestResolveJob(c *gc.C) {
	job, err := ResolveJob("")
	c.Assert(err, gc.IsNil)
	c.Assert(job, gc.Equals, indexer.JobFulltextSync)

	job, err = ResolveJob("metadata-sync")
	c.Assert(err, gc.IsNil)
	c.Assert(job, gc.Equals, indexer.JobMetadataSync)

	_, err = ResolveJob("reindex-everything")
	c.Assert(xerrors.Is(err, ErrUnknownJob), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `"reindex-everything": unknown job`)
}
