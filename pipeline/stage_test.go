package pipeline_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annosync/annosync/pipeline"
	gc "gopkg.in/check.v1"
	"golang.org/x/xerrors"
)

var _ = gc.Suite(new(StageTestSuite))

type StageTestSuite struct{}

func (s StageTestSuite) TestFIFOPreservesOrder(c *gc.C) {
	src := &sourceStub{data: stringPayloads(10)}
	sink := new(sinkStub)

	p := pipeline.New(pipeline.FIFO(makePassthroughProcessor()), pipeline.FIFO(makePassthroughProcessor()))
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	for i, got := range sink.data {
		c.Assert(got.(*stringPayload).val, gc.Equals, fmt.Sprint(i))
	}
}

func (s StageTestSuite) TestFixedWorkerPoolConcurrency(c *gc.C) {
	numWorkers := 4
	syncCh := make(chan struct{})
	rendezvousCh := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		syncCh <- struct{}{}
		<-rendezvousCh
		return nil, nil
	})

	src := &sourceStub{data: stringPayloads(numWorkers)}

	p := pipeline.New(pipeline.FixedWorkerPool(proc, numWorkers))
	doneCh := make(chan error)
	go func() {
		doneCh <- p.Process(context.TODO(), src, new(sinkStub))
	}()

	// All workers must be busy at the same time.
	for i := 0; i < numWorkers; i++ {
		select {
		case <-syncCh:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to reach sync point", i)
		}
	}

	close(rendezvousCh)
	select {
	case err := <-doneCh:
		c.Assert(err, gc.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}
	assertAllProcessed(c, src.data)
}

func (s StageTestSuite) TestFixedWorkerPoolBound(c *gc.C) {
	var inFlight, maxInFlight int32
	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return p, nil
	})

	src := &sourceStub{data: stringPayloads(50)}
	sink := new(sinkStub)
	err := pipeline.New(pipeline.FixedWorkerPool(proc, 3)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.HasLen, 50)
	c.Assert(atomic.LoadInt32(&maxInFlight) <= 3, gc.Equals, true)
}

func (s StageTestSuite) TestJoin(c *gc.C) {
	var seen [2]int32
	procs := make([]pipeline.Processor, len(seen))
	for i := range procs {
		i := i
		procs[i] = pipeline.ProcessorFunc(func(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
			atomic.AddInt32(&seen[i], 1)
			return makeMutatingProcessor(i).Process(ctx, p)
		})
	}

	src := &sourceStub{data: stringPayloads(3)}
	sink := new(sinkStub)

	err := pipeline.New(pipeline.Join(procs...)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	assertAllProcessed(c, src.data)
	c.Assert(seen, gc.Equals, [2]int32{3, 3})

	// Only the output of the first processor is emitted; the second one
	// works on a clone.
	c.Assert(sink.data, gc.DeepEquals, []pipeline.Payload{
		&stringPayload{val: "0_0", processed: true},
		&stringPayload{val: "1_0", processed: true},
		&stringPayload{val: "2_0", processed: true},
	})
}

func (s StageTestSuite) TestJoinWaitsForAllProcessors(c *gc.C) {
	var slowDone int32
	fast := makePassthroughProcessor()
	slow := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		time.Sleep(10 * time.Millisecond)
		atomic.StoreInt32(&slowDone, 1)
		return p, nil
	})
	sink := pipeline.Sink(sinkFunc(func(context.Context, pipeline.Payload) error {
		if atomic.LoadInt32(&slowDone) != 1 {
			return xerrors.New("payload emitted before all processors returned")
		}
		return nil
	}))

	err := pipeline.New(pipeline.Join(fast, slow)).Process(context.TODO(), &sourceStub{data: stringPayloads(1)}, sink)
	c.Assert(err, gc.IsNil)
}

func (s StageTestSuite) TestJoinErrorAndDrop(c *gc.C) {
	expErr := xerrors.New("delete batch failed")
	failing := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, expErr
	})
	dropping := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, nil
	})

	err := pipeline.New(pipeline.Join(makePassthroughProcessor(), failing)).Process(context.TODO(), &sourceStub{data: stringPayloads(1)}, new(sinkStub))
	c.Assert(xerrors.Is(err, expErr), gc.Equals, true)

	src := &sourceStub{data: stringPayloads(2)}
	sink := new(sinkStub)
	err = pipeline.New(pipeline.Join(makePassthroughProcessor(), dropping)).Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.HasLen, 0)
	assertAllProcessed(c, src.data)
}

type sinkFunc func(context.Context, pipeline.Payload) error

func (f sinkFunc) Consume(ctx context.Context, p pipeline.Payload) error { return f(ctx, p) }

func makeMutatingProcessor(index int) pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		sp := p.(*stringPayload)
		sp.val = fmt.Sprintf("%s_%d", sp.val, index)
		return p, nil
	})
}

func makePassthroughProcessor() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
}
