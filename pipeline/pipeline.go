package pipeline

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

var _ StageParams = (*stageParams)(nil)

type stageParams struct {
	index int
	in    <-chan Payload
	out   chan<- Payload
	errs  chan<- error
}

func (p *stageParams) StageIndex() int        { return p.index }
func (p *stageParams) Input() <-chan Payload  { return p.in }
func (p *stageParams) Output() chan<- Payload { return p.out }
func (p *stageParams) Error() chan<- error    { return p.errs }

// Pipeline connects a source, a sequence of stages and a sink.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline whose payloads traverse the specified stages in order.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process drains source through the pipeline stages into sink and returns
// any errors reported along the way as a multi-error. The first error
// cancels the remaining work.
//
// Calls to Process block until the source is exhausted, an error occurs or
// ctx expires. Process may be invoked concurrently with different sources
// and sinks.
func (p *Pipeline) Process(ctx context.Context, source Source, sink Sink) error {
	r := newRun(ctx, len(p.stages))
	defer r.cancel()

	for i, stage := range p.stages {
		i, stage := i, stage
		r.spawn(func() {
			stage.Run(r.ctx, r.paramsFor(i))
			close(r.links[i+1])
		})
	}
	r.spawn(func() {
		r.feed(source)
		close(r.links[0])
	})
	r.spawn(func() { r.drain(sink) })

	return r.wait()
}

// run holds the channels of a single Process invocation. links[i] feeds
// stage i and the last link feeds the sink.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	links  []chan Payload
	errs   chan error
}

func newRun(ctx context.Context, numStages int) *run {
	r := &run{
		links: make([]chan Payload, numStages+1),
		// One slot per stage plus the source and the sink.
		errs: make(chan error, numStages+2),
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := range r.links {
		r.links[i] = make(chan Payload)
	}
	return r
}

func (r *run) paramsFor(stage int) *stageParams {
	return &stageParams{
		index: stage,
		in:    r.links[stage],
		out:   r.links[stage+1],
		errs:  r.errs,
	}
}

func (r *run) spawn(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// wait collects errors until every worker has exited.
func (r *run) wait() error {
	go func() {
		r.wg.Wait()
		close(r.errs)
	}()

	var err error
	for stageErr := range r.errs {
		err = multierror.Append(err, stageErr)
		r.cancel()
	}
	return err
}

// feed pushes the payloads produced by source to the first stage.
func (r *run) feed(source Source) {
	for source.Next(r.ctx) {
		if !forward(r.ctx, r.links[0], source.Payload()) {
			return
		}
	}
	if err := source.Error(); err != nil {
		maybeEmitError(xerrors.Errorf("pipeline source: %w", err), r.errs)
	}
}

// drain hands the output of the last stage to sink.
func (r *run) drain(sink Sink) {
	in := r.links[len(r.links)-1]
	for {
		select {
		case <-r.ctx.Done():
			return
		case payload, ok := <-in:
			if !ok {
				return
			}
			if err := sink.Consume(r.ctx, payload); err != nil {
				maybeEmitError(xerrors.Errorf("pipeline sink: %w", err), r.errs)
				return
			}
			payload.MarkAsProcessed()
		}
	}
}

// forward sends payload to out. It returns false if ctx expired first.
func forward(ctx context.Context, out chan<- Payload, payload Payload) bool {
	select {
	case out <- payload:
		return true
	case <-ctx.Done():
		return false
	}
}

// maybeEmitError queues err unless the error channel is already full.
func maybeEmitError(err error, errCh chan<- error) {
	select {
	case errCh <- err:
	default:
	}
}
