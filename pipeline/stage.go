package pipeline

import (
	"context"
	"sync"

	"golang.org/x/xerrors"
)

type fifo struct {
	proc Processor
}

// FIFO returns a StageRunner that passes each incoming payload to proc, one
// at a time, and emits the results in arrival order.
func FIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

// Run implements StageRunner.
func (r fifo) Run(ctx context.Context, params StageParams) {
	consume(ctx, params, r.proc.Process)
}

// consume applies fn to every payload read from the stage input until the
// input is closed, ctx expires or fn fails. A nil result drops the payload.
func consume(ctx context.Context, params StageParams, fn func(context.Context, Payload) (Payload, error)) {
	for {
		var (
			in Payload
			ok bool
		)
		select {
		case <-ctx.Done():
			return
		case in, ok = <-params.Input():
			if !ok {
				return
			}
		}

		out, err := fn(ctx, in)
		if err != nil {
			maybeEmitError(xerrors.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())
			return
		}
		if out == nil {
			in.MarkAsProcessed()
			continue
		}
		if !forward(ctx, params.Output(), out) {
			return
		}
	}
}

type fixedWorkerPool struct {
	proc       Processor
	numWorkers int
}

// FixedWorkerPool returns a StageRunner that runs numWorkers FIFO workers
// sharing the same input. At most numWorkers payloads are processed at
// any time, so the pool size doubles as a throttle for the stage.
func FixedWorkerPool(proc Processor, numWorkers int) StageRunner {
	if numWorkers <= 0 {
		panic("FixedWorkerPool: numWorkers must be > 0")
	}
	return &fixedWorkerPool{proc: proc, numWorkers: numWorkers}
}

// Run implements StageRunner.
func (p *fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup
	wg.Add(p.numWorkers)
	for i := 0; i < p.numWorkers; i++ {
		go func() {
			defer wg.Done()
			consume(ctx, params, p.proc.Process)
		}()
	}
	wg.Wait()
}

type join struct {
	procs []Processor
}

// Join returns a StageRunner that hands every incoming payload to all of
// procs concurrently and emits it once when all of them are done. The first
// processor receives the payload itself and its output is forwarded; the
// others receive clones that are marked as processed when they return.
//
// The payload is dropped if any processor returns nil. If several
// processors fail, the error of the lowest-indexed one is reported.
func Join(procs ...Processor) StageRunner {
	if len(procs) == 0 {
		panic("Join: at least one processor must be specified")
	}
	return &join{procs: procs}
}

// Run implements StageRunner.
func (j *join) Run(ctx context.Context, params StageParams) {
	consume(ctx, params, j.process)
}

func (j *join) process(ctx context.Context, in Payload) (Payload, error) {
	var (
		wg   sync.WaitGroup
		outs = make([]Payload, len(j.procs))
		errs = make([]error, len(j.procs))
	)

	wg.Add(len(j.procs))
	for i := range j.procs {
		payload := in
		if i != 0 {
			payload = in.Clone()
		}
		go func(i int, payload Payload) {
			defer wg.Done()
			outs[i], errs[i] = j.procs[i].Process(ctx, payload)
			if i != 0 {
				payload.MarkAsProcessed()
			}
		}(i, payload)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for _, out := range outs {
		if out == nil {
			return nil, nil
		}
	}
	return outs[0], nil
}
