package indexer

import (
	"context"
	"sync"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/pipeline"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// chunkProcessor runs every item of a chunk through an item processor
// chain. Items are processed concurrently; the number of items in flight
// across all chunks is bounded by the size of the shared token pool.
type chunkProcessor struct {
	chain  ItemProcessor
	tokens chan struct{}
}

func newChunkProcessor(chain ItemProcessor, tokens chan struct{}) *chunkProcessor {
	return &chunkProcessor{chain: chain, tokens: tokens}
}

func (cp *chunkProcessor) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	chunk := p.(*chunkPayload)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		abortErr error
		results  = make([]*WorkItem, len(chunk.items))
	)

	setAbortErr := func(err error) {
		errMu.Lock()
		if abortErr == nil {
			abortErr = err
		}
		errMu.Unlock()
	}

dispatch:
	for i, item := range chunk.items {
		select {
		case cp.tokens <- struct{}{}:
		case <-ctx.Done():
			setAbortErr(ctx.Err())
			break dispatch
		}

		wg.Add(1)
		go func(i int, item *WorkItem) {
			defer func() {
				<-cp.tokens
				wg.Done()
			}()

			out, err := cp.chain.Process(ctx, item)
			if err != nil && ctx.Err() != nil {
				// Failures caused by cancellation are not record failures.
				setAbortErr(ctx.Err())
				return
			} else if err != nil {
				if skipErr := chunk.run.skip(item.ID, err); skipErr != nil {
					setAbortErr(skipErr)
				}
				return
			} else if out == nil {
				chunk.run.addDiscarded()
				return
			}
			results[i] = out
		}(i, item)
	}
	wg.Wait()

	if abortErr != nil {
		return nil, abortErr
	}

	// Writes are only issued once every item of the chunk has finished.
	chunk.items = chunk.items[:0]
	for _, item := range results {
		if item != nil {
			chunk.items = append(chunk.items, item)
		}
	}
	return chunk, nil
}

// upsertWriter applies the staged updates of every item that carries the
// WriteDocument action as a single batch.
type upsertWriter struct {
	index FulltextIndex
}

func (w *upsertWriter) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	chunk := p.(*chunkPayload)

	var (
		items   []*WorkItem
		updates []*index.Update
	)
	for _, item := range chunk.items {
		if item.Has(WriteDocument) && !item.Has(DeleteDocument) {
			items = append(items, item)
			updates = append(updates, item.Doc)
		}
	}
	if len(updates) == 0 {
		return p, nil
	}

	err := w.index.Update(ctx, updates)
	if err == nil {
		chunk.run.addWritten(len(updates))
		return p, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	chunk.run.logger.WithFields(logrus.Fields{
		"batch_size": len(updates),
		"err":        err.Error(),
	}).Warn("batch update failed; updating documents individually")

	for i, u := range updates {
		if err := w.index.Update(ctx, []*index.Update{u}); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if skipErr := chunk.run.skip(items[i].ID, xerrors.Errorf("write document: %w", err)); skipErr != nil {
				return nil, skipErr
			}
			continue
		}
		chunk.run.addWritten(1)
	}
	return p, nil
}

// deleteWriter removes the documents of every item that carries the
// DeleteDocument action as a single batch.
type deleteWriter struct {
	index FulltextIndex
}

func (w *deleteWriter) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	chunk := p.(*chunkPayload)

	var (
		items []*WorkItem
		keys  []string
	)
	for _, item := range chunk.items {
		if item.Has(DeleteDocument) {
			items = append(items, item)
			keys = append(keys, item.Doc.Key)
		}
	}
	if len(keys) == 0 {
		return p, nil
	}

	err := w.index.Delete(ctx, keys)
	if err == nil {
		chunk.run.addDeleted(len(keys))
		return p, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	chunk.run.logger.WithFields(logrus.Fields{
		"batch_size": len(keys),
		"err":        err.Error(),
	}).Warn("batch delete failed; deleting documents individually")

	for i, key := range keys {
		if err := w.index.Delete(ctx, []string{key}); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if skipErr := chunk.run.skip(items[i].ID, xerrors.Errorf("delete document: %w", err)); skipErr != nil {
				return nil, skipErr
			}
			continue
		}
		chunk.run.addDeleted(1)
	}
	return p, nil
}

// countingSink counts the chunks that made it through the pipeline.
type countingSink struct {
	count int64
}

func (s *countingSink) Consume(context.Context, pipeline.Payload) error {
	s.count++
	return nil
}

func (s *countingSink) getCount() int64 {
	return s.count
}
