package indexer

import "context"

// ItemProcessor is implemented by the stages that a work item passes
// through. Each stage reacts to a single action and leaves items that do
// not carry it untouched.
type ItemProcessor interface {
	// Process operates on item and returns the item to hand to the next
	// stage. A nil item means that the record needs no further work.
	Process(ctx context.Context, item *WorkItem) (*WorkItem, error)
}

// processorChain runs a list of item processors in sequence.
type processorChain []ItemProcessor

func (pc processorChain) Process(ctx context.Context, item *WorkItem) (*WorkItem, error) {
	var err error
	for _, p := range pc {
		if item, err = p.Process(ctx, item); err != nil || item == nil {
			return nil, err
		}
	}
	return item, nil
}
