package pipeline

import "context"

// Payload is implemented by values that travel through a pipeline.
type Payload interface {
	// Clone returns a deep copy of the payload. Stages that fan out a
	// payload to several processors hand each of them its own copy.
	Clone() Payload

	// MarkAsProcessed is invoked once the payload either reaches the sink
	// or is dropped by a stage.
	MarkAsProcessed()
}

// Processor is implemented by types that transform payloads as part of a
// pipeline stage.
type Processor interface {
	// Process operates on the input payload and returns the payload to
	// forward to the next stage. Returning a nil payload drops it.
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageParams is passed by the pipeline to the Run method of each stage.
type StageParams interface {
	// StageIndex returns the position of the stage in the pipeline.
	StageIndex() int

	// Input returns the channel the stage reads payloads from.
	Input() <-chan Payload

	// Output returns the channel the stage writes payloads to.
	Output() chan<- Payload

	// Error returns the channel the stage reports errors to.
	Error() chan<- error
}

// StageRunner is implemented by types that can be chained together to form
// a multi-stage pipeline.
type StageRunner interface {
	// Run reads payloads from the stage input, processes them and writes
	// the results to the stage output. Run blocks until the input channel
	// is closed, the context expires or a processing error occurs.
	Run(context.Context, StageParams)
}

// Source is implemented by types that feed payloads into a pipeline.
type Source interface {
	// Next fetches the next payload. It returns false when the source is
	// exhausted or an error occurs.
	Next(context.Context) bool

	// Payload returns the payload fetched by the last call to Next.
	Payload() Payload

	// Error returns the last error observed by the source.
	Error() error
}

// Sink is implemented by types that consume the output of a pipeline.
type Sink interface {
	// Consume processes a payload emitted by the last pipeline stage.
	Consume(context.Context, Payload) error
}
