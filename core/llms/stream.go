package llms

import "context"

// Stream is a lazy sequence of model output chunks. Chunks returns a
// single-use iterator; the underlying request is not issued until the
// iterator is consumed.
type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamToolCallChunk interface {
	StreamChunk
	ToolCall() ToolCall
}
