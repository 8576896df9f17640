package pipeline

import (
	"errors"
	"fmt"
)

// ErrToolLoopExceeded is returned when a single user turn chains more tool
// calls than the configured limit allows. The session falls back to a direct
// response instead of executing further calls.
var ErrToolLoopExceeded = errors.New("tool call limit exceeded")

// ErrSessionClosed is returned from operations issued after the session shut
// down.
var ErrSessionClosed = errors.New("session closed")

// ErrTurnQueueFull is reported when a detected speech segment is dropped
// because earlier turns are still being processed.
var ErrTurnQueueFull = errors.New("turn queue full, speech segment dropped")

// TranscriptionError wraps a transcriber failure. The turn it belongs to is
// abandoned and the session keeps listening.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// GenerationError wraps a responder failure. The session degrades to a
// fallback spoken response.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("response generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisError wraps a synthesizer failure. The turn is logged and the
// loop keeps listening; no audio is played.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// ConnectionError wraps a transport failure. It ends the session cleanly,
// not the process.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ToolArgumentError reports arguments that do not match a tool's declared
// parameter schema. The call never reaches the handler.
type ToolArgumentError struct {
	Tool      string
	Parameter string
	Reason    string
}

func (e *ToolArgumentError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("invalid argument %q for tool %q: %s", e.Parameter, e.Tool, e.Reason)
}

// ToolExecutionError wraps a handler failure. Status is non-zero when the
// underlying failure carried an HTTP status code.
type ToolExecutionError struct {
	Tool   string
	Status int
	Err    error
}

func (e *ToolExecutionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tool %q failed with status %d: %v", e.Tool, e.Status, e.Err)
	}
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
