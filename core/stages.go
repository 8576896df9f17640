package pipeline

import (
	"context"
	"time"

	"github.com/cadencehq/cadence/core/audio"
	"github.com/cadencehq/cadence/core/llms"
)

// SpeechSegment is a contiguous span of detected speech. The detector owns
// the segment until it is handed to the transcriber; after the handoff the
// detector no longer touches it.
type SpeechSegment struct {
	Start time.Time
	End   time.Time

	// Audio holds the captured frames in arrival order, including any
	// configured pre-roll from just before speech was declared.
	Audio    [][]byte
	Encoding audio.EncodingInfo
}

// Duration is the wall-clock span of the segment.
func (s SpeechSegment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Bytes flattens the segment's frames into a single payload.
func (s SpeechSegment) Bytes() []byte {
	size := 0
	for _, frame := range s.Audio {
		size += len(frame)
	}
	flattened := make([]byte, 0, size)
	for _, frame := range s.Audio {
		flattened = append(flattened, frame...)
	}
	return flattened
}

// DetectorCallbacks carries the segment-boundary notifications a detector
// reports while streaming.
type DetectorCallbacks struct {
	// SpeechStarted fires when the detector declares a segment open.
	SpeechStarted func()
	// SegmentEnded fires with the closed segment once the hangover window
	// elapses without further voice.
	SegmentEnded func(SpeechSegment)
}

// Detector consumes a continuous audio stream and produces speech segments.
// It must keep running concurrently with every other stage so barge-in can
// be observed while a response is still playing.
type Detector interface {
	// Prewarm loads the detector ahead of any participant joining so
	// first-turn latency stays low. It must complete or be in flight before
	// the session starts processing audio.
	Prewarm(ctx context.Context) error
	// Start begins streaming. Callbacks fire on the detector's goroutine.
	Start(ctx context.Context, encoding audio.EncodingInfo, callbacks DetectorCallbacks) error
	// Feed hands the detector one inbound audio frame.
	Feed(audio []byte)
	// Stop tears the stream down and discards any open segment.
	Stop() error
}

// Transcriber consumes one speech segment and produces its final transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, segment SpeechSegment) (string, error)
}

// Responder consumes the conversation transcript plus the available tools
// and produces either final assistant text or tool invocation requests.
type Responder interface {
	Generate(ctx context.Context, turns []llms.Turn, tools []llms.Tool) (*llms.Response, error)
}

// ResponderWithStream is a Responder that can stream its output. The
// session prefers streaming when available and forwards text chunks to the
// response callback as they arrive.
type ResponderWithStream interface {
	Responder
	GenerateStream(ctx context.Context, turns []llms.Turn, tools []llms.Tool) llms.Stream
}

// UtteranceRequest asks the synthesizer to speak. Interrupt preempts any
// in-flight synthesis or playback for a prior request.
type UtteranceRequest struct {
	ID        string
	Text      string
	Interrupt bool
}

// Synthesizer consumes an utterance request and delivers synthesized audio
// through emit until playback completes or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, request UtteranceRequest, emit func(audio []byte)) error
}
