package events

const (
	// KindTranscriptionCompleted identifies a final transcript for a segment.
	KindTranscriptionCompleted Kind = "transcription.completed"
	// KindTranscriptionFailed identifies an abandoned-turn transcription error.
	KindTranscriptionFailed Kind = "transcription.failed"
)

// TranscriptionCompleted carries the final transcript text for a segment.
type TranscriptionCompleted struct {
	Base
	Text string
}

// NewTranscriptionCompleted creates a transcription completed event.
func NewTranscriptionCompleted(text string) TranscriptionCompleted {
	return TranscriptionCompleted{Base: NewBase(KindTranscriptionCompleted), Text: text}
}

// TranscriptionFailed marks a transcription error that abandoned the turn.
type TranscriptionFailed struct {
	Base
	Error string
}

// NewTranscriptionFailed creates a transcription failed event.
func NewTranscriptionFailed(err string) TranscriptionFailed {
	return TranscriptionFailed{Base: NewBase(KindTranscriptionFailed), Error: err}
}
