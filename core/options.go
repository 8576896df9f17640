package pipeline

import (
	"github.com/cadencehq/cadence/core/events"
)

type SessionOption func(*Session)

// WithDetector selects the voice-activity detector stage.
func WithDetector(detector Detector) SessionOption {
	return func(s *Session) {
		s.detector = detector
	}
}

// WithTranscriber selects the speech-to-text stage.
func WithTranscriber(transcriber Transcriber) SessionOption {
	return func(s *Session) {
		s.transcriber = transcriber
	}
}

// WithResponder selects the language-model stage.
func WithResponder(responder Responder) SessionOption {
	return func(s *Session) {
		s.responder = responder
	}
}

// WithSynthesizer selects the text-to-speech stage.
func WithSynthesizer(synthesizer Synthesizer) SessionOption {
	return func(s *Session) {
		s.synthesizer = synthesizer
	}
}

// WithTools registers the session's tools. The registry is immutable once
// the session starts.
func WithTools(registry *ToolRegistry) SessionOption {
	return func(s *Session) {
		s.registry = registry
	}
}

// WithSystemPrompt seeds the single system turn of the conversation.
func WithSystemPrompt(prompt string) SessionOption {
	return func(s *Session) {
		s.systemPrompt = prompt
	}
}

// WithGreeting sets the scripted opening utterance spoken as soon as a
// participant is present.
func WithGreeting(greeting string) SessionOption {
	return func(s *Session) {
		s.greeting = greeting
	}
}

// WithToolCallLimit caps chained tool calls per user turn. Values below one
// are ignored.
func WithToolCallLimit(limit int) SessionOption {
	return func(s *Session) {
		if limit >= 1 {
			s.toolCallLimit = limit
		}
	}
}

// WithEventHandler subscribes to session events. The handler is called on
// pipeline goroutines and must not block.
func WithEventHandler(handler func(events.Event)) SessionOption {
	return func(s *Session) {
		s.eventHandler = handler
	}
}

// WithResponseCallback is called for each streamed response text chunk.
func WithResponseCallback(callback func(chunk string)) SessionOption {
	return func(s *Session) {
		s.onResponseChunk = callback
	}
}

// WithTranscriptionCallback is called with each final user transcript.
func WithTranscriptionCallback(callback func(transcript string)) SessionOption {
	return func(s *Session) {
		s.onTranscription = callback
	}
}

// WithInterimTranscriptionCallback is called with interim transcripts when
// the transcriber surfaces them.
func WithInterimTranscriptionCallback(callback func(transcript string)) SessionOption {
	return func(s *Session) {
		s.onInterimTranscription = callback
	}
}

// WithSpeakingStateCallback is called when the agent starts or stops
// speaking.
func WithSpeakingStateCallback(callback func(speaking bool)) SessionOption {
	return func(s *Session) {
		s.onSpeakingStateChanged = callback
	}
}

// WithErrorCallback is called with every recovered error: transcription,
// generation and synthesis failures, tool loop overruns. Fatal errors are
// returned from Run instead.
func WithErrorCallback(callback func(err error)) SessionOption {
	return func(s *Session) {
		s.onError = callback
	}
}
