package events

import "time"

const (
	// KindUserSpeechStarted identifies a detector segment opening.
	KindUserSpeechStarted Kind = "user_speech.started"
	// KindUserSpeechSegment identifies a closed detector segment.
	KindUserSpeechSegment Kind = "user_speech.segment"
)

// UserSpeechStarted marks the detector declaring a segment open.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechSegment marks a closed segment being handed off for
// transcription.
type UserSpeechSegment struct {
	Base
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// NewUserSpeechSegment creates a user speech segment event.
func NewUserSpeechSegment(start, end time.Time) UserSpeechSegment {
	return UserSpeechSegment{Base: NewBase(KindUserSpeechSegment), Start: start, End: end, Duration: end.Sub(start)}
}
