package events

const (
	// KindParticipantJoined identifies a participant becoming present.
	KindParticipantJoined Kind = "participant.joined"
	// KindParticipantLeft identifies a participant disconnecting.
	KindParticipantLeft Kind = "participant.left"
)

// ParticipantJoined marks a remote participant becoming present.
type ParticipantJoined struct {
	Base
	ID string
}

// NewParticipantJoined creates a participant joined event.
func NewParticipantJoined(id string) ParticipantJoined {
	return ParticipantJoined{Base: NewBase(KindParticipantJoined), ID: id}
}

// ParticipantLeft marks the remote participant disconnecting.
type ParticipantLeft struct {
	Base
	ID string
}

// NewParticipantLeft creates a participant left event.
func NewParticipantLeft(id string) ParticipantLeft {
	return ParticipantLeft{Base: NewBase(KindParticipantLeft), ID: id}
}
