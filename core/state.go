package pipeline

// sessionState is the turn loop's position. A single logical turn proceeds
// sequentially through these states while the detector keeps listening.
type sessionState string

const (
	stateIdle         sessionState = "idle"
	stateListening    sessionState = "listening"
	stateTranscribing sessionState = "transcribing"
	stateResponding   sessionState = "responding"
	stateToolCalling  sessionState = "tool_calling"
	stateSynthesizing sessionState = "synthesizing"
	stateClosed       sessionState = "closed"
)

func (s sessionState) String() string { return string(s) }
