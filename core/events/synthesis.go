package events

const (
	// KindSynthesisStarted identifies an utterance being handed to the
	// synthesizer.
	KindSynthesisStarted Kind = "synthesis.started"
	// KindSynthesisCancelled identifies preemption of in-flight synthesis.
	KindSynthesisCancelled Kind = "synthesis.cancelled"
	// KindSynthesisCompleted identifies playback completion.
	KindSynthesisCompleted Kind = "synthesis.completed"
)

// SynthesisStarted marks an utterance request reaching the synthesizer.
type SynthesisStarted struct {
	Base
	UtteranceID string
	Text        string
	Interrupt   bool
}

// NewSynthesisStarted creates a synthesis started event.
func NewSynthesisStarted(utteranceID, text string, interrupt bool) SynthesisStarted {
	return SynthesisStarted{Base: NewBase(KindSynthesisStarted), UtteranceID: utteranceID, Text: text, Interrupt: interrupt}
}

// SynthesisCancelled marks preemption of in-flight synthesis.
type SynthesisCancelled struct {
	Base
	UtteranceID string
	Reason      string
}

// NewSynthesisCancelled creates a synthesis cancelled event.
func NewSynthesisCancelled(utteranceID, reason string) SynthesisCancelled {
	return SynthesisCancelled{Base: NewBase(KindSynthesisCancelled), UtteranceID: utteranceID, Reason: reason}
}

// SynthesisCompleted marks playback completion for an utterance.
type SynthesisCompleted struct {
	Base
	UtteranceID string
}

// NewSynthesisCompleted creates a synthesis completed event.
func NewSynthesisCompleted(utteranceID string) SynthesisCompleted {
	return SynthesisCompleted{Base: NewBase(KindSynthesisCompleted), UtteranceID: utteranceID}
}
