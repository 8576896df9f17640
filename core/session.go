package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cadencehq/cadence/core/events"
	"github.com/cadencehq/cadence/core/llms"
	"github.com/cadencehq/cadence/core/transport"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	defaultGreeting      = "Hey, how can I help you today"
	defaultSystemPrompt  = "You are a helpful voice assistant. Keep your responses short and conversational."
	defaultToolCallLimit = 5

	fallbackGenerationLine    = "I'm having trouble responding right now."
	fallbackTranscriptionLine = "Sorry, I didn't catch that."
)

// errParticipantLeft signals a clean session end from inside the run group.
var errParticipantLeft = errors.New("participant left")

// Session drives one conversation end to end: it waits for a participant,
// streams inbound audio through the detector, and runs the turn loop until
// the participant disconnects or the session is shut down.
type Session struct {
	detector    Detector
	transcriber Transcriber
	responder   Responder
	synthesizer Synthesizer
	registry    *ToolRegistry

	conversation *Conversation
	segments     chan SpeechSegment

	systemPrompt  string
	greeting      string
	toolCallLimit int

	eventHandler           func(events.Event)
	onResponseChunk        func(string)
	onTranscription        func(string)
	onInterimTranscription func(string)
	onSpeakingStateChanged func(bool)
	onError                func(error)

	prewarmOnce sync.Once
	prewarmErr  error

	stateMu sync.Mutex
	state   sessionState

	speakMu     sync.Mutex
	speakCancel context.CancelFunc
	speakingID  string

	speakWG sync.WaitGroup

	transportMu sync.Mutex
	transport   transport.Transport

	closeMu   sync.Mutex
	closed    bool
	runCancel context.CancelFunc
}

// NewSession assembles a session from its capability stages. The
// conversation is created here, seeded with the single system turn.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		systemPrompt:  defaultSystemPrompt,
		greeting:      defaultGreeting,
		toolCallLimit: defaultToolCallLimit,
		segments:      make(chan SpeechSegment, 8),
		state:         stateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry, _ = NewToolRegistry()
	}
	s.conversation = newConversation(s.systemPrompt)

	return s
}

// Conversation exposes the session transcript.
func (s *Session) Conversation() *Conversation {
	return s.conversation
}

// Prewarm initializes the detector ahead of any participant joining.
// Failure here is fatal to the session: without a detector there is no
// pipeline.
func (s *Session) Prewarm(ctx context.Context) error {
	s.prewarmOnce.Do(func() {
		if s.detector == nil {
			s.prewarmErr = fmt.Errorf("no detector configured")
			return
		}

		_, span := tracer.Start(ctx, "prewarm detector")
		defer span.End()
		if err := s.detector.Prewarm(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.prewarmErr = fmt.Errorf("detector prewarm failed: %w", err)
		}
	})
	return s.prewarmErr
}

// Run connects to the transport, waits for a participant, speaks the
// greeting and serves the turn loop until shutdown or disconnect. It returns
// nil on a clean session end.
func (s *Session) Run(ctx context.Context, t transport.Transport) error {
	s.stateMu.Lock()
	if s.state == stateClosed {
		s.stateMu.Unlock()
		return ErrSessionClosed
	}
	s.stateMu.Unlock()

	if err := s.Prewarm(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Install the cancel func under the same lock Close takes, so a Close
	// landing at any point either finds it installed or marks the session
	// closed before we get here.
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return ErrSessionClosed
	}
	s.runCancel = cancel
	s.closeMu.Unlock()

	s.transportMu.Lock()
	s.transport = t
	s.transportMu.Unlock()

	if err := t.Connect(ctx); err != nil {
		return &ConnectionError{Err: err}
	}

	participant, err := t.WaitForParticipant(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return &ConnectionError{Err: err}
	}
	s.emit(events.NewParticipantJoined(participant.ID))

	if err := s.detector.Start(ctx, t.Encoding(), DetectorCallbacks{
		SpeechStarted: func() {
			s.emit(events.NewUserSpeechStarted())
		},
		SegmentEnded: func(segment SpeechSegment) {
			s.emit(events.NewUserSpeechSegment(segment.Start, segment.End))
			select {
			case s.segments <- segment:
			default:
				logger.Warn("dropping speech segment, turn queue full")
				s.reportError(ErrTurnQueueFull)
				// Only speak up when nothing else is holding the floor;
				// mid-turn the pending response is the acknowledgment.
				if state := s.currentState(); state == stateIdle || state == stateListening {
					s.say(ctx, fallbackTranscriptionLine, false)
				}
			}
		},
	}); err != nil {
		return fmt.Errorf("failed to start detector: %w", err)
	}
	defer s.detector.Stop()

	s.setState(stateListening)

	// The opening line is scripted, so racing the first user utterance is
	// acceptable: first writer wins.
	s.say(ctx, s.greeting, true)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := t.StartReceiving(ctx, s.detector.Feed); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return &ConnectionError{Err: err}
		}
		s.emit(events.NewParticipantLeft(participant.ID))
		return errParticipantLeft
	})

	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case segment := <-s.segments:
				s.processTurn(ctx, segment)
			}
		}
	})

	err = group.Wait()
	s.cancelSpeech("shutdown")
	s.speakWG.Wait()
	s.setState(stateClosed)

	if errors.Is(err, errParticipantLeft) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close shuts the session down from any state, cancelling all outstanding
// suspended operations. It is safe to call repeatedly and before Run; a Run
// issued after Close returns ErrSessionClosed.
func (s *Session) Close() {
	s.closeMu.Lock()
	s.closed = true
	cancel := s.runCancel
	s.closeMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// processTurn carries one detected speech segment through transcription,
// generation (with tool round-trips) and synthesis.
func (s *Session) processTurn(ctx context.Context, segment SpeechSegment) {
	// Barge-in: a segment arriving while the agent is speaking preempts the
	// in-flight utterance before anything else happens.
	bargedIn := s.cancelSpeech("barge-in")

	ctx, span := tracer.Start(ctx, "conversation turn")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("segment.duration_seconds", segment.Duration().Seconds()),
		attribute.Bool("turn.barge_in", bargedIn),
	)

	s.setState(stateTranscribing)
	transcript, err := s.transcriber.Transcribe(ctx, segment)
	if err != nil {
		transcriptionErr := &TranscriptionError{Err: err}
		span.RecordError(transcriptionErr)
		logger.Warn("turn abandoned", "error", transcriptionErr)
		s.emit(events.NewTranscriptionFailed(transcriptionErr.Error()))
		s.reportError(transcriptionErr)
		s.say(ctx, fallbackTranscriptionLine, bargedIn)
		return
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.setState(stateIdle)
		return
	}

	s.emit(events.NewTranscriptionCompleted(transcript))
	if s.onTranscription != nil {
		s.onTranscription(transcript)
	}
	s.conversation.appendUser(transcript)

	s.setState(stateResponding)
	content, toolCalls := s.respond(ctx)
	if strings.TrimSpace(content) != "" || len(toolCalls) > 0 {
		s.conversation.appendAssistant(content, toolCalls)
	}

	s.say(ctx, content, bargedIn)
}

// respond runs the generation loop, executing tool round-trips until the
// responder produces final assistant text or the chained-call limit forces a
// direct response.
func (s *Session) respond(ctx context.Context) (string, []llms.ToolCall) {
	var executed []llms.ToolCall

	for round := 0; ; round++ {
		response, err := s.generate(ctx)
		if err != nil {
			generationErr := &GenerationError{Err: err}
			logger.Warn("falling back to scripted response", "error", generationErr)
			s.reportError(generationErr)
			return fallbackGenerationLine, executed
		}

		if len(response.ToolCalls) == 0 {
			return response.Content, executed
		}

		if round >= s.toolCallLimit {
			logger.Warn("forcing direct response", "error", ErrToolLoopExceeded, "rounds", round)
			s.reportError(ErrToolLoopExceeded)
			return fallbackGenerationLine, executed
		}

		s.setState(stateToolCalling)
		executed = append(executed, s.executeToolRound(ctx, response.ToolCalls)...)
		s.setState(stateResponding)
	}
}

// executeToolRound runs one responder round of tool calls concurrently,
// joins them, and appends their tool turns in call-issue order so the
// transcript stays reproducible regardless of completion timing.
func (s *Session) executeToolRound(ctx context.Context, calls []llms.ToolCall) []llms.ToolCall {
	results := make([]string, len(calls))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, call := range calls {
		group.Go(func() error {
			s.emit(events.NewToolCallStarted(call.ID, call.Name, call.Arguments))
			response, err := s.registry.Invoke(groupCtx, call)
			if err != nil {
				// Argument and execution failures become textual results the
				// responder can verbalize instead of aborting the pipeline.
				results[i] = fmt.Sprintf("Error: %v", err)
				s.emit(events.NewToolCallFailed(call.ID, call.Name, err.Error()))
				s.reportError(err)
				return nil
			}
			results[i] = response
			s.emit(events.NewToolCallCompleted(call.ID, call.Name, response))
			return nil
		})
	}
	group.Wait()

	for i := range calls {
		calls[i].Response = results[i]
		s.conversation.appendTool(calls[i], results[i])
	}
	return calls
}

func (s *Session) generate(ctx context.Context) (*llms.Response, error) {
	if s.responder == nil {
		return nil, fmt.Errorf("no responder configured")
	}

	turns := s.conversation.Snapshot()
	tools := s.registry.Tools()

	if client, ok := s.responder.(ResponderWithStream); ok {
		return s.consumeStream(ctx, client.GenerateStream(ctx, turns, tools))
	}

	response, err := s.responder.Generate(ctx, turns, tools)
	if err != nil {
		return nil, err
	}
	if s.onResponseChunk != nil && response.Content != "" {
		s.onResponseChunk(response.Content)
	}
	return response, nil
}

func (s *Session) consumeStream(ctx context.Context, stream llms.Stream) (*llms.Response, error) {
	var content strings.Builder
	var toolCalls []llms.ToolCall

	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			return nil, err
		}
		switch chunk := chunk.(type) {
		case llms.StreamContentChunk:
			content.WriteString(chunk.Content())
			if s.onResponseChunk != nil {
				s.onResponseChunk(chunk.Content())
			}
		case llms.StreamToolCallChunk:
			toolCalls = append(toolCalls, chunk.ToolCall())
		}
	}

	return &llms.Response{Content: content.String(), ToolCalls: toolCalls}, nil
}

// say hands text to the synthesizer without blocking the turn loop, so the
// detector keeps feeding segments while the agent speaks.
func (s *Session) say(ctx context.Context, text string, interrupt bool) {
	if s.synthesizer == nil || strings.TrimSpace(text) == "" {
		s.setState(stateIdle)
		return
	}

	// One utterance plays at a time; whatever is still in flight gets
	// preempted before the next request is issued.
	s.cancelSpeech("preempted")

	utterance := UtteranceRequest{ID: uuid.NewString(), Text: text, Interrupt: interrupt}

	speakCtx, cancel := context.WithCancel(ctx)
	s.speakMu.Lock()
	s.speakCancel = cancel
	s.speakingID = utterance.ID
	s.speakMu.Unlock()

	s.setState(stateSynthesizing)
	s.emit(events.NewSynthesisStarted(utterance.ID, utterance.Text, utterance.Interrupt))
	if s.onSpeakingStateChanged != nil {
		s.onSpeakingStateChanged(true)
	}

	s.speakWG.Add(1)
	go func() {
		defer s.speakWG.Done()
		err := s.synthesizer.Speak(speakCtx, utterance, s.writeAudio)

		s.speakMu.Lock()
		if s.speakingID == utterance.ID {
			s.speakCancel = nil
			s.speakingID = ""
		}
		s.speakMu.Unlock()

		if s.onSpeakingStateChanged != nil {
			s.onSpeakingStateChanged(false)
		}

		switch {
		case errors.Is(err, context.Canceled):
			// Cancellation already surfaced by cancelSpeech.
		case err != nil:
			synthesisErr := &SynthesisError{Err: err}
			logger.Warn("utterance dropped", "error", synthesisErr)
			s.reportError(synthesisErr)
		default:
			s.emit(events.NewSynthesisCompleted(utterance.ID))
		}

		s.transitionFrom(stateSynthesizing, stateIdle)
	}()
}

// cancelSpeech preempts the in-flight utterance, if any. The cancellation
// event is emitted before control returns, so it always precedes the next
// utterance request.
func (s *Session) cancelSpeech(reason string) bool {
	s.speakMu.Lock()
	cancel := s.speakCancel
	utteranceID := s.speakingID
	s.speakCancel = nil
	s.speakingID = ""
	s.speakMu.Unlock()

	if cancel == nil {
		return false
	}

	cancel()
	s.emit(events.NewSynthesisCancelled(utteranceID, reason))
	return true
}

func (s *Session) writeAudio(frame []byte) {
	s.transportMu.Lock()
	t := s.transport
	s.transportMu.Unlock()

	if t == nil {
		return
	}
	if err := t.WriteAudio(frame); err != nil {
		logger.Warn("failed to write audio frame", "error", err)
	}
}

func (s *Session) currentState() sessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *Session) setState(to sessionState) {
	s.stateMu.Lock()
	from := s.state
	s.state = to
	s.stateMu.Unlock()

	if from != to {
		s.emit(events.NewTurnStateChanged(from.String(), to.String()))
	}
}

// transitionFrom moves to a new state only when still in the expected one,
// so an async completion does not clobber a barge-in transition.
func (s *Session) transitionFrom(from, to sessionState) {
	s.stateMu.Lock()
	if s.state != from {
		s.stateMu.Unlock()
		return
	}
	s.state = to
	s.stateMu.Unlock()

	s.emit(events.NewTurnStateChanged(from.String(), to.String()))
}

func (s *Session) emit(event events.Event) {
	if s.eventHandler != nil {
		s.eventHandler(event)
	}
}

func (s *Session) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}
