// Package events defines the typed session event contract.
//
// Event kinds are grouped by pipeline-stage namespaces:
//
//   - participant.*
//   - user_speech.*
//   - transcription.*
//   - tool_call.*
//   - synthesis.*
//   - turn_state.*
//
// participant events
//
//   - ParticipantJoined (participant.joined): a remote participant became
//     present on the transport.
//   - ParticipantLeft (participant.left): the remote participant disconnected.
//
// user_speech events
//
//   - UserSpeechStarted (user_speech.started): the detector declared a
//     segment open.
//   - UserSpeechSegment (user_speech.segment): the detector closed a segment
//     and handed it off for transcription.
//
// transcription events
//
//   - TranscriptionCompleted (transcription.completed): final transcript text
//     for a segment.
//   - TranscriptionFailed (transcription.failed): the transcriber reported an
//     error; the turn was abandoned.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution or argument
//     validation failed.
//
// synthesis events
//
//   - SynthesisStarted (synthesis.started): an utterance request was handed
//     to the synthesizer.
//   - SynthesisCancelled (synthesis.cancelled): in-flight synthesis was
//     preempted, either by barge-in or by session shutdown.
//   - SynthesisCompleted (synthesis.completed): playback finished.
//
// turn_state events
//
//   - TurnStateChanged (turn_state.changed): the turn loop moved between
//     states.
package events
