// Package transport defines the boundary to the real-time room the agent
// lives in. The exact framing and codec are owned by the transport
// implementation; the pipeline only sees opaque audio frames.
package transport

import (
	"context"

	"github.com/cadencehq/cadence/core/audio"
)

// Participant identifies a remote peer present in the room.
type Participant struct {
	ID   string
	Name string
}

// Transport is a single-room, single-participant audio channel.
type Transport interface {
	// Connect establishes the transport. It must be called before any other
	// method.
	Connect(ctx context.Context) error

	// WaitForParticipant blocks until a remote participant is present or ctx
	// is cancelled. There is no built-in timeout; cancellation comes from
	// session shutdown.
	WaitForParticipant(ctx context.Context) (*Participant, error)

	// StartReceiving delivers inbound audio frames to onAudio until ctx is
	// cancelled or the participant disconnects. It returns once delivery
	// stops; a nil return means the participant left.
	StartReceiving(ctx context.Context, onAudio func(frame []byte)) error

	// WriteAudio sends one outbound audio frame to the participant.
	WriteAudio(frame []byte) error

	// Encoding describes the PCM encoding frames are exchanged in.
	Encoding() audio.EncodingInfo

	// Close releases the transport. Pending waits return with an error.
	Close() error
}
