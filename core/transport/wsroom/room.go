// Package wsroom hosts a single-participant audio room over a WebSocket
// endpoint. Binary frames carry raw audio in both directions; text frames
// carry small JSON control messages.
package wsroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cadencehq/cadence/core/audio"
	"github.com/cadencehq/cadence/core/transport"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const inboundFrameBuffer = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// joinMessage is the optional first text frame a client may send to
// identify itself.
type joinMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Option func(*Room)

func WithListenAddress(address string) Option {
	return func(r *Room) { r.address = address }
}

func WithEncoding(encoding audio.EncodingInfo) Option {
	return func(r *Room) { r.encoding = encoding }
}

func WithPath(path string) Option {
	return func(r *Room) { r.path = path }
}

// Room is a transport.Transport backed by an embedded WebSocket server.
// It admits one participant at a time; later connections are refused
// until the current one leaves.
type Room struct {
	address  string
	path     string
	encoding audio.EncodingInfo

	server   *http.Server
	listener net.Listener

	mu       sync.Mutex
	conn     *websocket.Conn
	frames   chan []byte
	joined   chan *transport.Participant
	left     chan struct{}
	closed   bool
}

func New(opts ...Option) *Room {
	room := &Room{
		address:  ":8080",
		path:     "/room",
		encoding: audio.GetDefaultEncodingInfo(),
		joined:   make(chan *transport.Participant, 1),
	}
	for _, opt := range opts {
		opt(room)
	}
	return room
}

// Connect starts the embedded server. The returned error covers binding
// the listener; accept-loop failures surface through StartReceiving.
func (r *Room) Connect(ctx context.Context) error {
	_, span := tracer.Start(ctx, "wsroom.connect")
	defer span.End()

	if r.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", r.address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", r.address, err)
	}
	r.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(r.path, r.handleRoom)
	r.server = &http.Server{Handler: mux}

	go func() {
		if err := r.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("room server stopped", "error", err)
		}
	}()

	logger.Info("room listening", "address", listener.Addr().String(), "path", r.path)
	return nil
}

// Address reports the bound listen address, useful when the configured
// address used port 0.
func (r *Room) Address() string {
	if r.listener == nil {
		return r.address
	}
	return r.listener.Addr().String()
}

func (r *Room) handleRoom(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	if r.conn != nil {
		r.mu.Unlock()
		http.Error(w, "room is occupied", http.StatusConflict)
		return
	}
	r.mu.Unlock()

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	participant := &transport.Participant{
		ID:   uuid.NewString(),
		Name: req.URL.Query().Get("name"),
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	messageType, payload, err := conn.ReadMessage()
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		return
	}

	frames := make(chan []byte, inboundFrameBuffer)
	left := make(chan struct{})

	switch messageType {
	case websocket.TextMessage:
		var join joinMessage
		if err := json.Unmarshal(payload, &join); err == nil && join.Type == "join" {
			if join.ID != "" {
				participant.ID = join.ID
			}
			if join.Name != "" {
				participant.Name = join.Name
			}
		}
	case websocket.BinaryMessage:
		// Client skipped the join handshake and went straight to audio.
		frames <- payload
	}

	r.mu.Lock()
	r.conn = conn
	r.frames = frames
	r.left = left
	r.mu.Unlock()

	select {
	case r.joined <- participant:
	default:
		logger.Warn("participant joined while another join is pending", "participant", participant.ID)
	}

	go r.readLoop(conn, frames, left)
}

func (r *Room) readLoop(conn *websocket.Conn, frames chan []byte, left chan struct{}) {
	defer func() {
		close(left)
		conn.Close()

		r.mu.Lock()
		if r.conn == conn {
			r.conn = nil
			r.frames = nil
			r.left = nil
		}
		r.mu.Unlock()
	}()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		select {
		case frames <- payload:
		default:
			logger.Warn("dropping inbound audio frame, consumer is behind")
		}
	}
}

// WaitForParticipant blocks until a client joins the room or ctx is
// cancelled.
func (r *Room) WaitForParticipant(ctx context.Context) (*transport.Participant, error) {
	select {
	case participant := <-r.joined:
		logger.Info("participant joined", "participant", participant.ID, "name", participant.Name)
		return participant, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StartReceiving forwards the participant's audio frames to onAudio. A
// nil return means the participant disconnected.
func (r *Room) StartReceiving(ctx context.Context, onAudio func(frame []byte)) error {
	r.mu.Lock()
	frames, left := r.frames, r.left
	r.mu.Unlock()

	if frames == nil {
		return errors.New("no participant connected")
	}

	for {
		select {
		case frame := <-frames:
			onAudio(frame)
		case <-left:
			// Drain what arrived before the disconnect.
			for {
				select {
				case frame := <-frames:
					onAudio(frame)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WriteAudio sends one audio frame to the participant.
func (r *Room) WriteAudio(frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return errors.New("no participant connected")
	}
	return r.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (r *Room) Encoding() audio.EncodingInfo {
	return r.encoding
}

// Close shuts the server down and disconnects the participant.
func (r *Room) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	conn := r.conn
	r.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room closing"),
			time.Now().Add(time.Second))
		conn.Close()
	}
	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return r.server.Shutdown(ctx)
	}
	return nil
}
