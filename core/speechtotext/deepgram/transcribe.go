package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pipeline "github.com/cadencehq/cadence/core"
	"github.com/cadencehq/cadence/core/speechtotext"
	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
)

const defaultListenHost = "api.deepgram.com"

// TranscriptionClient transcribes speech segments through Deepgram's listen
// websocket, one connection per segment.
type TranscriptionClient struct {
	apiKey  string
	host    string
	options speechtotext.TranscriptionOptions
}

func NewTranscriptionClient(apiKey string, opts ...speechtotext.TranscriptionOption) (*TranscriptionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	client := &TranscriptionClient{apiKey: apiKey, host: defaultListenHost}
	for _, opt := range opts {
		opt(&client.options)
	}

	return client, nil
}

// Transcribe sends the segment's audio upstream and blocks until the final
// transcript arrives, the engine reports an error, or ctx is cancelled.
func (c *TranscriptionClient) Transcribe(ctx context.Context, segment pipeline.SpeechSegment) (string, error) {
	encoding, err := convertEncoding(segment.Encoding)
	if err != nil {
		return "", fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(connectionOptions{
		sampleRate:     encoding.SampleRate,
		encoding:       encoding.Format.Name(),
		interimResults: c.options.InterimTranscriptionCallback != nil,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	// Close the upstream socket when ctx is cancelled so the read loop
	// unblocks.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	for _, frame := range segment.Audio {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return "", fmt.Errorf("failed to write to deepgram client: %w", err)
		}
	}
	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return "", fmt.Errorf("failed to flush deepgram buffer through websocket: %w", err)
	}

	return c.readTranscript(ctx, conn)
}

type connectionOptions struct {
	sampleRate int
	encoding   string

	interimResults bool
}

func (c *TranscriptionClient) connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	model := c.options.Model
	if model == "" {
		model = "nova-3"
	}
	language := c.options.Language
	if language == "" {
		language = "en-US"
	}

	listenURL := url.URL{Scheme: "wss", Host: c.host, Path: "/v1/listen"}
	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", model)
	queryParams.Set("language", language)
	queryParams.Set("smart_format", "true")
	if options.interimResults {
		queryParams.Set("interim_results", "true")
	}
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(listenURL.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (c *TranscriptionClient) readTranscript(ctx context.Context, conn *websocket.Conn) (string, error) {
	var accumulated string

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return strings.TrimSpace(accumulated), nil
			}
			return "", fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		var parsedMsg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			continue
		}

		switch api.TypeResponse(parsedMsg.Type) {
		case api.TypeMessageResponse:
			var msgResp api.MessageResponse
			if err := json.Unmarshal(msg, &msgResp); err != nil {
				log.Println("Failed to unmarshal deepgram message", err)
				continue
			}
			if len(msgResp.Channel.Alternatives) == 0 {
				continue
			}
			transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
			if transcript == "" {
				continue
			}
			if msgResp.IsFinal {
				accumulated = strings.TrimSpace(accumulated + " " + transcript)
			} else if c.options.InterimTranscriptionCallback != nil {
				c.options.InterimTranscriptionCallback(strings.TrimSpace(accumulated + " " + transcript))
			}

		case api.TypeResponse(api.TypeErrorResponse):
			var errResp api.ErrorResponse
			if err := json.Unmarshal(msg, &errResp); err != nil {
				return "", fmt.Errorf("deepgram reported an error")
			}
			return "", fmt.Errorf("deepgram reported an error: %s", errResp.Description)

		case api.TypeMetadataResponse:
			// Metadata arrives after the last result once the stream is
			// flushed.
			return strings.TrimSpace(accumulated), nil
		}
	}
}
