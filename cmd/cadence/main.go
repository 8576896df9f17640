package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pipeline "github.com/cadencehq/cadence/core"
	"github.com/cadencehq/cadence/core/config"
	"github.com/cadencehq/cadence/core/llms/groq"
	"github.com/cadencehq/cadence/core/llms/openai"
	"github.com/cadencehq/cadence/core/speechtotext"
	sttdeepgram "github.com/cadencehq/cadence/core/speechtotext/deepgram"
	ttsdeepgram "github.com/cadencehq/cadence/core/texttospeech/deepgram"
	"github.com/cadencehq/cadence/core/tools"
	"github.com/cadencehq/cadence/core/transport/wsroom"
	"github.com/cadencehq/cadence/core/vad/energy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration is incomplete", "error", err)
		os.Exit(1)
	}

	room := wsroom.New(wsroom.WithListenAddress(cfg.ListenAddress))
	defer room.Close()

	if err := serve(ctx, cfg, room); err != nil {
		slog.Error("agent stopped", "error", err)
		os.Exit(1)
	}
}

// serve runs one session per participant until shutdown. Each session
// starts with a fresh conversation.
func serve(ctx context.Context, cfg config.Config, room *wsroom.Room) error {
	responder, err := buildResponder(cfg)
	if err != nil {
		return err
	}

	for {
		session, err := buildSession(cfg, responder)
		if err != nil {
			return err
		}

		if err := session.Run(ctx, room); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		slog.Info("session ended, waiting for the next participant")
	}
}

func buildResponder(cfg config.Config) (pipeline.Responder, error) {
	if cfg.GroqAPIKey != "" {
		var opts []groq.ClientOption
		if cfg.GroqModel != "" {
			opts = append(opts, groq.WithModel(cfg.GroqModel))
		}
		return groq.NewClient(cfg.GroqAPIKey, opts...)
	}

	var opts []openai.ClientOption
	if cfg.OpenAIModel != "" {
		opts = append(opts, openai.WithModel(cfg.OpenAIModel))
	}
	return openai.NewClient(cfg.OpenAIAPIKey, opts...)
}

func buildSession(cfg config.Config, responder pipeline.Responder) (*pipeline.Session, error) {
	transcriber, err := sttdeepgram.NewTranscriptionClient(cfg.DeepgramAPIKey,
		speechtotext.WithInterimTranscriptionCallback(func(transcript string) {
			slog.Debug("interim transcript", "transcript", transcript)
		}),
	)
	if err != nil {
		return nil, err
	}

	voice := ttsdeepgram.VoiceThalia
	if cfg.Voice != "" {
		found := false
		for _, candidate := range ttsdeepgram.GetAvailableVoices() {
			if string(candidate) == cfg.Voice {
				voice, found = candidate, true
				break
			}
		}
		if !found {
			return nil, errors.New("unknown voice: " + cfg.Voice)
		}
	}
	synthesizer, err := ttsdeepgram.NewTextToSpeechClient(cfg.DeepgramAPIKey, voice)
	if err != nil {
		return nil, err
	}

	registry, err := pipeline.NewToolRegistry(tools.NewWeatherTool())
	if err != nil {
		return nil, err
	}

	opts := []pipeline.SessionOption{
		pipeline.WithDetector(energy.New()),
		pipeline.WithTranscriber(transcriber),
		pipeline.WithResponder(responder),
		pipeline.WithSynthesizer(synthesizer),
		pipeline.WithTools(registry),
		pipeline.WithTranscriptionCallback(func(transcript string) {
			slog.Info("user said", "transcript", transcript)
		}),
		pipeline.WithErrorCallback(func(err error) {
			slog.Warn("recovered pipeline error", "error", err)
		}),
	}
	if cfg.SystemPrompt != "" {
		opts = append(opts, pipeline.WithSystemPrompt(cfg.SystemPrompt))
	}

	return pipeline.NewSession(opts...), nil
}
