package deepgram

import (
	"fmt"
	"slices"

	"github.com/cadencehq/cadence/core/audio"
	"github.com/cadencehq/cadence/core/texttospeech"
)

const defaultSpeakHost = "api.deepgram.com"

type deepgramVoice string

const (
	VoiceThalia  deepgramVoice = "aura-2-thalia-en"
	VoiceAsteria deepgramVoice = "aura-asteria-en"
	VoiceOrion   deepgramVoice = "aura-orion-en"
	VoiceLuna    deepgramVoice = "aura-luna-en"

	defaultVoice = VoiceThalia
)

// GetAvailableVoices lists the voices this client accepts.
func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{VoiceThalia, VoiceAsteria, VoiceOrion, VoiceLuna}
}

// TextToSpeechClient synthesizes utterances through Deepgram's speak
// websocket, one connection per utterance so preemption maps to closing the
// in-flight socket.
type TextToSpeechClient struct {
	apiKey  string
	host    string
	voice   deepgramVoice
	options texttospeech.TextToSpeechOptions
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...texttospeech.TextToSpeechOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	client := &TextToSpeechClient{
		apiKey: apiKey,
		host:   defaultSpeakHost,
		voice:  defaultVoice,
		options: texttospeech.TextToSpeechOptions{
			EncodingInfo: audio.GetDefaultEncodingInfo(),
		},
	}

	if voice != "" {
		if !slices.Contains(GetAvailableVoices(), voice) {
			return nil, fmt.Errorf("invalid voice")
		}
		client.voice = voice
	}

	for _, opt := range opts {
		opt(&client.options)
	}

	return client, nil
}
