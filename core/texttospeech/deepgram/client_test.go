package deepgram

import (
	"testing"

	"github.com/cadencehq/cadence/core/audio"
	"github.com/cadencehq/cadence/core/texttospeech"
)

func TestNewTextToSpeechClientRequiresAPIKey(t *testing.T) {
	if _, err := NewTextToSpeechClient("", VoiceThalia); err == nil {
		t.Error("expected an error for an empty api key")
	}
}

func TestNewTextToSpeechClientValidatesVoice(t *testing.T) {
	if _, err := NewTextToSpeechClient("dg-key", "aura-2-nonexistent-en"); err == nil {
		t.Error("expected an unknown voice to be rejected")
	}

	client, err := NewTextToSpeechClient("dg-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.voice != defaultVoice {
		t.Errorf("expected the default voice, got %s", client.voice)
	}
}

func TestNewTextToSpeechClientAppliesOptions(t *testing.T) {
	encoding := audio.EncodingInfo{SampleRate: 48000, Format: audio.EncodingLinear16}
	client, err := NewTextToSpeechClient("dg-key", VoiceAsteria, texttospeech.WithEncodingInfo(encoding))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.voice != VoiceAsteria {
		t.Errorf("unexpected voice: %s", client.voice)
	}
	if client.options.EncodingInfo != encoding {
		t.Errorf("unexpected encoding: %+v", client.options.EncodingInfo)
	}
}
