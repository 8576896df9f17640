package deepgram

import (
	"testing"

	"github.com/cadencehq/cadence/core/audio"
)

func TestConvertEncodingAcceptsLinear16Rates(t *testing.T) {
	for _, rate := range []int{8000, 16000, 24000, 32000, 48000} {
		converted, err := convertEncoding(audio.EncodingInfo{SampleRate: rate, Format: audio.EncodingLinear16})
		if err != nil {
			t.Fatalf("rate %d: unexpected error: %v", rate, err)
		}
		if converted.SampleRate != rate || converted.Format != encodingLinear16 {
			t.Errorf("rate %d: unexpected conversion: %+v", rate, converted)
		}
	}
}

func TestConvertEncodingRejectsUnsupportedRates(t *testing.T) {
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 44100, Format: audio.EncodingLinear16}); err == nil {
		t.Error("expected 44100 to be rejected")
	}
}

func TestConvertEncodingRestrictsCompandedRates(t *testing.T) {
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 8000, Format: audio.EncodingMulaw}); err != nil {
		t.Errorf("unexpected error for 8k mulaw: %v", err)
	}
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingMulaw}); err == nil {
		t.Error("expected 16k mulaw to be rejected")
	}
	if _, err := convertEncoding(audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingALaw}); err == nil {
		t.Error("expected 16k alaw to be rejected")
	}
}
