package energy

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	pipeline "github.com/cadencehq/cadence/core"
	"github.com/cadencehq/cadence/core/audio"
)

// 20ms of linear16 mono at the default sample rate
const frameBytes = audio.DefaultSampleRate / 50 * 2

func silentFrame() []byte {
	return make([]byte, frameBytes)
}

func loudFrame() []byte {
	frame := make([]byte, frameBytes)
	for i := 0; i < len(frame); i += 2 {
		binary.LittleEndian.PutUint16(frame[i:], uint16(4000))
	}
	return frame
}

func startedDetector(t *testing.T, callbacks pipeline.DetectorCallbacks) *Detector {
	t.Helper()

	detector := New(
		WithThreshold(500),
		WithMinSpeech(40*time.Millisecond),
		WithHangover(60*time.Millisecond),
		WithPreRoll(40*time.Millisecond),
	)
	if err := detector.Prewarm(context.Background()); err != nil {
		t.Fatalf("failed to prewarm: %v", err)
	}
	if err := detector.Start(context.Background(), audio.GetDefaultEncodingInfo(), callbacks); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	return detector
}

func TestDetectorRequiresPrewarm(t *testing.T) {
	detector := New()
	err := detector.Start(context.Background(), audio.GetDefaultEncodingInfo(), pipeline.DetectorCallbacks{})
	if err == nil {
		t.Error("expected Start to fail before Prewarm")
	}
}

func TestDetectorRejectsUnsupportedEncoding(t *testing.T) {
	detector := New()
	if err := detector.Prewarm(context.Background()); err != nil {
		t.Fatalf("failed to prewarm: %v", err)
	}

	err := detector.Start(context.Background(),
		audio.EncodingInfo{SampleRate: 8000, Format: audio.EncodingMulaw},
		pipeline.DetectorCallbacks{})
	if err == nil {
		t.Error("expected mulaw to be rejected")
	}
}

func TestDetectorSegmentsSpeech(t *testing.T) {
	var started int
	var segments []pipeline.SpeechSegment

	detector := startedDetector(t, pipeline.DetectorCallbacks{
		SpeechStarted: func() { started++ },
		SegmentEnded:  func(segment pipeline.SpeechSegment) { segments = append(segments, segment) },
	})

	for i := 0; i < 3; i++ {
		detector.Feed(silentFrame())
	}
	for i := 0; i < 8; i++ {
		detector.Feed(loudFrame())
	}
	for i := 0; i < 4; i++ {
		detector.Feed(silentFrame())
	}

	if started != 1 {
		t.Errorf("expected one speech onset, got %d", started)
	}
	if len(segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(segments))
	}

	segment := segments[0]
	if !segment.Start.Before(segment.End) {
		t.Errorf("segment boundaries inverted: %v .. %v", segment.Start, segment.End)
	}
	if len(segment.Audio) == 0 {
		t.Fatal("expected captured audio")
	}
	if rms(segment.Audio[0]) >= 500 {
		t.Error("expected the segment to open with buffered pre-roll audio")
	}
}

// Boundaries are computed from accumulated frame durations, so feeding the
// same frames always yields the same segment span regardless of delivery
// timing.
func TestDetectorBoundariesAreAudioTime(t *testing.T) {
	var segments []pipeline.SpeechSegment
	detector := startedDetector(t, pipeline.DetectorCallbacks{
		SegmentEnded: func(segment pipeline.SpeechSegment) { segments = append(segments, segment) },
	})

	for i := 0; i < 3; i++ {
		detector.Feed(silentFrame())
	}
	for i := 0; i < 8; i++ {
		detector.Feed(loudFrame())
	}
	for i := 0; i < 4; i++ {
		detector.Feed(silentFrame())
	}

	if len(segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(segments))
	}
	if got := segments[0].Duration(); got != 140*time.Millisecond {
		t.Errorf("expected a 140ms segment, got %v", got)
	}
}

func TestDetectorIgnoresShortBlip(t *testing.T) {
	var started int
	detector := startedDetector(t, pipeline.DetectorCallbacks{
		SpeechStarted: func() { started++ },
	})

	for i := 0; i < 4; i++ {
		detector.Feed(silentFrame())
	}
	for i := 0; i < 2; i++ {
		detector.Feed(loudFrame())
	}
	for i := 0; i < 10; i++ {
		detector.Feed(silentFrame())
	}

	if started != 0 {
		t.Errorf("expected no onset from a two-frame blip, got %d", started)
	}
}

func TestDetectorStopDiscardsOpenSegment(t *testing.T) {
	var segments int
	detector := startedDetector(t, pipeline.DetectorCallbacks{
		SegmentEnded: func(pipeline.SpeechSegment) { segments++ },
	})

	for i := 0; i < 8; i++ {
		detector.Feed(loudFrame())
	}
	if err := detector.Stop(); err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	detector.Feed(silentFrame())

	if segments != 0 {
		t.Errorf("expected the open segment discarded on Stop, got %d", segments)
	}
}
