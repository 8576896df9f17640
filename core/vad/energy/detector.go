// Package energy implements voice-activity detection from short-time RMS
// energy over PCM frames. It is deliberately engine-agnostic: only the
// segment-boundary behavior (sensitivity, minimum speech, hangover) is part
// of the contract, not the detection internals.
package energy

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	pipeline "github.com/cadencehq/cadence/core"
	"github.com/cadencehq/cadence/core/audio"
)

const (
	defaultThreshold = 500.0
	defaultMinSpeech = 120 * time.Millisecond
	defaultHangover  = 600 * time.Millisecond
	defaultPreRoll   = 240 * time.Millisecond

	// smoothing window over per-frame voice decisions
	decisionWindow = 4
)

type Option func(*Detector)

// WithThreshold sets the RMS level (over int16 samples) above which a frame
// counts as voiced.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithMinSpeech sets how much voiced audio must accumulate before a segment
// opens.
func WithMinSpeech(duration time.Duration) Option {
	return func(d *Detector) {
		d.minSpeech = duration
	}
}

// WithHangover sets how long voice must stay absent before an open segment
// is declared ended.
func WithHangover(duration time.Duration) Option {
	return func(d *Detector) {
		d.hangover = duration
	}
}

// WithPreRoll sets how much audio from just before speech onset is included
// at the start of each segment.
func WithPreRoll(duration time.Duration) Option {
	return func(d *Detector) {
		d.preRoll = duration
	}
}

type detectorPhase int

const (
	phaseIdle detectorPhase = iota
	phaseOnset
	phaseSpeech
)

// Detector segments a continuous audio stream into speech spans. Time is
// tracked in audio time (accumulated frame durations), not wall clock, so
// boundary behavior is independent of delivery jitter.
type Detector struct {
	threshold float64
	minSpeech time.Duration
	hangover  time.Duration
	preRoll   time.Duration

	mu        sync.Mutex
	prewarmed bool
	started   bool
	encoding  audio.EncodingInfo
	callbacks pipeline.DetectorCallbacks

	phase     detectorPhase
	baseTime  time.Time
	elapsed   time.Duration
	decisions []bool

	preRollFrames   [][]byte
	preRollDuration time.Duration

	segmentStart  time.Duration
	segmentFrames [][]byte
	voicedFor     time.Duration
	silentFor     time.Duration
}

func New(opts ...Option) *Detector {
	d := &Detector{
		threshold: defaultThreshold,
		minSpeech: defaultMinSpeech,
		hangover:  defaultHangover,
		preRoll:   defaultPreRoll,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Prewarm allocates the detector's working state ahead of the first frame.
func (d *Detector) Prewarm(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.decisions = make([]bool, 0, decisionWindow)
	d.prewarmed = true
	return nil
}

// Start begins a detection stream for the given encoding.
func (d *Detector) Start(_ context.Context, encoding audio.EncodingInfo, callbacks pipeline.DetectorCallbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.prewarmed {
		return fmt.Errorf("detector not prewarmed")
	}
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}
	if encoding.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported encoding: %s", encoding.Format.Name())
	}

	d.encoding = encoding
	d.callbacks = callbacks
	d.phase = phaseIdle
	d.baseTime = time.Now()
	d.elapsed = 0
	d.started = true
	return nil
}

// Feed hands the detector one PCM frame. Callbacks fire synchronously on the
// caller's goroutine.
func (d *Detector) Feed(frame []byte) {
	d.mu.Lock()

	if !d.started || len(frame) == 0 {
		d.mu.Unlock()
		return
	}

	frameDuration := d.encoding.Duration(len(frame))
	d.elapsed += frameDuration
	voiced := d.smooth(rms(frame) >= d.threshold)

	var (
		speechStarted func()
		segmentEnded  func(pipeline.SpeechSegment)
		segment       pipeline.SpeechSegment
		opened        bool
		closed        bool
	)

	switch d.phase {
	case phaseIdle:
		if voiced {
			d.phase = phaseOnset
			d.segmentStart = d.elapsed - frameDuration
			d.segmentFrames = append([][]byte(nil), d.preRollFrames...)
			d.segmentFrames = append(d.segmentFrames, frame)
			d.voicedFor = frameDuration
			break
		}
		d.pushPreRoll(frame, frameDuration)

	case phaseOnset:
		d.segmentFrames = append(d.segmentFrames, frame)
		if voiced {
			d.voicedFor += frameDuration
			if d.voicedFor >= d.minSpeech {
				d.phase = phaseSpeech
				d.silentFor = 0
				opened = true
				speechStarted = d.callbacks.SpeechStarted
			}
			break
		}
		// false start: recycle the buffered frames as pre-roll
		for _, buffered := range d.segmentFrames {
			d.pushPreRoll(buffered, d.encoding.Duration(len(buffered)))
		}
		d.reset()

	case phaseSpeech:
		d.segmentFrames = append(d.segmentFrames, frame)
		if voiced {
			d.silentFor = 0
			break
		}
		d.silentFor += frameDuration
		if d.silentFor >= d.hangover {
			segment = pipeline.SpeechSegment{
				Start:    d.baseTime.Add(d.segmentStart),
				End:      d.baseTime.Add(d.elapsed - d.silentFor),
				Audio:    d.segmentFrames,
				Encoding: d.encoding,
			}
			segmentEnded = d.callbacks.SegmentEnded
			closed = true
			d.reset()
		}
	}

	d.mu.Unlock()

	if opened && speechStarted != nil {
		speechStarted()
	}
	if closed && segmentEnded != nil {
		segmentEnded(segment)
	}
}

// Stop tears the stream down. Any open segment is discarded.
func (d *Detector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = false
	d.reset()
	d.preRollFrames = nil
	d.preRollDuration = 0
	return nil
}

func (d *Detector) reset() {
	d.phase = phaseIdle
	d.segmentFrames = nil
	d.voicedFor = 0
	d.silentFor = 0
}

// smooth votes a frame decision over the last few frames to avoid flapping
// on single noisy frames.
func (d *Detector) smooth(voiced bool) bool {
	d.decisions = append(d.decisions, voiced)
	if len(d.decisions) > decisionWindow {
		d.decisions = d.decisions[len(d.decisions)-decisionWindow:]
	}
	votes := 0
	for _, decision := range d.decisions {
		if decision {
			votes++
		}
	}
	return votes*2 > len(d.decisions)
}

func (d *Detector) pushPreRoll(frame []byte, duration time.Duration) {
	d.preRollFrames = append(d.preRollFrames, frame)
	d.preRollDuration += duration
	for len(d.preRollFrames) > 0 && d.preRollDuration > d.preRoll {
		dropped := d.preRollFrames[0]
		d.preRollFrames = d.preRollFrames[1:]
		d.preRollDuration -= d.encoding.Duration(len(dropped))
	}
}

// rms computes root-mean-square energy over little-endian int16 samples.
func rms(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		sample := float64(int16(binary.LittleEndian.Uint16(frame[2*i:])))
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(samples))
}
