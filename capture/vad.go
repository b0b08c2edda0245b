package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	pcmBytesPerSample = 2
	pcmMaxAmplitude   = 32768.0

	// smoothingAlpha is the exponential smoothing factor applied to RMS
	// readings before thresholding.
	smoothingAlpha = 0.3
)

// VoiceGateParams tunes the energy-based speech detector.
type VoiceGateParams struct {
	// MinVolume is the smoothed RMS floor below which a frame counts as
	// silence. Normalized 16-bit PCM, so typical voice lands around 0.05-0.3.
	MinVolume float64
	// StartDuration is how long energy must stay above the floor before an
	// utterance is considered started.
	StartDuration time.Duration
	// StopDuration is how long silence must persist before the utterance is
	// considered finished.
	StopDuration time.Duration
}

// DefaultVoiceGateParams returns parameters suitable for close-mic browser
// capture.
func DefaultVoiceGateParams() VoiceGateParams {
	return VoiceGateParams{
		MinVolume:     0.02,
		StartDuration: 200 * time.Millisecond,
		StopDuration:  800 * time.Millisecond,
	}
}

func (p VoiceGateParams) validate() error {
	if p.MinVolume <= 0 || p.MinVolume >= 1 {
		return fmt.Errorf("min volume must be in (0, 1), got %f", p.MinVolume)
	}
	if p.StartDuration <= 0 || p.StopDuration <= 0 {
		return fmt.Errorf("start and stop durations must be positive")
	}
	return nil
}

// VoiceGate detects utterance boundaries in a stream of 16-bit little-endian
// PCM frames. It reports the start of speech after sustained energy and the
// end of speech after sustained silence, with exponential smoothing so a
// single loud or quiet frame cannot flip the gate.
//
// The gate carries no audio; feed the same frames to the recorder separately.
type VoiceGate struct {
	params VoiceGateParams

	mu          sync.Mutex
	open        bool
	pendingFrom time.Time
	pending     bool
	smoothedRMS float64

	onStart func()
	onStop  func()
}

// NewVoiceGate creates a speech detector. The callbacks fire on utterance
// start and end respectively; either may be nil.
func NewVoiceGate(params VoiceGateParams, onStart, onStop func()) (*VoiceGate, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &VoiceGate{
		params:  params,
		onStart: onStart,
		onStop:  onStop,
	}, nil
}

// Feed analyzes one PCM frame and advances the gate. It returns true while
// the gate considers the respondent to be speaking.
func (g *VoiceGate) Feed(frame []byte) bool {
	rms := frameRMS(frame)
	now := time.Now()

	g.mu.Lock()
	g.smoothedRMS = smoothingAlpha*rms + (1-smoothingAlpha)*g.smoothedRMS
	loud := g.smoothedRMS >= g.params.MinVolume

	var fire func()
	switch {
	case !g.open && loud:
		if !g.pending {
			g.pending = true
			g.pendingFrom = now
		} else if now.Sub(g.pendingFrom) >= g.params.StartDuration {
			g.open = true
			g.pending = false
			fire = g.onStart
		}
	case g.open && !loud:
		if !g.pending {
			g.pending = true
			g.pendingFrom = now
		} else if now.Sub(g.pendingFrom) >= g.params.StopDuration {
			g.open = false
			g.pending = false
			fire = g.onStop
		}
	default:
		// Energy agrees with the current gate state; drop any pending flip.
		g.pending = false
	}
	open := g.open
	g.mu.Unlock()

	if fire != nil {
		fire()
	}
	return open
}

// Open reports whether an utterance is in progress.
func (g *VoiceGate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Reset clears the gate for a new turn.
func (g *VoiceGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.pending = false
	g.smoothedRMS = 0
}

// frameRMS computes the root mean square of a 16-bit little-endian PCM frame,
// normalized to [0, 1].
func frameRMS(frame []byte) float64 {
	numSamples := len(frame) / pcmBytesPerSample
	if numSamples == 0 {
		return 0
	}

	var sumSquares float64
	for i := 0; i < numSamples; i++ {
		sample := int16(binary.LittleEndian.Uint16(frame[i*pcmBytesPerSample:]))
		normalized := float64(sample) / pcmMaxAmplitude
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(numSamples))
}
