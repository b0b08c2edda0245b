package capture

import (
	"context"
	"errors"
	"sync"

	"github.com/ParloraLabs/SurveyKit/logger"
	"github.com/ParloraLabs/SurveyKit/stt"
)

// ErrTurnSuperseded is returned when an in-flight operation completes after
// the turn it belonged to was canceled or the survey completed. The result
// must be discarded; machine state is untouched.
var ErrTurnSuperseded = errors.New("turn superseded; result discarded")

// Machine drives the capture lifecycle of one conversational turn:
// Idle → Recording → Processing → (Thinking) → Idle.
//
// At most one audio segment is in flight at a time. StartRecording outside
// Idle, or while suppressed, is a no-op rather than an error. A per-turn
// generation counter makes late transcription results no-ops once the turn
// is no longer current.
type Machine struct {
	recorder Recorder
	gateway  *stt.Gateway

	mu         sync.Mutex
	state      State
	speaking   bool
	completed  bool
	hasCurrent bool
	generation uint64
}

// NewMachine creates a capture machine over a recorder and transcription
// gateway.
func NewMachine(recorder Recorder, gateway *stt.Gateway) *Machine {
	return &Machine{
		recorder: recorder,
		gateway:  gateway,
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetSpeaking sets the external speaking-suppression flag. While true,
// transitions out of Idle are suppressed.
func (m *Machine) SetSpeaking(speaking bool) {
	m.mu.Lock()
	m.speaking = speaking
	m.mu.Unlock()
}

// SetQuestionAvailable tells the machine whether a question is currently
// presented. Recording cannot start without one.
func (m *Machine) SetQuestionAvailable(available bool) {
	m.mu.Lock()
	m.hasCurrent = available
	m.mu.Unlock()
}

// MarkCompleted disables the machine permanently and invalidates any
// in-flight turn.
func (m *Machine) MarkCompleted() {
	m.mu.Lock()
	m.completed = true
	m.generation++
	m.state = StateIdle
	m.mu.Unlock()
}

// Cancel invalidates the in-flight turn, if any, and returns to Idle.
// Results of already-dispatched operations are discarded on arrival.
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.generation++
	m.state = StateIdle
	m.mu.Unlock()
}

// StartRecording begins microphone capture. It reports whether recording
// actually started: calls outside Idle, or while disabled (no current
// question, survey completed, speaking), are no-ops.
func (m *Machine) StartRecording(ctx context.Context) (bool, error) {
	m.mu.Lock()
	if m.state != StateIdle || m.speaking || m.completed || !m.hasCurrent {
		m.mu.Unlock()
		return false, nil
	}
	m.state = StateRecording
	m.mu.Unlock()

	if err := m.recorder.Start(ctx); err != nil {
		m.mu.Lock()
		m.state = StateIdle
		m.mu.Unlock()
		return false, err
	}
	logger.Debug("recording started")
	return true, nil
}

// StopRecording finalizes the captured segment, transitions to Processing,
// and feeds the segment to the transcription gateway. On success the machine
// stays in Processing (the orchestrator advances it to Thinking); on failure
// or empty capture it returns to Idle with a retryable error and no partial
// answer is recorded.
func (m *Machine) StopRecording(ctx context.Context, language string) (string, error) {
	m.mu.Lock()
	if m.state != StateRecording {
		m.mu.Unlock()
		return "", nil
	}
	m.state = StateProcessing
	generation := m.generation
	m.mu.Unlock()

	segment, err := m.recorder.Stop(ctx)
	if err != nil {
		return "", m.failTurn(generation, err)
	}

	text, err := m.gateway.Transcribe(ctx, segment.Data, stt.TranscriptionConfig{
		ContentType: segment.ContentType,
		Language:    language,
	})
	if err != nil {
		return "", m.failTurn(generation, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != generation {
		return "", ErrTurnSuperseded
	}
	return text, nil
}

// BeginThinking transitions Processing → Thinking while the empathic
// response call is in flight.
func (m *Machine) BeginThinking() {
	m.mu.Lock()
	if m.state == StateProcessing {
		m.state = StateThinking
	}
	m.mu.Unlock()
}

// FinishTurn returns the machine to Idle once the next question is ready.
func (m *Machine) FinishTurn() {
	m.mu.Lock()
	if m.state == StateProcessing || m.state == StateThinking {
		m.state = StateIdle
	}
	m.mu.Unlock()
}

// failTurn returns the machine to Idle unless the turn was superseded while
// the operation was in flight, in which case the late result is discarded
// without touching state.
func (m *Machine) failTurn(generation uint64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != generation {
		return ErrTurnSuperseded
	}
	m.state = StateIdle
	return cause
}
