// Package capture owns the listening/processing/thinking lifecycle of one
// conversational turn. It collapses the original flag soup (isRecording,
// isProcessing, isGettingSympathize, isSpeaking) into one enumerated state
// plus an orthogonal speaking-suppression flag, so invalid flag combinations
// cannot be represented.
package capture

// State is the capture machine's lifecycle state for the current turn.
type State int

const (
	// StateIdle means no turn is in flight; recording may start.
	StateIdle State = iota

	// StateRecording means the microphone is capturing a segment.
	StateRecording

	// StateProcessing means a finalized segment is being transcribed.
	StateProcessing

	// StateThinking means the transcript was accepted and the empathic
	// response call is in flight.
	StateThinking
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateThinking:
		return "thinking"
	default:
		return "unknown"
	}
}
