package types

import "time"

// TurnKind tags a transcript record variant.
type TurnKind string

// Transcript record kinds, matching the rendering layer's item types.
const (
	TurnQuestion   TurnKind = "question"
	TurnUserAnswer TurnKind = "user_answer"
	TurnSympathy   TurnKind = "sympathy_response"
	TurnCompletion TurnKind = "completion"
	TurnMessage    TurnKind = "message"
)

// TurnRecord is one entry in the conversation transcript log.
//
// Records carry display text and a monotonically increasing sequence index and
// are used only for ordered transcript reconstruction, never for business
// logic.
type TurnRecord struct {
	Seq  int      `json:"seq"`
	Kind TurnKind `json:"type"`
	Text string   `json:"text"`

	// QuestionID and QuestionNumber are set on question records so the
	// rendering layer can show "Question N:" headers.
	QuestionID     string `json:"question_id,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
