// Package types defines the canonical survey data model shared by the
// conversation engine: questions, recorded answers, and transcript turn records.
package types

import (
	"strings"
	"time"
)

// Question criteria values. The backend template service emits these verbatim.
const (
	CriteriaCategorical = "categorical"
	CriteriaScale       = "scale"
	CriteriaOpen        = "open"
	CriteriaText        = "text"
)

// Question is an immutable node of the survey template.
//
// Child questions are owned by their parent and keyed by the parent category
// value that unlocks them; they only become part of the traversal once the
// parent has been answered with that exact category.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Order    int    `json:"order"`    // sequencing key, ascending
	Criteria string `json:"criteria"` // "categorical", "scale", "open", "text"

	// ScaleMax is the inclusive upper bound for scale questions (answers are
	// integers in [1, ScaleMax]). Zero for non-scale questions.
	ScaleMax int `json:"scales,omitempty"`

	// Categories is the ordered set of accepted values for categorical questions.
	Categories []string `json:"categories,omitempty"`

	ParentID            string   `json:"parent_id,omitempty"`
	ParentCategoryTexts []string `json:"parent_category_texts,omitempty"`

	// Children maps a category value of this question to the ordered child
	// questions revealed when the respondent answers with that category.
	Children map[string][]Question `json:"child_questions,omitempty"`

	// Autofill carries the backend's "Yes"/"No" flag. An autofill question with
	// a pre-filled Answer is answerable without recording.
	Autofill string `json:"autofill,omitempty"`

	// Answer and RawAnswer hold pre-filled values the backend may supply.
	Answer    string `json:"answer,omitempty"`
	RawAnswer string `json:"raw_answer,omitempty"`

	// ParentContext is a display label for spliced children, composed from the
	// parent's text and the chosen category. Assigned by the resolver at splice
	// time; never present on top-level questions.
	ParentContext string `json:"-"`
}

// AutofillEnabled reports whether the backend flagged this question as autofill.
func (q *Question) AutofillEnabled() bool {
	return strings.EqualFold(q.Autofill, "Yes")
}

// HasPrefilledAnswer reports whether a non-blank answer was supplied with the
// question payload.
func (q *Question) HasPrefilledAnswer() bool {
	return strings.TrimSpace(q.Answer) != ""
}

// DisplayText returns the question text prefixed with the parent context for
// spliced children, e.g. "Satisfied? (No) → What went wrong?".
func (q *Question) DisplayText() string {
	if q.ParentContext == "" {
		return q.Text
	}
	return q.ParentContext + " → " + q.Text
}

// Answer is one validated response, created when a turn completes.
// Answers are immutable once recorded; a turn restart replaces the whole value.
type Answer struct {
	QuestionID    string    `json:"question_id"`
	RawTranscript string    `json:"raw_transcript"`
	Value         string    `json:"value"` // normalized per the question's criteria
	Timestamp     time.Time `json:"timestamp"`
}
