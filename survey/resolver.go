package survey

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ParloraLabs/SurveyKit/types"
)

// ErrNoCurrentQuestion is returned when an answer is recorded after the
// traversal plan is exhausted.
var ErrNoCurrentQuestion = errors.New("no current question to answer")

// ErrAnswerMismatch is returned when a recorded answer does not reference the
// current question.
var ErrAnswerMismatch = errors.New("answer does not match the current question")

// Resolver walks the realized traversal plan of one survey session.
//
// The plan starts as the top-level questions sorted by order and grows as
// branches are revealed: recording an answer whose value matches a key in the
// current question's child map splices that ordered child sequence
// immediately after the current position. The realized order is stable; a
// question id appears in the plan at most once.
//
// A Resolver is owned by a single session's orchestrator and is not safe for
// concurrent use.
type Resolver struct {
	plan    []types.Question
	index   int
	answers map[string]types.Answer
	inPlan  map[string]bool
}

// NewResolver builds a resolver from the fetched top-level question set.
// Questions are sorted by order ascending before the plan is realized;
// duplicate ids are dropped.
func NewResolver(questions []types.Question) *Resolver {
	sorted := make([]types.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	r := &Resolver{
		answers: make(map[string]types.Answer),
		inPlan:  make(map[string]bool),
	}
	for _, q := range sorted {
		if r.inPlan[q.ID] {
			continue
		}
		r.inPlan[q.ID] = true
		r.plan = append(r.plan, q)
	}
	return r
}

// Current returns the question at the current position, or false when the
// plan is exhausted.
func (r *Resolver) Current() (*types.Question, bool) {
	if r.index >= len(r.plan) {
		return nil, false
	}
	return &r.plan[r.index], true
}

// RecordAnswer stores the answer for the current question and advances the
// plan. If the current question has children keyed by the answer's normalized
// value, that ordered child sequence is spliced immediately after the current
// position; an unmatched value appends no children and is never an error.
func (r *Resolver) RecordAnswer(ans types.Answer) error {
	current, ok := r.Current()
	if !ok {
		return ErrNoCurrentQuestion
	}
	if ans.QuestionID != current.ID {
		return fmt.Errorf("%w: got %q, current is %q", ErrAnswerMismatch, ans.QuestionID, current.ID)
	}

	r.answers[ans.QuestionID] = ans

	if children := current.Children[ans.Value]; len(children) > 0 {
		r.splice(current, ans.Value, children)
	}

	r.index++
	return nil
}

// splice inserts the revealed children immediately after the current
// position, labeling each with the parent context for transcript display.
func (r *Resolver) splice(parent *types.Question, category string, children []types.Question) {
	parentContext := fmt.Sprintf("%s (%s)", parent.DisplayText(), category)

	insert := make([]types.Question, 0, len(children))
	for _, child := range children {
		if r.inPlan[child.ID] {
			continue
		}
		r.inPlan[child.ID] = true
		child.ParentContext = parentContext
		insert = append(insert, child)
	}
	if len(insert) == 0 {
		return
	}

	tail := make([]types.Question, len(r.plan[r.index+1:]))
	copy(tail, r.plan[r.index+1:])
	r.plan = append(r.plan[:r.index+1], append(insert, tail...)...)
}

// IsComplete reports whether the realized plan is exhausted. Branch expansion
// happens synchronously inside RecordAnswer, so no expansion can be pending
// once the index passes the plan's end.
func (r *Resolver) IsComplete() bool {
	return r.index >= len(r.plan)
}

// Answer returns the recorded answer for a question id.
func (r *Resolver) Answer(questionID string) (types.Answer, bool) {
	ans, ok := r.answers[questionID]
	return ans, ok
}

// Plan returns a snapshot of the realized plan in traversal order.
func (r *Resolver) Plan() []types.Question {
	out := make([]types.Question, len(r.plan))
	copy(out, r.plan)
	return out
}

// Answered returns the realized plan entries that have recorded answers, in
// plan order, pairing each question with its answer. This is the batch the
// orchestrator submits at session end.
func (r *Resolver) Answered() []AnsweredQuestion {
	out := make([]AnsweredQuestion, 0, len(r.answers))
	for _, q := range r.plan {
		if ans, ok := r.answers[q.ID]; ok {
			out = append(out, AnsweredQuestion{Question: q, Answer: ans})
		}
	}
	return out
}

// Position returns the 1-based number of the current question for display.
func (r *Resolver) Position() int {
	return r.index + 1
}

// AnsweredQuestion pairs a realized plan entry with its recorded answer.
type AnsweredQuestion struct {
	Question types.Question
	Answer   types.Answer
}
