package survey

import (
	"errors"
	"testing"
	"time"

	"github.com/ParloraLabs/SurveyKit/types"
)

func answer(questionID, value string) types.Answer {
	return types.Answer{
		QuestionID:    questionID,
		RawTranscript: value,
		Value:         value,
		Timestamp:     time.Now(),
	}
}

func branchingTemplate() []types.Question {
	return []types.Question{
		{
			ID: "q2", Text: "Anything else?", Order: 2, Criteria: types.CriteriaOpen,
		},
		{
			ID: "q1", Text: "Satisfied?", Order: 1, Criteria: types.CriteriaCategorical,
			Categories: []string{"Yes", "No"},
			Children: map[string][]types.Question{
				"No": {
					{ID: "q1a", Text: "What went wrong?", Order: 1, Criteria: types.CriteriaOpen, ParentID: "q1"},
					{ID: "q1b", Text: "How can we improve?", Order: 2, Criteria: types.CriteriaOpen, ParentID: "q1"},
				},
			},
		},
	}
}

func TestResolver_SortsByOrder(t *testing.T) {
	r := NewResolver(branchingTemplate())

	current, ok := r.Current()
	if !ok {
		t.Fatal("expected current question")
	}
	if current.ID != "q1" {
		t.Errorf("Current() = %s, want q1 (order 1 before order 2)", current.ID)
	}
}

func TestResolver_BranchTaken_SplicesChildren(t *testing.T) {
	r := NewResolver(branchingTemplate())

	if err := r.RecordAnswer(answer("q1", "No")); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	plan := r.Plan()
	wantOrder := []string{"q1", "q1a", "q1b", "q2"}
	if len(plan) != len(wantOrder) {
		t.Fatalf("plan length = %d, want %d", len(plan), len(wantOrder))
	}
	for i, id := range wantOrder {
		if plan[i].ID != id {
			t.Errorf("plan[%d] = %s, want %s", i, plan[i].ID, id)
		}
	}

	// The next question is the first spliced child, not the original sibling.
	current, ok := r.Current()
	if !ok {
		t.Fatal("expected current question")
	}
	if current.ID != "q1a" {
		t.Errorf("Current() = %s, want q1a", current.ID)
	}
	if current.ParentContext != "Satisfied? (No)" {
		t.Errorf("ParentContext = %q", current.ParentContext)
	}
	if got := current.DisplayText(); got != "Satisfied? (No) → What went wrong?" {
		t.Errorf("DisplayText() = %q", got)
	}
}

func TestResolver_BranchNotTaken_PlanUnchanged(t *testing.T) {
	r := NewResolver(branchingTemplate())

	if err := r.RecordAnswer(answer("q1", "Yes")); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}

	if got := len(r.Plan()); got != 2 {
		t.Errorf("plan length = %d, want 2 (no children spliced)", got)
	}
	current, _ := r.Current()
	if current.ID != "q2" {
		t.Errorf("Current() = %s, want q2", current.ID)
	}
}

func TestResolver_UnexpectedCategory_Graceful(t *testing.T) {
	r := NewResolver(branchingTemplate())

	if err := r.RecordAnswer(answer("q1", "Unsure")); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if got := len(r.Plan()); got != 2 {
		t.Errorf("plan length = %d, want 2", got)
	}
}

func TestResolver_Completion(t *testing.T) {
	r := NewResolver(branchingTemplate())

	if r.IsComplete() {
		t.Fatal("resolver complete before any answers")
	}

	if err := r.RecordAnswer(answer("q1", "Yes")); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnswer(answer("q2", "all good")); err != nil {
		t.Fatal(err)
	}

	if !r.IsComplete() {
		t.Error("resolver not complete after answering the full plan")
	}
	if _, ok := r.Current(); ok {
		t.Error("Current() returned a question after completion")
	}
	if err := r.RecordAnswer(answer("q2", "again")); !errors.Is(err, ErrNoCurrentQuestion) {
		t.Errorf("expected ErrNoCurrentQuestion, got %v", err)
	}
}

func TestResolver_AnswerMismatch(t *testing.T) {
	r := NewResolver(branchingTemplate())

	err := r.RecordAnswer(answer("q2", "skip ahead"))
	if !errors.Is(err, ErrAnswerMismatch) {
		t.Errorf("expected ErrAnswerMismatch, got %v", err)
	}
	// No state advanced.
	current, _ := r.Current()
	if current.ID != "q1" {
		t.Errorf("Current() = %s after rejected answer", current.ID)
	}
}

func TestResolver_NestedBranching_ContextChains(t *testing.T) {
	questions := []types.Question{
		{
			ID: "root", Text: "Happy?", Order: 1, Criteria: types.CriteriaCategorical,
			Categories: []string{"Yes", "No"},
			Children: map[string][]types.Question{
				"No": {
					{
						ID: "why", Text: "Why not?", Order: 1, Criteria: types.CriteriaCategorical,
						Categories: []string{"Price", "Quality"},
						Children: map[string][]types.Question{
							"Price": {
								{ID: "price-detail", Text: "What price would be fair?", Order: 1, Criteria: types.CriteriaOpen},
							},
						},
					},
				},
			},
		},
	}

	r := NewResolver(questions)
	if err := r.RecordAnswer(answer("root", "No")); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnswer(answer("why", "Price")); err != nil {
		t.Fatal(err)
	}

	current, ok := r.Current()
	if !ok {
		t.Fatal("expected nested child")
	}
	want := "Happy? (No) → Why not? (Price) → What price would be fair?"
	if got := current.DisplayText(); got != want {
		t.Errorf("DisplayText() = %q, want %q", got, want)
	}
}

func TestResolver_DuplicateIDsDropped(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", Text: "A", Order: 1, Criteria: types.CriteriaOpen},
		{ID: "q1", Text: "A again", Order: 2, Criteria: types.CriteriaOpen},
	}
	r := NewResolver(questions)
	if got := len(r.Plan()); got != 1 {
		t.Errorf("plan length = %d, want 1", got)
	}
}

func TestResolver_Answered_InPlanOrder(t *testing.T) {
	r := NewResolver(branchingTemplate())
	if err := r.RecordAnswer(answer("q1", "No")); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordAnswer(answer("q1a", "slow service")); err != nil {
		t.Fatal(err)
	}

	got := r.Answered()
	if len(got) != 2 {
		t.Fatalf("Answered() length = %d, want 2", len(got))
	}
	if got[0].Question.ID != "q1" || got[1].Question.ID != "q1a" {
		t.Errorf("Answered() order = %s, %s", got[0].Question.ID, got[1].Question.ID)
	}
	if got[1].Answer.Value != "slow service" {
		t.Errorf("answer value = %q", got[1].Answer.Value)
	}
}
