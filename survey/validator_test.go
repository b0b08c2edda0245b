package survey

import (
	"testing"

	"github.com/ParloraLabs/SurveyKit/types"
)

func scaleQuestion(max int) *types.Question {
	return &types.Question{ID: "s1", Text: "Rate us", Criteria: types.CriteriaScale, ScaleMax: max}
}

func categoricalQuestion(categories ...string) *types.Question {
	return &types.Question{ID: "c1", Text: "Satisfied?", Criteria: types.CriteriaCategorical, Categories: categories}
}

func TestIsValid_Scale(t *testing.T) {
	q := scaleQuestion(5)

	cases := []struct {
		candidate string
		want      bool
	}{
		{"1", true},
		{"5", true},
		{"6", false},
		{"0", false},
		{" 3 ", true},
		{"three", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValid(q, tc.candidate); got != tc.want {
			t.Errorf("IsValid(scale 5, %q) = %v, want %v", tc.candidate, got, tc.want)
		}
	}
}

func TestIsValid_Categorical_CaseSensitive(t *testing.T) {
	q := categoricalQuestion("Yes", "No")

	if !IsValid(q, "Yes") {
		t.Error("exact category rejected")
	}
	if IsValid(q, "yes") {
		t.Error("case variant accepted; matching must be case-sensitive")
	}
	if IsValid(q, "Maybe") {
		t.Error("non-member accepted")
	}
}

func TestIsValid_OpenText(t *testing.T) {
	q := &types.Question{Criteria: types.CriteriaOpen}
	if !IsValid(q, "anything at all") {
		t.Error("non-blank open answer rejected")
	}
	if IsValid(q, "   ") {
		t.Error("whitespace-only answer accepted")
	}
}

func TestIsValid_UnknownCriteria_Permissive(t *testing.T) {
	q := &types.Question{Criteria: "sentiment"}
	if !IsValid(q, "positive") {
		t.Error("unknown criteria should fall back to non-blank validity")
	}
	if IsValid(q, "") {
		t.Error("blank answer accepted under unknown criteria")
	}
}

func TestIsValid_AutofillAlwaysValid(t *testing.T) {
	q := &types.Question{Criteria: types.CriteriaScale, ScaleMax: 5, Autofill: "Yes", Answer: "4"}
	if !IsValid(q, "") {
		t.Error("autofill question with pre-filled answer should be valid regardless of candidate")
	}

	// No pre-filled answer: autofill alone does not bypass validation.
	q.Answer = ""
	if IsValid(q, "") {
		t.Error("autofill without pre-filled answer should not validate a blank candidate")
	}
}

func TestNormalize_Scale(t *testing.T) {
	q := scaleQuestion(5)
	got, err := Normalize(q, " 03 ")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "3" {
		t.Errorf("Normalize = %q, want %q", got, "3")
	}
}

func TestNormalize_Categorical(t *testing.T) {
	q := categoricalQuestion("Yes", "No")
	got, err := Normalize(q, "No")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "No" {
		t.Errorf("Normalize = %q", got)
	}

	if _, err := Normalize(q, "nope"); err == nil {
		t.Error("expected error for non-member category")
	}
}

func TestNormalize_Open_Trims(t *testing.T) {
	q := &types.Question{Criteria: types.CriteriaText}
	got, err := Normalize(q, "  some feedback  ")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "some feedback" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestNormalize_Autofill_UsesPrefilled(t *testing.T) {
	q := &types.Question{Criteria: types.CriteriaScale, ScaleMax: 5, Autofill: "Yes", Answer: "4"}
	got, err := Normalize(q, "")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "4" {
		t.Errorf("Normalize = %q, want prefilled %q", got, "4")
	}
}
