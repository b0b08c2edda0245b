// Package survey implements the question-side of the conversation engine:
// answer validation against a question's criteria and the dynamically
// branching traversal of the question graph.
package survey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ParloraLabs/SurveyKit/types"
)

// IsValid reports whether a candidate answer satisfies the question's
// criteria. It is a pure predicate with no side effects.
//
// Rules:
//   - autofill questions with a pre-filled answer are always valid,
//     regardless of the candidate
//   - blank candidates are invalid
//   - categorical: candidate must be an exact, case-sensitive member of the
//     question's categories (fuzzy mapping from free speech to a category is
//     an upstream concern, never this layer's)
//   - scale: candidate must parse as an integer in [1, ScaleMax]
//   - open/text: candidate must be non-blank after trimming
//   - unknown criteria fall back to non-blank validity (permissive default)
func IsValid(q *types.Question, candidate string) bool {
	if q.AutofillEnabled() && q.HasPrefilledAnswer() {
		return true
	}

	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return false
	}

	switch q.Criteria {
	case types.CriteriaCategorical:
		for _, category := range q.Categories {
			if candidate == category {
				return true
			}
		}
		return false
	case types.CriteriaScale:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return false
		}
		return n >= 1 && n <= q.ScaleMax
	case types.CriteriaOpen, types.CriteriaText:
		return true
	default:
		// Permissive default for unrecognized criteria.
		return true
	}
}

// Normalize coerces a valid candidate into the canonical representation for
// the question's criteria: the canonical integer string for scale questions,
// the exact category string for categorical ones, trimmed text otherwise.
// Callers must validate with IsValid first; Normalize returns an error for
// candidates that cannot be coerced.
func Normalize(q *types.Question, candidate string) (string, error) {
	if q.AutofillEnabled() && q.HasPrefilledAnswer() {
		return q.Answer, nil
	}

	trimmed := strings.TrimSpace(candidate)

	switch q.Criteria {
	case types.CriteriaScale:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("scale answer %q is not an integer: %w", candidate, err)
		}
		return strconv.Itoa(n), nil
	case types.CriteriaCategorical:
		for _, category := range q.Categories {
			if candidate == category {
				return category, nil
			}
		}
		return "", fmt.Errorf("answer %q is not one of the question's categories", candidate)
	default:
		return trimmed, nil
	}
}
