package catalog

import (
	"fmt"

	"live-quiz-engine/internal/domain"
)

// OptionCount is the number of answer options every question must carry.
const OptionCount = 4

// Validate checks the quiz shape before it may be attached to a session.
func Validate(quiz domain.Quiz) error {
	if len(quiz.Questions) == 0 {
		return domain.NewError(domain.CodeInvalidGame, "quiz has no questions")
	}
	seen := make(map[string]struct{}, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if q.ID == "" {
			return invalid(i, "missing id")
		}
		if _, dup := seen[q.ID]; dup {
			return invalid(i, "duplicate id "+q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Prompt.ES == "" && q.Prompt.EN == "" {
			return invalid(i, "missing prompt")
		}
		count := q.Options.Count()
		if count != OptionCount {
			return invalid(i, fmt.Sprintf("expected %d options, got %d", OptionCount, count))
		}
		if len(q.Options.ES) > 0 && len(q.Options.EN) > 0 && len(q.Options.ES) != len(q.Options.EN) {
			return invalid(i, "option lists differ in length across languages")
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= count {
			return invalid(i, fmt.Sprintf("correct index %d out of range", q.CorrectIndex))
		}
	}
	return nil
}

func invalid(index int, reason string) error {
	return domain.NewError(domain.CodeInvalidGame, fmt.Sprintf("question %d: %s", index+1, reason))
}
