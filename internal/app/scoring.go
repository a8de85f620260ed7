package app

import (
	"math"
	"time"

	"live-quiz-engine/internal/domain"
)

const (
	basePoints  = 1000
	speedPoints = 500
)

// Score returns the points for an answer given after elapsed within limit.
// Correct answers earn the base plus a speed bonus that decays linearly to
// zero at the limit; late correct answers still earn the base.
func Score(elapsed, limit time.Duration, correct bool) int {
	if !correct {
		return 0
	}
	ratio := 0.0
	if limit > 0 {
		ratio = (limit.Seconds() - elapsed.Seconds()) / limit.Seconds()
	}
	ratio = math.Max(0, math.Min(1, ratio))
	return basePoints + int(math.Round(speedPoints*ratio))
}

// recordOutcome applies a scored answer to the player record.
func recordOutcome(p *domain.Player, questionID string, elapsed time.Duration, correct bool, points int) {
	if correct {
		p.CorrectCount++
		p.CorrectTime += elapsed
		p.CorrectSamples++
		if p.Fastest == nil || elapsed < *p.Fastest {
			fastest := elapsed
			p.Fastest = &fastest
		}
	}
	p.Score += points
	p.History = append(p.History, domain.Outcome{
		QuestionID: questionID,
		Correct:    correct,
		Points:     points,
		Elapsed:    elapsed,
	})
}
