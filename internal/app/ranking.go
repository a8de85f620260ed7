package app

import (
	"math"
	"sort"
	"time"

	"live-quiz-engine/internal/domain"
)

// BuildRanking orders players by score descending, then by average correct
// time ascending. Players without correct answers sort after anyone with a
// time sample at equal score; remaining ties keep join order.
func BuildRanking(players []*domain.Player) []domain.RankingEntry {
	ordered := make([]*domain.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].JoinedSeq < ordered[j].JoinedSeq
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return averageOrInf(ordered[i]) < averageOrInf(ordered[j])
	})

	entries := make([]domain.RankingEntry, 0, len(ordered))
	for _, p := range ordered {
		entries = append(entries, domain.RankingEntry{
			PlayerID:     p.ID,
			Nickname:     p.Nickname,
			Score:        p.Score,
			CorrectCount: p.CorrectCount,
			AvgTime:      seconds(p.AverageCorrect()),
			Fastest:      seconds(p.Fastest),
		})
	}
	return entries
}

// ComputeAwards derives the top scorer and the fastest qualifying player.
// A player qualifies for fastest with at least half of totalQuestions
// (rounded up) answered correctly.
func ComputeAwards(ranking []domain.RankingEntry, totalQuestions int) domain.Awards {
	var awards domain.Awards
	if len(ranking) > 0 {
		top := ranking[0]
		awards.TopScorer = &top
	}
	if totalQuestions <= 0 {
		return awards
	}
	minCorrect := int(math.Ceil(float64(totalQuestions) * 0.5))
	for i := range ranking {
		entry := ranking[i]
		if entry.CorrectCount < minCorrect || entry.Fastest == nil {
			continue
		}
		if awards.Fastest == nil || *entry.Fastest < *awards.Fastest.Fastest {
			fastest := entry
			awards.Fastest = &fastest
		}
	}
	return awards
}

// Position returns the 1-based position of playerID in ranking, or 0.
func Position(ranking []domain.RankingEntry, playerID string) int {
	for i, entry := range ranking {
		if entry.PlayerID == playerID {
			return i + 1
		}
	}
	return 0
}

func averageOrInf(p *domain.Player) float64 {
	avg := p.AverageCorrect()
	if avg == nil {
		return math.Inf(1)
	}
	return avg.Seconds()
}

func seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}
