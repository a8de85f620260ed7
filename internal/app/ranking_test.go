package app

import (
	"testing"
	"time"

	"live-quiz-engine/internal/domain"
)

func player(id string, seq, score, correct int, times ...time.Duration) *domain.Player {
	p := &domain.Player{ID: id, Nickname: id, Score: score, CorrectCount: correct, JoinedSeq: seq}
	for _, d := range times {
		p.CorrectTime += d
		p.CorrectSamples++
		if p.Fastest == nil || d < *p.Fastest {
			fastest := d
			p.Fastest = &fastest
		}
	}
	return p
}

func TestBuildRankingOrdersByScoreThenAverage(t *testing.T) {
	ranking := BuildRanking([]*domain.Player{
		player("no-time", 1, 100, 0),
		player("timed", 2, 100, 1, 5*time.Second),
		player("leader", 3, 900, 1, 20*time.Second),
		player("slow", 4, 100, 1, 8*time.Second),
	})
	want := []string{"leader", "timed", "slow", "no-time"}
	for i, id := range want {
		if ranking[i].PlayerID != id {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i+1, id, ranking[i].PlayerID, ranking)
		}
	}
	if ranking[3].AvgTime != nil {
		t.Fatalf("expected nil average for player without samples")
	}
	if ranking[1].AvgTime == nil || *ranking[1].AvgTime != 5 {
		t.Fatalf("expected 5s average, got %v", ranking[1].AvgTime)
	}
}

func TestBuildRankingKeepsJoinOrderOnFullTie(t *testing.T) {
	ranking := BuildRanking([]*domain.Player{
		player("second", 2, 0, 0),
		player("first", 1, 0, 0),
	})
	if ranking[0].PlayerID != "first" || ranking[1].PlayerID != "second" {
		t.Fatalf("expected join order, got %+v", ranking)
	}
}

func TestComputeAwards(t *testing.T) {
	ranking := BuildRanking([]*domain.Player{
		player("top", 1, 3000, 2, 9*time.Second, 9*time.Second),
		player("quick-once", 2, 1450, 1, time.Second),
		player("quick-twice", 3, 2800, 2, 2*time.Second, 12*time.Second),
	})

	awards := ComputeAwards(ranking, 4)
	if awards.TopScorer == nil || awards.TopScorer.PlayerID != "top" {
		t.Fatalf("expected top scorer top, got %+v", awards.TopScorer)
	}
	// quick-once has the best time but only 1 of 4 correct (< ceil(2)).
	if awards.Fastest == nil || awards.Fastest.PlayerID != "quick-twice" {
		t.Fatalf("expected fastest quick-twice, got %+v", awards.Fastest)
	}

	awards = ComputeAwards(ranking, 5)
	if awards.Fastest != nil {
		t.Fatalf("expected no fastest with threshold 3, got %+v", awards.Fastest)
	}

	awards = ComputeAwards(ranking, 0)
	if awards.Fastest != nil || awards.TopScorer == nil {
		t.Fatalf("zero questions: expected top scorer only, got %+v", awards)
	}

	if awards := ComputeAwards(nil, 3); awards.TopScorer != nil || awards.Fastest != nil {
		t.Fatalf("expected empty awards without players, got %+v", awards)
	}
}

func TestPosition(t *testing.T) {
	ranking := []domain.RankingEntry{{PlayerID: "a"}, {PlayerID: "b"}}
	if Position(ranking, "b") != 2 || Position(ranking, "z") != 0 {
		t.Fatalf("unexpected positions")
	}
}
