package rabbit

import (
	"encoding/json"
	"testing"
	"time"

	"live-quiz-engine/internal/domain"
)

func TestEncodeResults(t *testing.T) {
	finished := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	winner := domain.RankingEntry{PlayerID: "p1", Nickname: "Ana", Score: 1500, CorrectCount: 1}
	body, err := EncodeResults(domain.FinalResults{
		Code:       "ABCDE",
		Title:      "Sesión ISO",
		Ranking:    []domain.RankingEntry{winner},
		Awards:     domain.Awards{TopScorer: &winner},
		FinishedAt: finished,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var msg ResultsMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Event != "session.finished" || msg.Code != "ABCDE" {
		t.Fatalf("unexpected header fields: %+v", msg)
	}
	if !msg.FinishedAt.Equal(finished) {
		t.Fatalf("expected finishedAt %v, got %v", finished, msg.FinishedAt)
	}
	if len(msg.Ranking) != 1 || msg.Awards.TopScorer == nil || msg.Awards.TopScorer.Score != 1500 {
		t.Fatalf("unexpected ranking payload: %+v", msg)
	}
	if msg.Awards.Fastest != nil {
		t.Fatalf("expected no fastest award")
	}
}
