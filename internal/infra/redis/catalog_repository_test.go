package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{Loader: catalog.NewStatic(sampleQuiz())}
	repo := NewCatalogRepository(client, loader, time.Minute)

	quiz, err := repo.GetCatalog(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.loads() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.loads())
	}
	if !mr.Exists("quiz:catalog:quiz-1") {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetCatalog(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached catalog: %v", err)
	}
	if loader.loads() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.loads())
	}
	if cached.Questions[0].CorrectIndex != quiz.Questions[0].CorrectIndex || cached.Title != quiz.Title {
		t.Fatalf("cached catalog differs: %+v vs %+v", cached, quiz)
	}
}

type countingLoader struct {
	catalog.Loader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.Loader.LoadCatalog(ctx, catalogID)
}

func (l *countingLoader) loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: domain.Text{ES: "Prueba", EN: "Sample"},
		Questions: []domain.Question{
			{
				ID:           "q1",
				Prompt:       domain.Text{EN: "What is 2 + 2?"},
				Options:      domain.Options{EN: []string{"3", "4", "5", "6"}},
				CorrectIndex: 1,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
