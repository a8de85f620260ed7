package catalog

import (
	"context"
	"errors"
	"testing"

	"live-quiz-engine/internal/domain"
)

type failingLoader struct{ err error }

func (f failingLoader) LoadCatalog(context.Context, string) (domain.Quiz, error) {
	return domain.Quiz{}, f.err
}

func (f failingLoader) CatalogIDs(context.Context) ([]string, error) {
	return nil, f.err
}

func TestFallbackUsesSecondaryWhenPrimaryEmpty(t *testing.T) {
	builtin, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	loader := NewFallback(NewStatic(), builtin)
	ctx := context.Background()

	ids, err := loader.CatalogIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != "iso-9241-usability" {
		t.Fatalf("expected builtin ids, got %v (%v)", ids, err)
	}
	quiz, err := loader.LoadCatalog(ctx, ids[0])
	if err != nil || quiz.ID != ids[0] {
		t.Fatalf("expected builtin catalog, got %+v (%v)", quiz, err)
	}
}

func TestFallbackUsesSecondaryWhenPrimaryFails(t *testing.T) {
	builtin, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	outage := errors.New("connection refused")
	loader := NewFallback(failingLoader{err: outage}, builtin)
	ctx := context.Background()

	ids, err := loader.CatalogIDs(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected builtin ids during outage, got %v (%v)", ids, err)
	}
	if _, err := loader.LoadCatalog(ctx, "iso-25010-quality"); err != nil {
		t.Fatalf("expected builtin catalog during outage, got %v", err)
	}
	if _, err := loader.LoadCatalog(ctx, "missing"); !errors.Is(err, outage) {
		t.Fatalf("expected primary error for unknown id, got %v", err)
	}
}

func TestFallbackPrefersPrimary(t *testing.T) {
	builtin, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	only := builtin.Quizzes()[1]
	loader := NewFallback(NewStatic(only), builtin)
	ctx := context.Background()

	ids, err := loader.CatalogIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != only.ID {
		t.Fatalf("expected primary ids only, got %v (%v)", ids, err)
	}
	if _, err := loader.LoadCatalog(ctx, "nope"); !errors.Is(err, domain.ErrNoGame) {
		t.Fatalf("expected NO_GAME, got %v", err)
	}
}
