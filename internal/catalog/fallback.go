package catalog

import (
	"context"
	"errors"
	"log"

	"live-quiz-engine/internal/domain"
)

// Fallback serves catalogs from primary and falls back to secondary when
// primary fails or has no catalogs at all.
type Fallback struct {
	primary   Loader
	secondary Loader
}

func NewFallback(primary, secondary Loader) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) CatalogIDs(ctx context.Context) ([]string, error) {
	ids, err := f.primary.CatalogIDs(ctx)
	if err == nil && len(ids) > 0 {
		return ids, nil
	}
	if err != nil {
		log.Printf("catalog list failed, using fallback catalogs: %v", err)
	}
	return f.secondary.CatalogIDs(ctx)
}

// LoadCatalog tries secondary whenever primary cannot produce the catalog, so
// ids listed by the fallback always resolve.
func (f *Fallback) LoadCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	quiz, err := f.primary.LoadCatalog(ctx, catalogID)
	if err == nil {
		return quiz, nil
	}
	if !errors.Is(err, domain.ErrNoGame) {
		log.Printf("catalog %s load failed, trying fallback: %v", catalogID, err)
	}
	if fallback, ferr := f.secondary.LoadCatalog(ctx, catalogID); ferr == nil {
		return fallback, nil
	}
	return domain.Quiz{}, err
}
