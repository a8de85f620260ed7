package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

// CatalogRepository caches catalogs with TTL to avoid repeated loader hits.
// Concurrent misses for the same catalog share one load.
type CatalogRepository struct {
	loader catalog.Loader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewCatalogRepository(loader catalog.Loader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(catalogID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		if quiz, ok := r.cached(catalogID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[catalogID] = cachedCatalog{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// CatalogIDs is not cached; listing is cheap for every loader in use.
func (r *CatalogRepository) CatalogIDs(ctx context.Context) ([]string, error) {
	return r.loader.CatalogIDs(ctx)
}

func (r *CatalogRepository) cached(catalogID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(r.clock()) {
		return entry.quiz, true
	}
	return domain.Quiz{}, false
}

func (r *CatalogRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
