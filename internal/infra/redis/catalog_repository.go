package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

// CatalogRepository caches catalogs in Redis as JSON documents and falls back
// to a loader on cache miss.
// Catalogs are stored as: SET quiz:catalog:{catalogID} {document json} EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader catalog.Loader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader catalog.Loader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	if quiz, ok := r.fromCache(ctx, catalogID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.fromCache(ctx, catalogID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(catalog.FromQuiz(quiz))
		if err == nil {
			if err := r.client.Set(ctx, r.key(catalogID), data, r.ttlWithJitter()).Err(); err != nil {
				log.Printf("cache catalog %s: %v", catalogID, err)
			}
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *CatalogRepository) CatalogIDs(ctx context.Context) ([]string, error) {
	return r.loader.CatalogIDs(ctx)
}

func (r *CatalogRepository) fromCache(ctx context.Context, catalogID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(catalogID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Quiz{}, false
	}
	return doc.Quiz(), true
}

func (r *CatalogRepository) key(catalogID string) string {
	return "quiz:catalog:" + catalogID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
