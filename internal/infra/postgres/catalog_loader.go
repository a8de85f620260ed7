package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

// CatalogLoader loads catalog documents stored as JSONB in Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, catalogID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrNoGame
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load catalog: %w", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if doc.ID == "" {
		doc.ID = catalogID
	}
	quiz := doc.Quiz()
	if err := catalog.Validate(quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (l *CatalogLoader) CatalogIDs(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT id FROM catalogs ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan catalog id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveCatalog upserts a catalog document at the given list position.
func (l *CatalogLoader) SaveCatalog(ctx context.Context, position int, quiz domain.Quiz) error {
	data, err := json.Marshal(catalog.FromQuiz(quiz))
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO catalogs (id, position, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data`,
		quiz.ID, position, string(data))
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
