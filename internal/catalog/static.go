package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"live-quiz-engine/internal/domain"
)

// Loader fetches catalogs from a backing store.
type Loader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Quiz, error)
	CatalogIDs(ctx context.Context) ([]string, error)
}

// Summary describes a catalog without its questions.
type Summary struct {
	ID            string      `json:"id"`
	Title         domain.Text `json:"title"`
	QuestionCount int         `json:"questionCount"`
}

//go:embed builtin.yaml
var builtinYAML []byte

// Static is an ordered, in-memory set of catalogs. The first catalog is the default.
type Static struct {
	order   []string
	quizzes map[string]domain.Quiz
}

func NewStatic(quizzes ...domain.Quiz) *Static {
	s := &Static{quizzes: make(map[string]domain.Quiz, len(quizzes))}
	for _, quiz := range quizzes {
		if _, ok := s.quizzes[quiz.ID]; !ok {
			s.order = append(s.order, quiz.ID)
		}
		s.quizzes[quiz.ID] = quiz
	}
	return s
}

// Builtin parses the catalogs compiled into the binary.
func Builtin() (*Static, error) {
	return ParseYAML(builtinYAML)
}

// ParseYAML builds a Static from a YAML list of documents. Every catalog must validate.
func ParseYAML(data []byte) (*Static, error) {
	var docs []Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse catalogs: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return nil, fmt.Errorf("catalog %q: missing game_id", doc.TitleEN)
		}
		quiz := doc.Quiz()
		if err := Validate(quiz); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", doc.ID, err)
		}
		quizzes = append(quizzes, quiz)
	}
	return NewStatic(quizzes...), nil
}

func (s *Static) LoadCatalog(_ context.Context, catalogID string) (domain.Quiz, error) {
	if quiz, ok := s.quizzes[catalogID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrNoGame
}

func (s *Static) CatalogIDs(_ context.Context) ([]string, error) {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, nil
}

// Quizzes returns the catalogs in order.
func (s *Static) Quizzes() []domain.Quiz {
	quizzes := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		quizzes = append(quizzes, s.quizzes[id])
	}
	return quizzes
}

// Summarize describes a quiz for catalog listings.
func Summarize(quiz domain.Quiz) Summary {
	return Summary{ID: quiz.ID, Title: quiz.Title, QuestionCount: len(quiz.Questions)}
}
