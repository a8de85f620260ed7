package catalog

import (
	"fmt"

	"live-quiz-engine/internal/domain"
)

// Document is the flat wire shape shared by built-in catalogs, stored catalogs
// and the external question generator.
type Document struct {
	ID        string             `json:"game_id,omitempty" yaml:"game_id"`
	TitleES   string             `json:"game_title_es" yaml:"game_title_es"`
	TitleEN   string             `json:"game_title_en" yaml:"game_title_en"`
	Focus     []string           `json:"iso_focus,omitempty" yaml:"iso_focus"`
	Questions []DocumentQuestion `json:"questions" yaml:"questions"`
}

// DocumentQuestion is one question in a Document.
type DocumentQuestion struct {
	ID            string   `json:"id" yaml:"id"`
	Standard      string   `json:"iso_standard,omitempty" yaml:"iso_standard"`
	Difficulty    string   `json:"difficulty,omitempty" yaml:"difficulty"`
	ContextES     string   `json:"context_es" yaml:"context_es"`
	ContextEN     string   `json:"context_en" yaml:"context_en"`
	QuestionES    string   `json:"question_es" yaml:"question_es"`
	QuestionEN    string   `json:"question_en" yaml:"question_en"`
	OptionsES     []string `json:"options_es" yaml:"options_es"`
	OptionsEN     []string `json:"options_en" yaml:"options_en"`
	CorrectIndex  int      `json:"correct_index" yaml:"correct_index"`
	ExplanationES string   `json:"explanation_es" yaml:"explanation_es"`
	ExplanationEN string   `json:"explanation_en" yaml:"explanation_en"`
}

// Quiz converts the document into the engine's quiz model. Questions without
// an id are numbered by position.
func (d Document) Quiz() domain.Quiz {
	quiz := domain.Quiz{
		ID:        d.ID,
		Title:     domain.Text{ES: d.TitleES, EN: d.TitleEN},
		Focus:     d.Focus,
		Questions: make([]domain.Question, 0, len(d.Questions)),
	}
	for i, q := range d.Questions {
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%d", i+1)
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:           id,
			Difficulty:   q.Difficulty,
			Standard:     q.Standard,
			Context:      domain.Text{ES: q.ContextES, EN: q.ContextEN},
			Prompt:       domain.Text{ES: q.QuestionES, EN: q.QuestionEN},
			Options:      domain.Options{ES: q.OptionsES, EN: q.OptionsEN},
			CorrectIndex: q.CorrectIndex,
			Explanation:  domain.Text{ES: q.ExplanationES, EN: q.ExplanationEN},
		})
	}
	return quiz
}

// FromQuiz converts a quiz back into its document shape.
func FromQuiz(quiz domain.Quiz) Document {
	doc := Document{
		ID:        quiz.ID,
		TitleES:   quiz.Title.ES,
		TitleEN:   quiz.Title.EN,
		Focus:     quiz.Focus,
		Questions: make([]DocumentQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		doc.Questions = append(doc.Questions, DocumentQuestion{
			ID:            q.ID,
			Standard:      q.Standard,
			Difficulty:    q.Difficulty,
			ContextES:     q.Context.ES,
			ContextEN:     q.Context.EN,
			QuestionES:    q.Prompt.ES,
			QuestionEN:    q.Prompt.EN,
			OptionsES:     q.Options.ES,
			OptionsEN:     q.Options.EN,
			CorrectIndex:  q.CorrectIndex,
			ExplanationES: q.Explanation.ES,
			ExplanationEN: q.Explanation.EN,
		})
	}
	return doc
}
