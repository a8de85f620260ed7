package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

const maxBodyBytes = 4 << 20

var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// Generator asks an Ollama-compatible completion endpoint for a catalog document.
type Generator struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewGenerator(baseURL, model string, timeout time.Duration) *Generator {
	return &Generator{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type completionResponse struct {
	Response string `json:"response"`
}

func (g *Generator) Generate(ctx context.Context, config domain.SessionConfig) (domain.Quiz, error) {
	body, err := json.Marshal(completionRequest{Model: g.model, Prompt: BuildPrompt(config), Stream: false})
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Quiz{}, fmt.Errorf("generator returned HTTP %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("read generator response: %w", err)
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz := doc.Quiz()
	if quiz.ID == "" {
		quiz.ID = "generated"
	}
	return quiz, nil
}

// ParseDocument extracts a catalog document from a generator reply. The reply
// may be the document itself, an Ollama envelope whose response field holds
// the document, or free text wrapping a single JSON object.
func ParseDocument(raw []byte) (catalog.Document, error) {
	if doc, ok := decodeDocument(raw); ok {
		return doc, nil
	}

	var envelope completionResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Response != "" {
		raw = []byte(envelope.Response)
		if doc, ok := decodeDocument(raw); ok {
			return doc, nil
		}
	}

	if block := jsonBlock.Find(raw); block != nil {
		if doc, ok := decodeDocument(block); ok {
			return doc, nil
		}
	}
	return catalog.Document{}, errors.New("generator reply holds no quiz document")
}

func decodeDocument(raw []byte) (catalog.Document, bool) {
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return catalog.Document{}, false
	}
	return doc, len(doc.Questions) > 0
}

// BuildPrompt renders the generation instructions for config.
func BuildPrompt(config domain.SessionConfig) string {
	teaching := config.Context
	if teaching == "" {
		teaching = "Sin contexto"
	}
	var b strings.Builder
	b.WriteString("Genera un objeto JSON con la estructura de juego ISO descrita (game_title_es, game_title_en, iso_focus, questions).")
	fmt.Fprintf(&b, " Debe contener %d preguntas sobre %s.", config.QuestionCount, strings.Join(config.Focus, ", "))
	b.WriteString(" Cada pregunta incluye: context_es, context_en, question_es, question_en, options_es (4), options_en (4), correct_index, explanation_es, explanation_en, iso_standard, difficulty.")
	b.WriteString(" Usa escenarios realistas en proyectos de software.")
	fmt.Fprintf(&b, " Contexto docente: %s.", teaching)
	b.WriteString(" Responde solo con JSON válido.")
	return b.String()
}
