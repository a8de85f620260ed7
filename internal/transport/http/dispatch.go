package http

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

// ackPayload is the flat acknowledgment body: ok, error and operation fields.
type ackPayload map[string]any

func okAck(fields ackPayload) ackPayload {
	if fields == nil {
		fields = ackPayload{}
	}
	fields["ok"] = true
	return fields
}

func errAck(err error) ackPayload {
	return ackPayload{"ok": false, "error": domain.CodeOf(err)}
}

type authorizePayload struct {
	Password string `json:"password"`
}

type codePayload struct {
	Code string `json:"code"`
}

type attachGamePayload struct {
	Code     string            `json:"code"`
	Game     *catalog.Document `json:"game"`
	LLMError bool              `json:"llmError"`
}

type usePredefinedPayload struct {
	Code   string `json:"code"`
	GameID string `json:"gameId"`
}

type joinPayload struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
}

type answerPayload struct {
	Code       string `json:"code"`
	QuestionID string `json:"questionId"`
	Choice     *int   `json:"choice"`
}

// createSessionPayload keeps every field raw so a mistyped value falls back to
// its default instead of failing the whole request.
type createSessionPayload struct {
	Title         json.RawMessage `json:"title"`
	Context       json.RawMessage `json:"context"`
	Focus         json.RawMessage `json:"isoFocus"`
	QuestionCount json.RawMessage `json:"questionCount"`
	Language      json.RawMessage `json:"language"`
	Source        json.RawMessage `json:"source"`
	CatalogID     json.RawMessage `json:"predefinedGameId"`
	TimerSeconds  json.RawMessage `json:"timerSeconds"`
}

func (p createSessionPayload) config() domain.SessionConfig {
	return domain.SessionConfig{
		Title:         looseString(p.Title),
		Context:       looseString(p.Context),
		Focus:         looseStrings(p.Focus),
		QuestionCount: looseInt(p.QuestionCount),
		Language:      domain.Language(looseString(p.Language)),
		Source:        domain.Source(looseString(p.Source)),
		CatalogID:     looseString(p.CatalogID),
		TimerSeconds:  looseInt(p.TimerSeconds),
	}
}

func looseString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// looseInt accepts JSON numbers and numeric strings, truncating fractions.
// Anything else yields 0 so the engine default applies.
func looseInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(looseString(raw)), 64)
		if perr != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// looseStrings keeps the string entries of an array. A non-array yields nil.
func looseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

var errInvalidPayload = domain.NewError(domain.CodeInvalidPayload, "malformed request payload")

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.WrapError(domain.CodeInvalidPayload, "malformed request payload", err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// dispatch routes one inbound request to the engine and builds its acknowledgment.
func (h *WSHandler) dispatch(ctx context.Context, connID string, msg inboundMessage) ackPayload {
	switch msg.Type {
	case "host:authorize":
		var p authorizePayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		if err := h.engine.Authorize(connID, p.Password); err != nil {
			return errAck(err)
		}
		return okAck(nil)

	case "host:createSession":
		var p createSessionPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		code, err := h.engine.CreateSession(connID, p.config())
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"code": code})

	case "host:attachGame":
		var p attachGamePayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		var quiz *domain.Quiz
		if p.Game != nil {
			q := p.Game.Quiz()
			quiz = &q
		}
		count, err := h.engine.AttachQuiz(connID, normalizeCode(p.Code), quiz, p.LLMError)
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"questionCount": count})

	case "host:usePredefined":
		var p usePredefinedPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		count, id, err := h.engine.AttachCatalog(ctx, connID, normalizeCode(p.Code), strings.TrimSpace(p.GameID))
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"questionCount": count, "catalogId": id})

	case "host:generateGame":
		var p codePayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		count, fellBack, err := h.engine.GenerateQuiz(ctx, connID, normalizeCode(p.Code))
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"questionCount": count, "fellBack": fellBack})

	case "host:startGame", "host:launchQuestion", "host:closeQuestion", "host:endGame":
		var p codePayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		return h.hostControl(connID, msg.Type, normalizeCode(p.Code))

	case "player:joinSession":
		var p joinPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		lang, title, err := h.engine.JoinSession(connID, normalizeCode(p.Code), p.Nickname)
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"language": lang, "title": title})

	case "player:submitAnswer":
		var p answerPayload
		if err := decode(msg.Payload, &p); err != nil {
			return errAck(err)
		}
		if p.Choice == nil {
			return errAck(errInvalidPayload)
		}
		correct, points, err := h.engine.SubmitAnswer(connID, normalizeCode(p.Code), p.QuestionID, *p.Choice)
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"correct": correct, "points": points})

	default:
		return errAck(domain.NewError(domain.CodeUnknownType, "unsupported message type "+msg.Type))
	}
}

func (h *WSHandler) hostControl(connID, typ, code string) ackPayload {
	switch typ {
	case "host:startGame":
		if err := h.engine.StartGame(connID, code); err != nil {
			return errAck(err)
		}
	case "host:launchQuestion":
		index, err := h.engine.LaunchQuestion(connID, code)
		if err != nil {
			return errAck(err)
		}
		return okAck(ackPayload{"index": index})
	case "host:closeQuestion":
		if err := h.engine.CloseQuestion(connID, code); err != nil {
			return errAck(err)
		}
	case "host:endGame":
		if err := h.engine.EndGame(connID, code); err != nil {
			return errAck(err)
		}
	}
	return okAck(nil)
}
