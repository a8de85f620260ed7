package domain

import "time"

// Language is the display-language mode chosen for a session.
type Language string

const (
	LanguageES Language = "ES"
	LanguageEN Language = "EN"
	LanguageBI Language = "BI"
)

// ParseLanguage maps raw input to a Language, defaulting to ES.
func ParseLanguage(raw string) Language {
	switch Language(raw) {
	case LanguageEN:
		return LanguageEN
	case LanguageBI:
		return LanguageBI
	default:
		return LanguageES
	}
}

// Source selects where a session's quiz content comes from.
type Source string

const (
	SourcePredefined Source = "predefined"
	SourceGenerated  Source = "generated"
)

// ParseSource maps raw input to a Source. "llm" is accepted as an alias of generated.
func ParseSource(raw string) Source {
	switch raw {
	case string(SourceGenerated), "llm":
		return SourceGenerated
	default:
		return SourcePredefined
	}
}

// Status is the externally reported lifecycle status of a session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusGameReady Status = "game_ready"
	StatusReady     Status = "ready"
	StatusFinished  Status = "finished"
)

// Text is a user-facing string in up to two languages.
type Text struct {
	ES string `json:"es,omitempty"`
	EN string `json:"en,omitempty"`
}

// Options holds the answer options per language, index-aligned.
type Options struct {
	ES []string `json:"es,omitempty"`
	EN []string `json:"en,omitempty"`
}

// Count is the language-agnostic option count; the first non-empty list wins.
func (o Options) Count() int {
	if len(o.ES) > 0 {
		return len(o.ES)
	}
	return len(o.EN)
}

// Question models a multiple-choice question with a single correct option.
type Question struct {
	ID           string  `json:"id"`
	Difficulty   string  `json:"difficulty,omitempty"`
	Standard     string  `json:"isoStandard,omitempty"`
	Context      Text    `json:"context"`
	Prompt       Text    `json:"question"`
	Options      Options `json:"options"`
	CorrectIndex int     `json:"correctIndex"`
	Explanation  Text    `json:"explanation"`
}

// Quiz is a titled, ordered list of questions.
type Quiz struct {
	ID        string     `json:"id,omitempty"`
	Title     Text       `json:"title"`
	Focus     []string   `json:"focus,omitempty"`
	Questions []Question `json:"questions"`
}

// SessionConfig is the host-supplied configuration of a session.
type SessionConfig struct {
	Title         string   `json:"title"`
	Context       string   `json:"context"`
	Focus         []string `json:"isoFocus"`
	QuestionCount int      `json:"questionCount"`
	Language      Language `json:"language"`
	Source        Source   `json:"source"`
	CatalogID     string   `json:"predefinedGameId,omitempty"`
	TimerSeconds  int      `json:"timerSeconds"`
}

// TimeLimit returns the per-question time limit as a duration.
func (c SessionConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimerSeconds) * time.Second
}

// Outcome is one entry of a player's per-question history.
type Outcome struct {
	QuestionID string        `json:"questionId"`
	Correct    bool          `json:"correct"`
	Points     int           `json:"points"`
	Elapsed    time.Duration `json:"-"`
}

// Player is a participant enrolled in a session.
type Player struct {
	ID           string
	Nickname     string
	Score        int
	CorrectCount int
	// CorrectTime accumulates elapsed time over correct answers only.
	CorrectTime    time.Duration
	CorrectSamples int
	Fastest        *time.Duration
	History        []Outcome
	JoinedSeq      int
}

// AverageCorrect returns the mean correct-answer time, or nil with no samples.
func (p *Player) AverageCorrect() *time.Duration {
	if p.CorrectSamples == 0 {
		return nil
	}
	avg := p.CorrectTime / time.Duration(p.CorrectSamples)
	return &avg
}

// Response is the single recorded answer of a player for the open round.
type Response struct {
	PlayerID string
	Choice   int
	Correct  bool
	Points   int
	Elapsed  time.Duration
}

// RankingEntry is a snapshot-friendly view of a player's standing.
type RankingEntry struct {
	PlayerID     string   `json:"playerId"`
	Nickname     string   `json:"nickname"`
	Score        int      `json:"score"`
	CorrectCount int      `json:"correctCount"`
	AvgTime      *float64 `json:"avgTime"`
	Fastest      *float64 `json:"fastest"`
}

// Awards are the end-of-game superlatives.
type Awards struct {
	TopScorer *RankingEntry `json:"topScorer,omitempty"`
	Fastest   *RankingEntry `json:"fastest,omitempty"`
}

// FinalResults is the outcome of an end-of-game computation.
type FinalResults struct {
	Code       string         `json:"code"`
	Title      string         `json:"title"`
	Ranking    []RankingEntry `json:"ranking"`
	Awards     Awards         `json:"awards"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// PlayerSummary is the host-facing view of an enrolled player.
type PlayerSummary struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}
