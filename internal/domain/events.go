package domain

// EventType names an engine-to-client event.
type EventType string

const (
	EventPlayers   EventType = "session:players"
	EventGameReady EventType = "session:gameReady"
	EventReady     EventType = "session:ready"
	EventQuestion  EventType = "question:start"
	EventResults   EventType = "question:results"
	EventFeedback  EventType = "question:feedback"
	EventRanking   EventType = "session:ranking"
	EventFinal     EventType = "session:final"
	EventEnded     EventType = "session:ended"
	EventStatus    EventType = "session:status"
)

// Event is a typed payload delivered to one or more connections.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type PlayersPayload struct {
	Code    string          `json:"code"`
	Players []PlayerSummary `json:"players"`
}

type GameReadyPayload struct {
	GameTitle Text `json:"gameTitle"`
	LLMError  bool `json:"llmError"`
}

type ReadyPayload struct {
	Code           string   `json:"code"`
	Title          string   `json:"title"`
	Context        string   `json:"context"`
	Focus          []string `json:"isoFocus"`
	Language       Language `json:"language"`
	TotalQuestions int      `json:"totalQuestions"`
	TimerSeconds   int      `json:"timerSeconds"`
	GameTitle      Text     `json:"gameTitle"`
}

// QuestionView is the broadcast rendering of a question. The correct index
// and explanation stay private until the round closes.
type QuestionView struct {
	ID              string  `json:"id"`
	Standard        string  `json:"isoStandard,omitempty"`
	Difficulty      string  `json:"difficulty,omitempty"`
	Context         Text    `json:"context"`
	Prompt          Text    `json:"question"`
	Options         Options `json:"options"`
	ApprovedOptions int     `json:"approvedOptions"`
}

type QuestionPayload struct {
	Question     QuestionView `json:"question"`
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	TimerSeconds int          `json:"timerSeconds"`
	Language     Language     `json:"language"`
}

// RoundStats summarizes a closed round.
type RoundStats struct {
	TotalPlayers int `json:"totalPlayers"`
	Answered     int `json:"answered"`
	Correct      int `json:"correct"`
	Incorrect    int `json:"incorrect"`
}

type ResultsPayload struct {
	QuestionID   string         `json:"questionId"`
	CorrectIndex int            `json:"correctIndex"`
	Explanation  Text           `json:"explanation"`
	Stats        RoundStats     `json:"stats"`
	RankingTop   []RankingEntry `json:"rankingTop"`
}

type FeedbackPayload struct {
	QuestionID      string `json:"questionId"`
	Correct         bool   `json:"correct"`
	Choice          *int   `json:"choice"`
	Points          int    `json:"points"`
	TimeMs          *int64 `json:"timeMs"`
	Explanation     Text   `json:"explanation"`
	RankingPosition int    `json:"rankingPosition"`
	TotalPlayers    int    `json:"totalPlayers"`
	Score           int    `json:"score"`
}

type RankingPayload struct {
	Ranking []RankingEntry `json:"ranking"`
}

type FinalPayload struct {
	Ranking []RankingEntry `json:"ranking"`
	Awards  Awards         `json:"awards"`
}

type EndedPayload struct {
	Code string `json:"code"`
}

type StatusPayload struct {
	Message string `json:"message"`
}
