package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"live-quiz-engine/internal/domain"
)

const rankingTopSize = 5

// phase is the explicit lifecycle state of a session.
type phase int

const (
	phasePending phase = iota
	phaseGameReady
	phaseLobby
	phaseRoundOpen
	phaseRoundClosed
	phaseFinished
)

type action int

const (
	actionAttach action = iota
	actionStart
	actionLaunch
	actionClose
	actionEnd
)

// transitions lists every allowed (phase, action) pair. Anything missing is rejected.
var transitions = map[phase]map[action]phase{
	phasePending:     {actionAttach: phaseGameReady, actionEnd: phaseFinished},
	phaseGameReady:   {actionAttach: phaseGameReady, actionStart: phaseLobby, actionEnd: phaseFinished},
	phaseLobby:       {actionStart: phaseLobby, actionLaunch: phaseRoundOpen, actionEnd: phaseFinished},
	phaseRoundOpen:   {actionClose: phaseRoundClosed, actionEnd: phaseFinished},
	phaseRoundClosed: {actionLaunch: phaseRoundOpen, actionEnd: phaseFinished},
	phaseFinished:    {actionEnd: phaseFinished},
}

func (p phase) next(a action) (phase, error) {
	if to, ok := transitions[p][a]; ok {
		return to, nil
	}
	return p, domain.ErrInvalidState
}

func (p phase) status() domain.Status {
	switch p {
	case phasePending:
		return domain.StatusPending
	case phaseGameReady:
		return domain.StatusGameReady
	case phaseFinished:
		return domain.StatusFinished
	default:
		return domain.StatusReady
	}
}

// Session is one live quiz: its lifecycle, question cursor, players and the
// open round's responses. Every exported operation runs under mu.
type Session struct {
	code      string
	hostID    string
	config    domain.SessionConfig
	createdAt time.Time
	now       func() time.Time
	out       Broadcaster

	mu         sync.Mutex
	phase      phase
	quiz       *domain.Quiz
	fellBack   bool
	cursor     int
	roundStart time.Time
	responses  map[string]domain.Response
	players    map[string]*domain.Player
	joinSeq    int
	torndown   bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(code, hostID string, config domain.SessionConfig) *Session {
	return newSession(code, hostID, config, time.Now, discardBroadcaster{})
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(code, hostID string, config domain.SessionConfig, now func() time.Time, out Broadcaster) *Session {
	return newSession(code, hostID, config, now, out)
}

func newSession(code, hostID string, config domain.SessionConfig, now func() time.Time, out Broadcaster) *Session {
	if out == nil {
		out = discardBroadcaster{}
	}
	return &Session{
		code:      code,
		hostID:    hostID,
		config:    config,
		createdAt: now(),
		now:       now,
		out:       out,
		phase:     phasePending,
		cursor:    -1,
		responses: make(map[string]domain.Response),
		players:   make(map[string]*domain.Player),
	}
}

func (s *Session) Code() string                 { return s.code }
func (s *Session) HostID() string               { return s.hostID }
func (s *Session) Config() domain.SessionConfig { return s.config }
func (s *Session) CreatedAt() time.Time         { return s.createdAt }

// Status reports the externally visible lifecycle status.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.status()
}

// RoundOpen reports whether a question currently accepts answers.
func (s *Session) RoundOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseRoundOpen
}

// QuestionIndex returns the zero-based cursor, -1 before the first launch.
func (s *Session) QuestionIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// FellBack reports whether the attached quiz replaced failed generation.
func (s *Session) FellBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fellBack
}

// Player returns a copy of an enrolled player's record.
func (s *Session) Player(playerID string) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// PlayerCount returns the number of enrolled players.
func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Ranking returns the current ordered leaderboard.
func (s *Session) Ranking() []domain.RankingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rankingLocked()
}

func (s *Session) checkLiveLocked() error {
	if s.torndown {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Session) attach(quiz domain.Quiz, fellBack bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLiveLocked(); err != nil {
		return err
	}
	next, err := s.phase.next(actionAttach)
	if err != nil {
		return err
	}
	s.quiz = &quiz
	s.fellBack = fellBack
	s.cursor = -1
	s.phase = next

	s.out.Send(s.hostID, domain.Event{Type: domain.EventGameReady, Payload: domain.GameReadyPayload{
		GameTitle: quiz.Title,
		LLMError:  fellBack,
	}})
	return nil
}

func (s *Session) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLiveLocked(); err != nil {
		return err
	}
	if s.quiz == nil {
		return domain.ErrNoGame
	}
	next, err := s.phase.next(actionStart)
	if err != nil {
		return err
	}
	s.phase = next

	s.out.Broadcast(s.code, domain.Event{Type: domain.EventReady, Payload: domain.ReadyPayload{
		Code:           s.code,
		Title:          s.config.Title,
		Context:        s.config.Context,
		Focus:          s.config.Focus,
		Language:       s.config.Language,
		TotalQuestions: len(s.quiz.Questions),
		TimerSeconds:   s.config.TimerSeconds,
		GameTitle:      s.quiz.Title,
	}})
	return nil
}

func (s *Session) launch() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLiveLocked(); err != nil {
		return 0, err
	}
	if s.quiz == nil {
		return 0, domain.ErrNoGame
	}
	if s.phase == phaseRoundOpen {
		return 0, domain.ErrQuestionInProgress
	}
	if s.cursor+1 >= len(s.quiz.Questions) {
		return 0, domain.ErrNoMoreQuestions
	}
	next, err := s.phase.next(actionLaunch)
	if err != nil {
		return 0, err
	}

	s.cursor++
	s.responses = make(map[string]domain.Response)
	s.roundStart = s.now()
	s.phase = next

	question := s.quiz.Questions[s.cursor]
	s.out.Broadcast(s.code, domain.Event{Type: domain.EventQuestion, Payload: domain.QuestionPayload{
		Question:     questionView(question),
		Index:        s.cursor + 1,
		Total:        len(s.quiz.Questions),
		TimerSeconds: s.config.TimerSeconds,
		Language:     s.config.Language,
	}})
	return s.cursor, nil
}

// submit records a player's single answer for the open round. Nothing is
// broadcast until the round closes.
func (s *Session) submit(playerID, questionID string, choice int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown || s.quiz == nil || s.phase != phaseRoundOpen {
		return false, 0, domain.ErrNotAvailable
	}
	question := s.quiz.Questions[s.cursor]
	if question.ID != questionID {
		return false, 0, domain.ErrNotAllowed
	}
	if _, answered := s.responses[playerID]; answered {
		return false, 0, domain.ErrAlreadyAnswered
	}
	player, ok := s.players[playerID]
	if !ok {
		return false, 0, domain.ErrNoPlayer
	}

	elapsed := s.now().Sub(s.roundStart)
	if elapsed < 0 {
		elapsed = 0
	}
	correct := choice == question.CorrectIndex
	points := Score(elapsed, s.config.TimeLimit(), correct)
	recordOutcome(player, question.ID, elapsed, correct, points)
	s.responses[playerID] = domain.Response{
		PlayerID: playerID,
		Choice:   choice,
		Correct:  correct,
		Points:   points,
		Elapsed:  elapsed,
	}
	return correct, points, nil
}

// close finalizes the open round. Closing the last question also ends the
// game and returns the final results.
func (s *Session) close() (*domain.FinalResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLiveLocked(); err != nil {
		return nil, err
	}
	if s.phase != phaseRoundOpen {
		return nil, domain.ErrNoActiveQuestion
	}
	next, err := s.phase.next(actionClose)
	if err != nil {
		return nil, err
	}
	s.finalizeRoundLocked()
	s.phase = next

	if s.cursor+1 == len(s.quiz.Questions) {
		results := s.finishLocked()
		return &results, nil
	}
	return nil, nil
}

// end computes final ranking and awards and broadcasts them. It may run again
// after the game finished; scores are never changed.
func (s *Session) end() (domain.FinalResults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLiveLocked(); err != nil {
		return domain.FinalResults{}, err
	}
	if s.phase == phaseRoundOpen {
		s.finalizeRoundLocked()
	}
	return s.finishLocked(), nil
}

func (s *Session) finishLocked() domain.FinalResults {
	s.phase, _ = s.phase.next(actionEnd)

	total := 0
	if s.quiz != nil {
		total = len(s.quiz.Questions)
	}
	ranking := s.rankingLocked()
	awards := ComputeAwards(ranking, total)
	s.out.Broadcast(s.code, domain.Event{Type: domain.EventFinal, Payload: domain.FinalPayload{
		Ranking: ranking,
		Awards:  awards,
	}})
	return domain.FinalResults{
		Code:       s.code,
		Title:      s.config.Title,
		Ranking:    ranking,
		Awards:     awards,
		FinishedAt: s.now(),
	}
}

func (s *Session) finalizeRoundLocked() {
	question := s.quiz.Questions[s.cursor]
	ranking := s.rankingLocked()

	stats := domain.RoundStats{TotalPlayers: len(s.players)}
	for playerID := range s.players {
		if resp, ok := s.responses[playerID]; ok {
			stats.Answered++
			if resp.Correct {
				stats.Correct++
			}
		}
	}
	stats.Incorrect = max(stats.Answered-stats.Correct, 0)

	top := ranking
	if len(top) > rankingTopSize {
		top = top[:rankingTopSize]
	}
	s.out.Send(s.hostID, domain.Event{Type: domain.EventResults, Payload: domain.ResultsPayload{
		QuestionID:   question.ID,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
		Stats:        stats,
		RankingTop:   top,
	}})

	for playerID, player := range s.players {
		feedback := domain.FeedbackPayload{
			QuestionID:      question.ID,
			Explanation:     question.Explanation,
			RankingPosition: Position(ranking, playerID),
			TotalPlayers:    len(s.players),
			Score:           player.Score,
		}
		if resp, ok := s.responses[playerID]; ok {
			choice := resp.Choice
			timeMs := resp.Elapsed.Milliseconds()
			feedback.Correct = resp.Correct
			feedback.Choice = &choice
			feedback.Points = resp.Points
			feedback.TimeMs = &timeMs
		}
		s.out.Send(playerID, domain.Event{Type: domain.EventFeedback, Payload: feedback})
	}

	s.out.Broadcast(s.code, domain.Event{Type: domain.EventRanking, Payload: domain.RankingPayload{Ranking: ranking}})
	s.responses = make(map[string]domain.Response)
}

// join enrolls playerID, replacing any prior record for the same identity.
func (s *Session) join(playerID, nickname string, maxPlayers int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torndown {
		return domain.ErrNoSession
	}
	delete(s.players, playerID)
	if maxPlayers > 0 && len(s.players) >= maxPlayers {
		return domain.ErrRoomFull
	}
	s.joinSeq++
	s.players[playerID] = &domain.Player{
		ID:        playerID,
		Nickname:  nickname,
		JoinedSeq: s.joinSeq,
	}
	s.publishPlayersLocked()
	s.out.Send(s.hostID, domain.Event{Type: domain.EventStatus, Payload: domain.StatusPayload{
		Message: fmt.Sprintf("%s se ha unido / %s joined", nickname, nickname),
	}})
	return nil
}

// leave removes playerID and reports whether it was enrolled.
func (s *Session) leave(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[playerID]; !ok {
		return false
	}
	delete(s.players, playerID)
	if !s.torndown {
		s.publishPlayersLocked()
	}
	return true
}

// teardown marks the session as destroyed; later operations fail.
func (s *Session) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.torndown = true
	s.players = make(map[string]*domain.Player)
	s.responses = make(map[string]domain.Response)
}

func (s *Session) publishPlayersLocked() {
	players := s.orderedPlayersLocked()
	summaries := make([]domain.PlayerSummary, 0, len(players))
	for _, p := range players {
		summaries = append(summaries, domain.PlayerSummary{Nickname: p.Nickname, Score: p.Score})
	}
	s.out.Send(s.hostID, domain.Event{Type: domain.EventPlayers, Payload: domain.PlayersPayload{
		Code:    s.code,
		Players: summaries,
	}})
}

func (s *Session) orderedPlayersLocked() []*domain.Player {
	players := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinedSeq < players[j].JoinedSeq })
	return players
}

func (s *Session) rankingLocked() []domain.RankingEntry {
	return BuildRanking(s.orderedPlayersLocked())
}

func questionView(q domain.Question) domain.QuestionView {
	return domain.QuestionView{
		ID:              q.ID,
		Standard:        q.Standard,
		Difficulty:      q.Difficulty,
		Context:         q.Context,
		Prompt:          q.Prompt,
		Options:         q.Options,
		ApprovedOptions: q.Options.Count(),
	}
}
