package app

import (
	"context"
	"errors"
	"log"
	"time"

	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
)

const (
	defaultTitle         = "Sesión ISO"
	defaultFocus         = "ISO 9241"
	defaultQuestionCount = 6
	defaultTimerSeconds  = 30
	defaultMaxPlayers    = 200
	defaultGenerateWait  = 15 * time.Second
	publishTimeout       = 5 * time.Second
)

// SessionRepository abstracts how live sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	// Insert stores session unless its code is already in use.
	Insert(session *Session) bool
	Get(code string) (*Session, bool)
	Delete(code string)
	All() []*Session
}

// CatalogRepository loads built-in catalogs (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Quiz, error)
	CatalogIDs(ctx context.Context) ([]string, error)
}

// Generator produces a quiz from a session configuration.
type Generator interface {
	Generate(ctx context.Context, config domain.SessionConfig) (domain.Quiz, error)
}

// ResultsPublisher ships final results to other systems.
type ResultsPublisher interface {
	PublishResults(ctx context.Context, results domain.FinalResults) error
}

// Options tunes an Engine. Zero values select defaults.
type Options struct {
	HostSecret           string
	MaxPlayers           int
	DefaultTimerSeconds  int
	DefaultQuestionCount int
	GenerateTimeout      time.Duration
	Generator            Generator
	Publisher            ResultsPublisher
	Now                  func() time.Time
	NewCode              func() string
}

// Engine contains the live session use cases: the session registry, host
// authorization, the per-session state machine, and broadcast routing.
type Engine struct {
	sessions  SessionRepository
	catalogs  CatalogRepository
	hub       *Hub
	auth      *Authorizer
	generator Generator
	publisher ResultsPublisher
	opts      Options
}

func NewEngine(store SessionRepository, catalogs CatalogRepository, hub *Hub, opts Options) *Engine {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = defaultMaxPlayers
	}
	if opts.DefaultTimerSeconds <= 0 {
		opts.DefaultTimerSeconds = defaultTimerSeconds
	}
	if opts.DefaultQuestionCount <= 0 {
		opts.DefaultQuestionCount = defaultQuestionCount
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateWait
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewCode == nil {
		opts.NewCode = NewCode
	}
	return &Engine{
		sessions:  store,
		catalogs:  catalogs,
		hub:       hub,
		auth:      NewAuthorizer(opts.HostSecret),
		generator: opts.Generator,
		publisher: opts.Publisher,
		opts:      opts,
	}
}

// Connect registers a connection and returns its event stream.
// The caller must invoke the returned cancel function after Disconnect.
func (e *Engine) Connect(connID string) (<-chan domain.Event, func()) {
	return e.hub.Connect(connID)
}

// Disconnect revokes host rights, removes connID from every session it plays
// in, and tears down every session it hosts.
func (e *Engine) Disconnect(connID string) {
	e.auth.Revoke(connID)
	for _, session := range e.sessions.All() {
		if session.HostID() == connID {
			e.Destroy(session.Code())
			continue
		}
		if session.leave(connID) {
			e.hub.Leave(session.Code(), connID)
		}
	}
}

// Lookup returns the live session for code.
func (e *Engine) Lookup(code string) (*Session, bool) {
	return e.sessions.Get(code)
}

// Destroy notifies and evicts every member of the session, then removes it.
func (e *Engine) Destroy(code string) {
	session, ok := e.sessions.Get(code)
	if !ok {
		return
	}
	session.teardown()
	e.hub.Broadcast(code, domain.Event{Type: domain.EventEnded, Payload: domain.EndedPayload{Code: code}})
	e.hub.Evict(code)
	e.sessions.Delete(code)
	log.Printf("session %s destroyed", code)
}

// Authorize grants host rights to connID when secret matches.
func (e *Engine) Authorize(connID, secret string) error {
	return e.auth.Authorize(connID, secret)
}

// CreateSession registers a new pending session hosted by connID and returns its code.
func (e *Engine) CreateSession(connID string, config domain.SessionConfig) (string, error) {
	if !e.auth.IsAuthorized(connID) {
		return "", domain.ErrUnauthorized
	}
	config = e.normalizeConfig(config)

	var session *Session
	for {
		session = newSession(e.opts.NewCode(), connID, config, e.opts.Now, e.hub)
		if e.sessions.Insert(session) {
			break
		}
	}
	e.hub.Join(session.Code(), connID)
	log.Printf("session %s created (source=%s, language=%s)", session.Code(), config.Source, config.Language)
	return session.Code(), nil
}

func (e *Engine) normalizeConfig(config domain.SessionConfig) domain.SessionConfig {
	config.Title = textOr(config.Title, defaultTitle)
	config.Context = cleanText(config.Context)
	focus := make([]string, 0, len(config.Focus))
	for _, tag := range config.Focus {
		if tag = cleanText(tag); tag != "" {
			focus = append(focus, tag)
		}
	}
	if len(focus) == 0 {
		focus = []string{defaultFocus}
	}
	config.Focus = focus
	if config.QuestionCount <= 0 {
		config.QuestionCount = e.opts.DefaultQuestionCount
	}
	if config.TimerSeconds <= 0 {
		config.TimerSeconds = e.opts.DefaultTimerSeconds
	}
	config.Language = domain.ParseLanguage(string(config.Language))
	config.Source = domain.ParseSource(string(config.Source))
	config.CatalogID = cleanText(config.CatalogID)
	return config
}

// hostSession resolves code for a host-only operation. Checks run in order:
// authorized connection, existing session, owning host.
func (e *Engine) hostSession(connID, code string) (*Session, error) {
	if !e.auth.IsAuthorized(connID) {
		return nil, domain.ErrUnauthorized
	}
	session, ok := e.sessions.Get(code)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.HostID() != connID {
		return nil, domain.ErrNotHost
	}
	return session, nil
}

// AttachCatalog attaches a built-in catalog, the first one when catalogID is empty.
func (e *Engine) AttachCatalog(ctx context.Context, connID, code, catalogID string) (int, string, error) {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return 0, "", err
	}
	quiz, err := e.loadCatalog(ctx, catalogID)
	if err != nil {
		return 0, "", err
	}
	if err := session.attach(quiz, false); err != nil {
		return 0, "", err
	}
	return len(quiz.Questions), quiz.ID, nil
}

// AttachQuiz attaches an externally generated quiz after validating its shape.
func (e *Engine) AttachQuiz(connID, code string, quiz *domain.Quiz, fellBack bool) (int, error) {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return 0, err
	}
	if quiz == nil {
		return 0, domain.ErrInvalidGame
	}
	if err := catalog.Validate(*quiz); err != nil {
		return 0, err
	}
	if err := session.attach(*quiz, fellBack); err != nil {
		return 0, err
	}
	return len(quiz.Questions), nil
}

// GenerateQuiz asks the generator for a quiz matching the session config.
// Any generator failure or malformed result falls back to the default
// built-in catalog and marks the session as fallen back.
func (e *Engine) GenerateQuiz(ctx context.Context, connID, code string) (int, bool, error) {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return 0, false, err
	}

	quiz, genErr := e.generate(ctx, session.Config())
	if genErr == nil {
		if err := session.attach(quiz, false); err != nil {
			return 0, false, err
		}
		return len(quiz.Questions), false, nil
	}

	log.Printf("session %s: question generation failed, using built-in catalog: %v", code, genErr)
	fallback, err := e.loadCatalog(ctx, "")
	if err != nil {
		return 0, true, err
	}
	if err := session.attach(fallback, true); err != nil {
		return 0, true, err
	}
	return len(fallback.Questions), true, nil
}

func (e *Engine) generate(ctx context.Context, config domain.SessionConfig) (domain.Quiz, error) {
	if e.generator == nil {
		return domain.Quiz{}, errors.New("generator disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, e.opts.GenerateTimeout)
	defer cancel()
	quiz, err := e.generator.Generate(ctx, config)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := catalog.Validate(quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (e *Engine) loadCatalog(ctx context.Context, catalogID string) (domain.Quiz, error) {
	if catalogID == "" {
		ids, err := e.catalogs.CatalogIDs(ctx)
		if err != nil {
			return domain.Quiz{}, domain.WrapError(domain.CodeNoGame, "list catalogs", err)
		}
		if len(ids) == 0 {
			return domain.Quiz{}, domain.ErrNoGame
		}
		catalogID = ids[0]
	}
	quiz, err := e.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		if errors.Is(err, domain.ErrNoGame) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, domain.WrapError(domain.CodeNoGame, "load catalog "+catalogID, err)
	}
	if quiz.ID == "" {
		quiz.ID = catalogID
	}
	return quiz, nil
}

// ListCatalogs describes every built-in catalog in order.
func (e *Engine) ListCatalogs(ctx context.Context) ([]catalog.Summary, error) {
	ids, err := e.catalogs.CatalogIDs(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		quiz, err := e.catalogs.GetCatalog(ctx, id)
		if err != nil {
			return nil, err
		}
		if quiz.ID == "" {
			quiz.ID = id
		}
		summaries = append(summaries, catalog.Summarize(quiz))
	}
	return summaries, nil
}

// StartGame announces the match to the whole room.
func (e *Engine) StartGame(connID, code string) error {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return err
	}
	return session.start()
}

// LaunchQuestion opens the next round and returns its zero-based index.
func (e *Engine) LaunchQuestion(connID, code string) (int, error) {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return 0, err
	}
	return session.launch()
}

// CloseQuestion closes the open round; closing the last one ends the game.
func (e *Engine) CloseQuestion(connID, code string) error {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return err
	}
	results, err := session.close()
	if err != nil {
		return err
	}
	if results != nil {
		e.publish(*results)
	}
	return nil
}

// EndGame computes and broadcasts final ranking and awards.
func (e *Engine) EndGame(connID, code string) error {
	session, err := e.hostSession(connID, code)
	if err != nil {
		return err
	}
	results, err := session.end()
	if err != nil {
		return err
	}
	e.publish(results)
	return nil
}

// JoinSession enrolls connID as a player of code. A connection plays in at
// most one session at a time.
func (e *Engine) JoinSession(connID, code, nickname string) (domain.Language, string, error) {
	for _, other := range e.sessions.All() {
		if other.leave(connID) {
			e.hub.Leave(other.Code(), connID)
		}
	}
	session, ok := e.sessions.Get(code)
	if !ok {
		return "", "", domain.ErrNoSession
	}
	if err := session.join(connID, SanitizeNickname(nickname), e.opts.MaxPlayers); err != nil {
		return "", "", err
	}
	e.hub.Join(code, connID)
	config := session.Config()
	return config.Language, config.Title, nil
}

// SubmitAnswer records connID's answer to the open question of code.
func (e *Engine) SubmitAnswer(connID, code, questionID string, choice int) (bool, int, error) {
	session, ok := e.sessions.Get(code)
	if !ok {
		return false, 0, domain.ErrNotAvailable
	}
	return session.submit(connID, questionID, choice)
}

func (e *Engine) publish(results domain.FinalResults) {
	if e.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := e.publisher.PublishResults(ctx, results); err != nil {
			log.Printf("session %s: publish results: %v", results.Code, err)
		}
	}()
}
