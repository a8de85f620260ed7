package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-engine/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions live in a local map; broadcast and state stay in-process.
//   - Each code is reserved with SETNX so two processes sharing a Redis never
//     hand out the same code. The key doubles as a liveness marker.
//   - A Redis outage degrades to local-only code checks.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Insert(session *app.Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := session.Code()
	if _, taken := s.sessions[code]; taken {
		return false
	}
	reserved, err := s.client.SetNX(context.Background(), s.key(code), session.HostID(), s.ttl).Result()
	if err != nil {
		log.Printf("reserve session code %s: %v", code, err)
	} else if !reserved {
		return false
	}
	s.sessions[code] = session
	return true
}

func (s *SessionStore) Get(code string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	return session, ok
}

func (s *SessionStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[code]; !ok {
		return
	}
	delete(s.sessions, code)
	// best-effort release
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

func (s *SessionStore) All() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (s *SessionStore) key(code string) string {
	return "quiz:session:" + code
}
