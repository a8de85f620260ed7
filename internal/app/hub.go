package app

import (
	"log"
	"sync"

	"live-quiz-engine/internal/domain"
)

const subscriberBuffer = 64

// Broadcaster delivers events to a single connection or a whole room.
type Broadcaster interface {
	Send(connID string, ev domain.Event)
	Broadcast(room string, ev domain.Event)
}

// Hub groups connections into rooms keyed by session code and fans out events.
// Delivery never blocks the caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*subscriber
	rooms map[string]map[string]struct{}
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan domain.Event
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*subscriber),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Connect registers a connection and returns its event stream.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Connect(connID string) (<-chan domain.Event, func()) {
	sub := &subscriber{ch: make(chan domain.Event, subscriberBuffer)}

	h.mu.Lock()
	if prev, ok := h.conns[connID]; ok {
		prev.close()
	}
	h.conns[connID] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if h.conns[connID] == sub {
			delete(h.conns, connID)
			for room, members := range h.rooms {
				delete(members, connID)
				if len(members) == 0 {
					delete(h.rooms, room)
				}
			}
		}
		h.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Join adds a connection to a room.
func (h *Hub) Join(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[connID] = struct{}{}
}

// Leave removes a connection from a room.
func (h *Hub) Leave(room, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Evict removes every member from a room.
func (h *Hub) Evict(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, room)
}

// Members returns the connections currently in a room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]string, 0, len(h.rooms[room]))
	for connID := range h.rooms[room] {
		members = append(members, connID)
	}
	return members
}

// Send delivers ev to one connection, if connected.
func (h *Hub) Send(connID string, ev domain.Event) {
	h.mu.RLock()
	sub, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		sub.deliver(connID, ev)
	}
}

// Broadcast delivers ev to every member of room.
func (h *Hub) Broadcast(room string, ev domain.Event) {
	h.mu.RLock()
	targets := make(map[string]*subscriber, len(h.rooms[room]))
	for connID := range h.rooms[room] {
		if sub, ok := h.conns[connID]; ok {
			targets[connID] = sub
		}
	}
	h.mu.RUnlock()

	for connID, sub := range targets {
		sub.deliver(connID, ev)
	}
}

func (s *subscriber) deliver(connID string, ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- ev:
		return
	default:
	}
	// Buffer full: drop the oldest event so a slow client never blocks the session.
	select {
	case dropped := <-s.ch:
		log.Printf("dropping %s for slow connection %s", dropped.Type, connID)
	default:
	}
	select {
	case s.ch <- ev:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

type discardBroadcaster struct{}

func (discardBroadcaster) Send(string, domain.Event)      {}
func (discardBroadcaster) Broadcast(string, domain.Event) {}
