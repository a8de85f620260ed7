package app

import (
	"testing"

	"live-quiz-engine/internal/domain"
)

func TestHubRoutesToRoomsAndConnections(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Connect("a")
	defer cancelA()
	b, cancelB := hub.Connect("b")
	defer cancelB()

	hub.Join("ROOM1", "a")
	hub.Join("ROOM1", "b")
	hub.Broadcast("ROOM1", domain.Event{Type: domain.EventRanking})
	hub.Send("b", domain.Event{Type: domain.EventFeedback})

	if got := drain(a); len(got) != 1 || got[0].Type != domain.EventRanking {
		t.Fatalf("unexpected events for a: %+v", got)
	}
	if got := drain(b); len(got) != 2 || got[1].Type != domain.EventFeedback {
		t.Fatalf("unexpected events for b: %+v", got)
	}

	hub.Leave("ROOM1", "a")
	hub.Broadcast("ROOM1", domain.Event{Type: domain.EventRanking})
	if got := drain(a); len(got) != 0 {
		t.Fatalf("a left the room but got %+v", got)
	}

	hub.Evict("ROOM1")
	if members := hub.Members("ROOM1"); len(members) != 0 {
		t.Fatalf("expected empty room after evict, got %v", members)
	}
}

func TestHubDropsOldestForSlowConnection(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Connect("slow")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Send("slow", domain.Event{Type: domain.EventStatus, Payload: i})
	}
	got := drain(ch)
	if len(got) != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, len(got))
	}
	if first := got[0].Payload.(int); first != 5 {
		t.Fatalf("expected oldest events dropped, first payload %d", first)
	}
	if last := got[len(got)-1].Payload.(int); last != subscriberBuffer+4 {
		t.Fatalf("expected newest event kept, last payload %d", last)
	}
}

func TestHubCancelClosesStreamAndLeavesRooms(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Connect("c")
	hub.Join("ROOM1", "c")
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed stream")
	}
	if members := hub.Members("ROOM1"); len(members) != 0 {
		t.Fatalf("expected connection removed from rooms, got %v", members)
	}
	// sending to a gone connection is a no-op
	hub.Send("c", domain.Event{Type: domain.EventStatus})
}
