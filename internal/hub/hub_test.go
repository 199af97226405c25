package hub

import "testing"

func drain(s *Session) []Event {
	var out []Event
	for {
		select {
		case ev := <-s.Send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcast_ReachesAllSessions(t *testing.T) {
	h := New()
	a := NewSession("alice", 0, false)
	b := NewSession("bob", 0, false)
	h.Register(a)
	h.Register(b)

	h.Broadcast(Event{Name: "user list", Data: []string{"alice", "bob"}})

	for _, s := range []*Session{a, b} {
		got := drain(s)
		if len(got) != 1 || got[0].Name != "user list" {
			t.Fatalf("session %s got %v", s.Name, got)
		}
	}
}

func TestBroadcastExcept_SkipsSender(t *testing.T) {
	h := New()
	a := NewSession("alice", 0, false)
	b := NewSession("bob", 0, false)
	h.Register(a)
	h.Register(b)

	h.BroadcastExcept(a.ID, Event{Name: "user typing"})

	if got := drain(a); len(got) != 0 {
		t.Fatalf("sender received its own typing event: %v", got)
	}
	if got := drain(b); len(got) != 1 {
		t.Fatalf("other session missed event: %v", got)
	}
}

func TestUnregister_ClosesChannelOnce(t *testing.T) {
	h := New()
	s := NewSession("alice", 0, false)
	h.Register(s)
	h.Unregister(s)
	h.Unregister(s) // second call must be a no-op

	if _, ok := <-s.Send; ok {
		t.Fatalf("expected closed send channel")
	}
	if h.Len() != 0 {
		t.Fatalf("session still registered")
	}
}

func TestBroadcast_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := New()
	s := NewSession("alice", 0, false)
	h.Register(s)

	for i := 0; i < sendBuffer; i++ {
		h.Broadcast(Event{Name: "chat message"})
	}
	// buffer is full; this must return without blocking
	h.Broadcast(Event{Name: "chat message"})

	if len(s.Send) != sendBuffer {
		t.Fatalf("expected %d buffered events, got %d", sendBuffer, len(s.Send))
	}
}
