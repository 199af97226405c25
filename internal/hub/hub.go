// Package hub holds the registry of connected sessions and the broadcast
// primitive that fans events out to them.
package hub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MaicolCorrea/Chat-Realtime/internal/metrics"
)

// Event is the wire envelope for every server-to-client message.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

const sendBuffer = 256

// Session is one connected client. Name is mutable (username changes) and is
// only written by the session's own reader goroutine; ID is the stable key
// used by the registry and logs.
type Session struct {
	ID      string
	Name    string
	Offset  uint
	Resumed bool
	Send    chan Event
}

func NewSession(name string, offset uint, resumed bool) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Name:    name,
		Offset:  offset,
		Resumed: resumed,
		Send:    make(chan Event, sendBuffer),
	}
}

// Hub manages the live session set. Sends are non-blocking: a client whose
// buffer is full misses the event rather than stalling the fan-out.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func New() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

// Unregister removes the session and closes its channel. Closing under the
// write lock keeps broadcasts (which send under the read lock) from racing a
// send against the close.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; ok {
		delete(h.sessions, s.ID)
		close(s.Send)
	}
}

// Broadcast queues the event for every connected session.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		h.send(s, ev)
	}
}

// BroadcastExcept queues the event for every session but the one named.
func (h *Hub) BroadcastExcept(sessionID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.sessions {
		if id == sessionID {
			continue
		}
		h.send(s, ev)
	}
}

func (h *Hub) send(s *Session, ev Event) {
	select {
	case s.Send <- ev:
	default:
		metrics.SendsDropped.Inc()
	}
}

// Len reports the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
