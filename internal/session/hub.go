package session

import (
	"sync"
	"time"

	"tinyboard/internal/referee"
	"tinyboard/internal/storage"
)

// Hub owns the live sessions.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store *storage.Store
	ref   *referee.Referee
}

// NewHub creates a hub with a cleanup goroutine that evicts idle sessions.
func NewHub(store *storage.Store, ref *referee.Referee) *Hub {
	h := &Hub{
		sessions: make(map[string]*Session),
		store:    store,
		ref:      ref,
	}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			h.mu.Lock()
			for id, s := range h.sessions {
				if time.Since(s.LastSeen()) > 24*time.Hour {
					delete(h.sessions, id)
				}
			}
			h.mu.Unlock()
		}
	}()
	return h
}

// Get retrieves an existing session or creates a new one. The hints flag
// only applies when the session is created.
func (h *Hub) Get(id string, hints bool) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[id]; ok {
		return s
	}
	s := newSession(id, h.store, h.ref, hints)
	h.sessions[id] = s
	return s
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
