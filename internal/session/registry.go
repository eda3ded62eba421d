// Package session hosts list-screen controllers for remote UIs. Each session
// owns one browse.Controller and is driven over a WebSocket.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rickdex/internal/browse"
)

// Factory builds the controller for a new session.
type Factory func() *browse.Controller

type Session struct {
	ID         string
	Controller *browse.Controller
	CreatedAt  time.Time

	mu       sync.Mutex
	lastSeen time.Time
	conns    int
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen), s.conns == 0
}

type Stats struct {
	Sessions    int `json:"sessions"`
	Connections int `json:"ws_clients"`
}

type Registry struct {
	newController Factory
	ttl           time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	return &Registry{
		newController: factory,
		ttl:           ttl,
		sessions:      make(map[string]*Session),
	}
}

// Create starts a session and kicks off the unfiltered first page, as the
// list screen does when it mounts.
func (r *Registry) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Controller: r.newController(),
		CreatedAt:  now,
		lastSeen:   now,
	}
	s.Controller.FetchPage("", 1)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	log.Printf("[session] created %s", s.ID)
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes the session's controller. It reports whether id existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Controller.Close()
		log.Printf("[session] removed %s", id)
	}
	return ok
}

// Sweep removes sessions with no live connection that have been idle for
// longer than the TTL. It returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	var stale []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		idle, detached := s.idleSince(now)
		if detached && idle > r.ttl {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Controller.Close()
		log.Printf("[session] expired %s", s.ID)
	}
	return len(stale)
}

func (r *Registry) attach(s *Session) {
	s.mu.Lock()
	s.conns++
	s.mu.Unlock()
}

func (r *Registry) detach(s *Session) {
	s.mu.Lock()
	s.conns--
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Stats{Sessions: len(r.sessions)}
	for _, s := range r.sessions {
		s.mu.Lock()
		st.Connections += s.conns
		s.mu.Unlock()
	}
	return st
}

// Close removes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Controller.Close()
	}
}
