package service

import (
	"sync"

	"github.com/Strob0t/Hearth/internal/domain/session"
)

// sessionEntry pairs a session with the mutex that serializes its writers.
type sessionEntry struct {
	mu   sync.Mutex
	sess *session.Session
}

// SessionService owns all live sessions. Each session has exactly one
// writer at a time: Acquire blocks while another request for the same
// session id is in flight, while different sessions proceed in parallel.
// Eviction is the job of an external session manager, not this service.
type SessionService struct {
	mu           sync.Mutex
	sessions     map[string]*sessionEntry
	historyLimit int
}

// NewSessionService creates the session store.
func NewSessionService(historyLimit int) *SessionService {
	return &SessionService{
		sessions:     make(map[string]*sessionEntry),
		historyLimit: historyLimit,
	}
}

// Acquire returns the session for id, creating it on first use, with its
// writer lock held. The returned release func must be called when the
// request is done with the session.
func (s *SessionService) Acquire(id string) (*session.Session, func()) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		e = &sessionEntry{sess: session.New(id, s.historyLimit)}
		s.sessions[id] = e
	}
	s.mu.Unlock()

	// Per-session lock taken outside the map lock so a slow request only
	// blocks its own session.
	e.mu.Lock()
	return e.sess, e.mu.Unlock
}

// History returns a copy of the session's message history, or false when
// the session does not exist.
func (s *SessionService) History(id string) ([]session.Message, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]session.Message, len(e.sess.History))
	copy(out, e.sess.History)
	return out, true
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
