// Package session provides the domain model for conversation sessions.
package session

import (
	"time"

	"github.com/Strob0t/Hearth/internal/domain/routing"
)

// Role identifies the author of a history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation history.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the per-conversation state. Created on first utterance;
// eviction is owned by an external session manager.
type Session struct {
	ID       string       `json:"id"`
	History  []Message    `json:"history"` // most recent last; truncated oldest-first
	LastTier routing.Tier `json:"last_tier,omitempty"`
	Created  time.Time    `json:"created"`
	Updated  time.Time    `json:"updated"`

	maxHistory int
}

// New creates a session that keeps at most maxHistory messages.
func New(id string, maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	now := time.Now()
	return &Session{
		ID:         id,
		Created:    now,
		Updated:    now,
		maxHistory: maxHistory,
	}
}

// Append adds a message, dropping the oldest entries beyond the bound.
func (s *Session) Append(role Role, text string) {
	s.History = append(s.History, Message{Role: role, Text: text, At: time.Now()})
	if n := len(s.History) - s.maxHistory; n > 0 {
		s.History = append(s.History[:0], s.History[n:]...)
	}
	s.Updated = time.Now()
}

// Recent returns up to n most recent messages in chronological order.
func (s *Session) Recent(n int) []Message {
	if n <= 0 || n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}
