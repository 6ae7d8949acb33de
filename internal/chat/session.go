package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// Session holds one conversation's append-only message log behind a single
// mutation point. Appends are serialized; reads work on copied snapshots so
// status derivation and context windowing never race an append. Locking is
// per session, never shared across sessions.
type Session struct {
	mu   sync.RWMutex
	id   string
	msgs []models.Message
}

// NewSession creates an empty session with the given id. An empty id gets a
// fresh time-ordered UUID.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	return &Session{id: id}
}

// ID returns the current session identifier.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Append adds a message to the end of the log.
func (s *Session) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

// Snapshot returns a copy of the full log, oldest first.
func (s *Session) Snapshot() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the number of messages in the log.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}

// Clear empties the log and mints a new session identifier, which it
// returns. The old identifier is retired with its history.
func (s *Session) Clear() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = nil
	s.id = uuid.Must(uuid.NewV7()).String()
	return s.id
}
