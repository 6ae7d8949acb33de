package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/nickfox/LLMCreativeStudio/internal/chat"
	"github.com/nickfox/LLMCreativeStudio/internal/models"
	"github.com/nickfox/LLMCreativeStudio/internal/store"
)

// rehydrateLimit bounds how much history is pulled back from the store when
// a session is first touched after a restart.
const rehydrateLimit = 200

// Manager owns the live sessions. Each session serializes its own appends;
// the manager's lock only guards the id-to-session map, so sessions stay
// independent of each other.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	msgs     store.MessageStore
	logger   zerolog.Logger
}

// NewManager creates a session manager backed by the given message store.
func NewManager(msgs store.MessageStore, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*chat.Session),
		msgs:     msgs,
		logger:   logger,
	}
}

// Get returns the session for an id, creating it if needed. An empty id
// mints a new session. On first touch the in-memory log is rehydrated from
// the message store so derived state survives a restart.
func (m *Manager) Get(ctx context.Context, id string) *chat.Session {
	if id != "" {
		m.mu.RLock()
		s, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return s
		}
	}

	s := chat.NewSession(id)

	if id != "" && m.msgs != nil {
		// Store returns newest first; the log wants oldest first.
		recent, err := m.msgs.SessionMessages(ctx, id, rehydrateLimit, 0)
		if err != nil {
			m.logger.Warn().Err(err).Str("session", id).Msg("history rehydration failed")
		} else {
			for i := len(recent) - 1; i >= 0; i-- {
				s.Append(recent[i])
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[s.ID()]; ok {
		return existing
	}
	m.sessions[s.ID()] = s
	return s
}

// Append stamps and appends a message to a session's log and persists it.
func (m *Manager) Append(ctx context.Context, s *chat.Session, msg models.Message) (models.Message, error) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	msg.SessionID = s.ID()

	s.Append(msg)

	if m.msgs != nil {
		if err := m.msgs.AppendMessage(ctx, &msg); err != nil {
			return msg, err
		}
	}
	return msg, nil
}

// Clear resets a session's history, drops its persisted log, and returns
// the freshly minted session id the caller should use from now on.
func (m *Manager) Clear(ctx context.Context, s *chat.Session) (string, error) {
	oldID := s.ID()
	newID := s.Clear()

	m.mu.Lock()
	delete(m.sessions, oldID)
	m.sessions[newID] = s
	m.mu.Unlock()

	if m.msgs != nil {
		if err := m.msgs.ClearSession(ctx, oldID); err != nil {
			return newID, err
		}
	}
	return newID, nil
}

// ActiveIDs lists live session ids, merging in-memory sessions with any the
// store still holds history for.
func (m *Manager) ActiveIDs(ctx context.Context) []string {
	seen := make(map[string]bool)
	ids := []string{}

	if m.msgs != nil {
		if stored, err := m.msgs.ActiveSessions(ctx); err == nil {
			for _, id := range stored {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for id := range m.sessions {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
