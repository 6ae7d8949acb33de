package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// MemoryStore is an in-process MessageStore. It backs development runs
// without Redis and the test suite. Histories do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.Message
}

// NewMemoryStore creates an empty in-memory message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]models.Message)}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// AppendMessage stores a message in the session's history.
func (s *MemoryStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], *msg)
	return nil
}

// SessionMessages retrieves messages from a session, newest first.
func (s *MemoryStore) SessionMessages(ctx context.Context, sessionID string, limit int, before int64) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	out := make([]models.Message, 0, limit)
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if before > 0 && msgs[i].Timestamp >= before {
			continue
		}
		out = append(out, msgs[i])
	}
	return out, nil
}

// RecentMessages returns the newest messages across all sessions.
func (s *MemoryStore) RecentMessages(ctx context.Context, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := []models.Message{}
	for _, msgs := range s.sessions {
		all = append(all, msgs...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp > all[j].Timestamp
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ClearSession drops a session's history.
func (s *MemoryStore) ClearSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ActiveSessions lists sessions that currently hold history.
func (s *MemoryStore) ActiveSessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// CountMessages sums message counts across all sessions.
func (s *MemoryStore) CountMessages(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, msgs := range s.sessions {
		total += int64(len(msgs))
	}
	return total, nil
}

// SearchMessages finds messages whose body contains all tokens, newest
// first. Linear scan; fine for the in-memory backend.
func (s *MemoryStore) SearchMessages(ctx context.Context, tokens []string, limit int, after int64, sessionFilter string) ([]models.Message, error) {
	if len(tokens) == 0 {
		return []models.Message{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Message{}
	for id, msgs := range s.sessions {
		if sessionFilter != "" && id != sessionFilter {
			continue
		}
		for _, m := range msgs {
			if after > 0 && m.Timestamp <= after {
				continue
			}
			body := strings.ToLower(m.Body)
			ok := true
			for _, t := range tokens {
				if !strings.Contains(body, strings.ToLower(t)) {
					ok = false
					break
				}
			}
			if ok {
				matched = append(matched, m)
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
