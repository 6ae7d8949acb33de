package session

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
	"github.com/nickfox/LLMCreativeStudio/internal/store"
)

func newTestManager() *Manager {
	return NewManager(store.NewMemoryStore(), zerolog.Nop())
}

func TestManagerGetCreates(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	s := m.Get(ctx, "")
	if s.ID() == "" {
		t.Fatal("empty session id")
	}

	same := m.Get(ctx, s.ID())
	if same != s {
		t.Fatal("second Get returned a different session")
	}
}

func TestManagerAppendStampsAndPersists(t *testing.T) {
	msgs := store.NewMemoryStore()
	m := NewManager(msgs, zerolog.Nop())
	ctx := context.Background()

	s := m.Get(ctx, "s1")
	stored, err := m.Append(ctx, s, models.Message{Sender: models.IdentityUser, Body: "hello"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if stored.ID == "" || stored.Timestamp == 0 {
		t.Fatalf("message not stamped: %+v", stored)
	}
	if stored.SessionID != "s1" {
		t.Errorf("session id = %q", stored.SessionID)
	}

	if s.Len() != 1 {
		t.Errorf("log len = %d", s.Len())
	}
	persisted, _ := msgs.SessionMessages(ctx, "s1", 10, 0)
	if len(persisted) != 1 || persisted[0].Body != "hello" {
		t.Fatalf("persisted = %+v", persisted)
	}
}

func TestManagerRehydratesFromStore(t *testing.T) {
	msgs := store.NewMemoryStore()
	ctx := context.Background()

	msgs.AppendMessage(ctx, &models.Message{SessionID: "s1", Body: "older", Timestamp: 100})
	msgs.AppendMessage(ctx, &models.Message{SessionID: "s1", Body: "newer", Timestamp: 200})

	m := NewManager(msgs, zerolog.Nop())
	s := m.Get(ctx, "s1")

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2", len(snap))
	}
	// Rehydration restores chronological order.
	if snap[0].Body != "older" || snap[1].Body != "newer" {
		t.Errorf("order = %q, %q", snap[0].Body, snap[1].Body)
	}
}

func TestManagerClear(t *testing.T) {
	msgs := store.NewMemoryStore()
	m := NewManager(msgs, zerolog.Nop())
	ctx := context.Background()

	s := m.Get(ctx, "s1")
	m.Append(ctx, s, models.Message{Body: "doomed"})

	newID, err := m.Clear(ctx, s)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if newID == "s1" || newID == "" {
		t.Fatalf("new id = %q", newID)
	}

	if got := m.Get(ctx, newID); got != s {
		t.Fatal("session not reachable under its new id")
	}
	persisted, _ := msgs.SessionMessages(ctx, "s1", 10, 0)
	if len(persisted) != 0 {
		t.Fatal("old history survived clear")
	}
}

func TestManagerActiveIDs(t *testing.T) {
	msgs := store.NewMemoryStore()
	ctx := context.Background()

	// One session only in the store, one only in memory.
	msgs.AppendMessage(ctx, &models.Message{SessionID: "stored", Body: "x"})

	m := NewManager(msgs, zerolog.Nop())
	live := m.Get(ctx, "")

	ids := m.ActiveIDs(ctx)
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	if !seen["stored"] || !seen[live.ID()] {
		t.Fatalf("ids = %v", ids)
	}
}
