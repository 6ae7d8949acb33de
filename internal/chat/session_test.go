package chat

import (
	"sync"
	"testing"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

func TestNewSessionGeneratesID(t *testing.T) {
	s := NewSession("")
	if s.ID() == "" {
		t.Fatal("empty session id")
	}

	other := NewSession("")
	if s.ID() == other.ID() {
		t.Fatal("two sessions share an id")
	}
}

func TestSessionAppendAndSnapshot(t *testing.T) {
	s := NewSession("test-session")
	s.Append(models.Message{ID: "a", Body: "first"})
	s.Append(models.Message{ID: "b", Body: "second"})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2", len(snap))
	}
	if snap[0].ID != "a" || snap[1].ID != "b" {
		t.Errorf("order = %q, %q", snap[0].ID, snap[1].ID)
	}

	// The snapshot is a copy; mutating it must not touch the log.
	snap[0].Body = "mutated"
	if s.Snapshot()[0].Body != "first" {
		t.Fatal("snapshot aliases the log")
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession("old-id")
	s.Append(models.Message{ID: "a"})

	newID := s.Clear()
	if newID == "old-id" || newID == "" {
		t.Fatalf("new id = %q", newID)
	}
	if s.ID() != newID {
		t.Errorf("ID() = %q, want %q", s.ID(), newID)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d after clear", s.Len())
	}
}

func TestSessionConcurrentAppends(t *testing.T) {
	s := NewSession("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(models.Message{Body: "x"})
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Fatalf("len = %d, want 50", s.Len())
	}
}
