package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// DataStore defines the interface for persistent storage of projects and
// characters. Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Project operations
	CreateProject(ctx context.Context, name, projectType, description string) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]models.Project, int, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	CountProjects(ctx context.Context) (int64, error)

	// Character operations. AssignCharacter replaces any existing binding
	// for the same model or the same name within the project.
	AssignCharacter(ctx context.Context, projectID uuid.UUID, name string, llm models.Identity, background string) (*models.Character, error)
	ListCharacters(ctx context.Context, projectID uuid.UUID) ([]models.Character, error)
	DeleteCharacter(ctx context.Context, projectID uuid.UUID, name string) error
	ClearCharacters(ctx context.Context, projectID uuid.UUID) error
	CountCharacters(ctx context.Context) (int64, error)
}

// MessageStore defines the interface for session message history. The
// RedisStore is the production implementation; MemoryStore backs
// development without Redis and the test suite.
type MessageStore interface {
	Close() error
	Ping(ctx context.Context) error

	// AppendMessage stores a message, stamping a ULID and timestamp when
	// they are unset.
	AppendMessage(ctx context.Context, msg *models.Message) error

	// SessionMessages returns messages for a session, newest first,
	// optionally only those strictly older than the before timestamp.
	SessionMessages(ctx context.Context, sessionID string, limit int, before int64) ([]models.Message, error)

	// RecentMessages returns the newest messages across all sessions,
	// newest first.
	RecentMessages(ctx context.Context, limit int) ([]models.Message, error)

	// ClearSession drops a session's history and removes it from the
	// active set.
	ClearSession(ctx context.Context, sessionID string) error

	ActiveSessions(ctx context.Context) ([]string, error)
	CountMessages(ctx context.Context) (int64, error)

	// SearchMessages finds messages containing all tokens, newest first.
	SearchMessages(ctx context.Context, tokens []string, limit int, after int64, sessionFilter string) ([]models.Message, error)
}
