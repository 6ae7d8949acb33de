package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// backend; production uses PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/studio.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/studio.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT DEFAULT '',
		description TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		llm TEXT NOT NULL,
		background TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_characters_project ON characters(project_id);
	CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateProject creates a new project record.
func (s *SQLiteStore) CreateProject(ctx context.Context, name, projectType, description string) (*models.Project, error) {
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), name, projectType, description, now, now)
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, id)
}

// GetProject retrieves a project by ID, or nil when it does not exist.
func (s *SQLiteStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, description, created_at, updated_at
		FROM projects WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&p.Name,
		&p.Type,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = uuid.MustParse(idStr)
	return p, nil
}

// ListProjects returns projects ordered by most recently updated.
func (s *SQLiteStore) ListProjects(ctx context.Context, limit, offset int) ([]models.Project, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, description, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		var idStr string
		if err := rows.Scan(&idStr, &p.Name, &p.Type, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		p.ID = uuid.MustParse(idStr)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// DeleteProject removes a project and its characters.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE project_id = ?`, id.String()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id.String()); err != nil {
		return err
	}

	return tx.Commit()
}

// CountProjects returns the total number of projects.
func (s *SQLiteStore) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// AssignCharacter binds a persona to a model within a project, replacing
// any binding that held the same model or the same name.
func (s *SQLiteStore) AssignCharacter(ctx context.Context, projectID uuid.UUID, name string, llm models.Identity, background string) (*models.Character, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM characters
		WHERE project_id = ? AND (llm = ? OR lower(name) = lower(?))
	`, projectID.String(), string(llm), name)
	if err != nil {
		return nil, err
	}

	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO characters (id, project_id, name, llm, background, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), projectID.String(), name, string(llm), background, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, now, projectID.String())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Character{
		ID:         id,
		ProjectID:  projectID,
		Name:       name,
		LLM:        llm,
		Background: background,
		CreatedAt:  now,
	}, nil
}

// ListCharacters returns a project's characters in assignment order.
func (s *SQLiteStore) ListCharacters(ctx context.Context, projectID uuid.UUID) ([]models.Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, llm, background, created_at
		FROM characters
		WHERE project_id = ?
		ORDER BY created_at ASC
	`, projectID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCharacters(rows)
}

// DeleteCharacter removes one character by name (case-insensitive).
func (s *SQLiteStore) DeleteCharacter(ctx context.Context, projectID uuid.UUID, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM characters
		WHERE project_id = ? AND lower(name) = lower(?)
	`, projectID.String(), name)
	return err
}

// ClearCharacters removes all characters from a project.
func (s *SQLiteStore) ClearCharacters(ctx context.Context, projectID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE project_id = ?`, projectID.String())
	return err
}

// CountCharacters returns the total number of characters across projects.
func (s *SQLiteStore) CountCharacters(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count)
	return count, err
}

// scanCharacters reads character rows into models.
func scanCharacters(rows *sql.Rows) ([]models.Character, error) {
	characters := []models.Character{}
	for rows.Next() {
		var c models.Character
		var idStr, projectStr, llm string
		if err := rows.Scan(&idStr, &projectStr, &c.Name, &llm, &c.Background, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = uuid.MustParse(idStr)
		c.ProjectID = uuid.MustParse(projectStr)
		c.LLM = models.Identity(llm)
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return characters, nil
}
