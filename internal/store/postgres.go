package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS characters (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		llm TEXT NOT NULL,
		background TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_characters_project ON characters(project_id);
	CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateProject creates a new project record.
func (s *PostgresStore) CreateProject(ctx context.Context, name, projectType, description string) (*models.Project, error) {
	p := &models.Project{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, type, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, type, description, created_at, updated_at
	`, uuid.Must(uuid.NewV7()), name, projectType, description).Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject retrieves a project by ID, or nil when it does not exist.
func (s *PostgresStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, type, description, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(
		&p.ID,
		&p.Name,
		&p.Type,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListProjects returns projects ordered by most recently updated.
func (s *PostgresStore) ListProjects(ctx context.Context, limit, offset int) ([]models.Project, int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, type, description, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// DeleteProject removes a project; characters cascade.
func (s *PostgresStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// CountProjects returns the total number of projects.
func (s *PostgresStore) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// AssignCharacter binds a persona to a model within a project, replacing
// any binding that held the same model or the same name.
func (s *PostgresStore) AssignCharacter(ctx context.Context, projectID uuid.UUID, name string, llm models.Identity, background string) (*models.Character, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM characters
		WHERE project_id = $1 AND (llm = $2 OR lower(name) = lower($3))
	`, projectID, string(llm), name)
	if err != nil {
		return nil, err
	}

	c := &models.Character{}
	err = tx.QueryRow(ctx, `
		INSERT INTO characters (id, project_id, name, llm, background)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, project_id, name, llm, background, created_at
	`, uuid.Must(uuid.NewV7()), projectID, name, string(llm), background).Scan(
		&c.ID,
		&c.ProjectID,
		&c.Name,
		&c.LLM,
		&c.Background,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE projects SET updated_at = now() WHERE id = $1`, projectID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCharacters returns a project's characters in assignment order.
func (s *PostgresStore) ListCharacters(ctx context.Context, projectID uuid.UUID) ([]models.Character, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, name, llm, background, created_at
		FROM characters
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		var c models.Character
		var llm string
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &llm, &c.Background, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.LLM = models.Identity(llm)
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return characters, nil
}

// DeleteCharacter removes one character by name (case-insensitive).
func (s *PostgresStore) DeleteCharacter(ctx context.Context, projectID uuid.UUID, name string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM characters
		WHERE project_id = $1 AND lower(name) = lower($2)
	`, projectID, name)
	return err
}

// ClearCharacters removes all characters from a project.
func (s *PostgresStore) ClearCharacters(ctx context.Context, projectID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM characters WHERE project_id = $1`, projectID)
	return err
}

// CountCharacters returns the total number of characters across projects.
func (s *PostgresStore) CountCharacters(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count)
	return count, err
}
