package models

import (
	"time"

	"github.com/google/uuid"
)

// Project scopes characters and sessions. Persona addressing is only active
// while a project is selected.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"` // e.g. "music", "writing", "research"
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
