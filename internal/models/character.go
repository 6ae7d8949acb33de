package models

import (
	"time"

	"github.com/google/uuid"
)

// Character is a persona bound to one LLM voice within a project. A model
// carries at most one active character at a time.
type Character struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	LLM        Identity  `json:"llm"`
	Background string    `json:"background,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
