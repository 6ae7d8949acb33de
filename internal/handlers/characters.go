package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/metrics"
	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// AssignCharacterRequest binds a persona name to one of the three voices.
type AssignCharacterRequest struct {
	Name       string          `json:"name"`
	LLM        models.Identity `json:"llm"`
	Background string          `json:"background,omitempty"`
}

// CharacterResponse represents a character in API responses.
type CharacterResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LLM        string `json:"llm"`
	Background string `json:"background,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// CharacterListResponse represents the characters list response.
type CharacterListResponse struct {
	Characters []CharacterResponse `json:"characters"`
	Total      int                 `json:"total"`
}

// AssignCharacter creates or replaces a persona binding within a project.
func (h *Handler) AssignCharacter(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	var req AssignCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = sanitizeName(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.LLM.IsModel() {
		h.Error(w, http.StatusBadRequest, "llm must be one of claude, chatgpt, gemini")
		return
	}
	if len(req.Background) > 4000 {
		h.Error(w, http.StatusBadRequest, "background too long (max 4000 chars)")
		return
	}

	project, err := h.data.GetProject(r.Context(), projectID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if project == nil {
		h.Error(w, http.StatusNotFound, "project not found")
		return
	}

	character, err := h.data.AssignCharacter(r.Context(), projectID, req.Name, req.LLM, req.Background)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to assign character")
		return
	}
	metrics.CharactersAssigned.Inc()

	h.JSON(w, http.StatusCreated, characterResponse(*character))
}

// ListCharacters returns a project's characters in assignment order.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	characters, err := h.data.ListCharacters(r.Context(), projectID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	resp := CharacterListResponse{
		Characters: make([]CharacterResponse, 0, len(characters)),
		Total:      len(characters),
	}
	for _, c := range characters {
		resp.Characters = append(resp.Characters, characterResponse(c))
	}

	h.JSON(w, http.StatusOK, resp)
}

// DeleteCharacter removes one persona binding by name.
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	name := sanitizeName(chi.URLParam(r, "name"))
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.data.DeleteCharacter(r.Context(), projectID, name); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete character")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCharacters removes all persona bindings from a project.
func (h *Handler) ClearCharacters(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	if err := h.data.ClearCharacters(r.Context(), projectID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to clear characters")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// characterResponse converts a character model to its wire form.
func characterResponse(c models.Character) CharacterResponse {
	return CharacterResponse{
		ID:         c.ID.String(),
		Name:       c.Name,
		LLM:        string(c.LLM),
		Background: c.Background,
		CreatedAt:  c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
