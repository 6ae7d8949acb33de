package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// Project type validation: a small fixed vocabulary plus empty.
var projectTypeRegex = regexp.MustCompile(`^[a-z]{0,20}$`)

// CreateProjectRequest represents the project creation request.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ProjectDetailResponse is a project plus its characters.
type ProjectDetailResponse struct {
	ProjectResponse
	Characters []CharacterResponse `json:"characters"`
}

// ProjectListResponse represents the projects list response.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

// CreateProject handles project creation.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = sanitizeName(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if !projectTypeRegex.MatchString(req.Type) {
		h.Error(w, http.StatusBadRequest, "type must be a short lowercase word")
		return
	}
	if len(req.Description) > 2000 {
		h.Error(w, http.StatusBadRequest, "description too long (max 2000 chars)")
		return
	}

	project, err := h.data.CreateProject(r.Context(), req.Name, req.Type, req.Description)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.JSON(w, http.StatusCreated, projectResponse(project))
}

// GetProject returns one project with its characters.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	project, err := h.data.GetProject(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if project == nil {
		h.Error(w, http.StatusNotFound, "project not found")
		return
	}

	characters, err := h.data.ListCharacters(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	resp := ProjectDetailResponse{
		ProjectResponse: projectResponse(project),
		Characters:      make([]CharacterResponse, 0, len(characters)),
	}
	for _, c := range characters {
		resp.Characters = append(resp.Characters, characterResponse(c))
	}

	h.JSON(w, http.StatusOK, resp)
}

// ListProjects handles listing projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	projects, total, err := h.data.ListProjects(r.Context(), limit, offset)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	resp := ProjectListResponse{
		Projects: make([]ProjectResponse, 0, len(projects)),
		Total:    total,
	}
	for i := range projects {
		resp.Projects = append(resp.Projects, projectResponse(&projects[i]))
	}

	h.JSON(w, http.StatusOK, resp)
}

// DeleteProject removes a project and its characters.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid project ID format")
		return
	}

	project, err := h.data.GetProject(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if project == nil {
		h.Error(w, http.StatusNotFound, "project not found")
		return
	}

	if err := h.data.DeleteProject(r.Context(), id); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// projectResponse converts a project model to its wire form.
func projectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
