package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/chat"
	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// ParticipantInfo describes one addressable participant.
type ParticipantInfo struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name"`
	Persona     string `json:"persona,omitempty"`
}

// ParticipantsResponse lists the participants of a conversation.
type ParticipantsResponse struct {
	Participants []ParticipantInfo `json:"participants"`
}

// Participants lists the three voices plus the user, with display names
// reflecting any personas bound in the given project.
func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	reg := chat.NewRegistry()

	if projectIDStr := r.URL.Query().Get("project_id"); projectIDStr != "" {
		projectID, err := uuid.Parse(projectIDStr)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid project ID format")
			return
		}
		characters, err := h.data.ListCharacters(r.Context(), projectID)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		for _, c := range characters {
			reg.Register(c.LLM, c.Name)
		}
	}

	ids := append([]models.Identity{}, models.Models...)
	ids = append(ids, models.IdentityUser)

	resp := ParticipantsResponse{Participants: make([]ParticipantInfo, 0, len(ids))}
	for _, id := range ids {
		resp.Participants = append(resp.Participants, ParticipantInfo{
			Identity:    string(id),
			DisplayName: reg.DisplayName(id),
			Persona:     reg.PersonaFor(id),
		})
	}

	h.JSON(w, http.StatusOK, resp)
}
