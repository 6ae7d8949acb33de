package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nickfox/LLMCreativeStudio/internal/chat"
	"github.com/nickfox/LLMCreativeStudio/internal/metrics"
	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// ChatRequest represents one raw user input to route.
type ChatRequest struct {
	Message   string `json:"message"`
	UserName  string `json:"user_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Mode      string `json:"mode,omitempty"`
	ParentID  string `json:"pid,omitempty"`
}

// DecisionResponse is the wire form of a routing decision.
type DecisionResponse struct {
	Target    string `json:"target"` // "model", "all" or "data-query"
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
	Body      string `json:"body"`
	DataQuery string `json:"data_query,omitempty"`
}

// ChatResponse carries everything the dispatch collaborator needs to invoke
// the targeted model(s): the decision, the recipients, the recent context
// window and the current debate state.
type ChatResponse struct {
	SessionID      string              `json:"session_id"`
	MessageID      string              `json:"message_id"`
	Decision       DecisionResponse    `json:"decision"`
	Recipients     []models.Identity   `json:"recipients"`
	TargetLabel    string              `json:"target_label,omitempty"`
	Context        []chat.ContextEntry `json:"context"`
	Debate         chat.DebateStatus   `json:"debate"`
	WaitingForUser bool                `json:"waiting_for_user"`
}

// Chat resolves one user input to its recipients, records it in the session
// history, and returns the routing decision. No model is invoked here; the
// caller dispatches.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	// Persona addressing only applies while a project is active.
	reg := chat.NewRegistry()
	projectActive := false
	if req.ProjectID != "" {
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid project ID format")
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
		projectActive = true

		characters, err := h.data.ListCharacters(r.Context(), projectID)
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		for _, c := range characters {
			reg.Register(c.LLM, c.Name)
		}
	}

	decision := chat.Resolve(req.Message, reg, projectActive)
	metrics.RoutingDecisions.WithLabelValues(decision.Kind.String()).Inc()

	userName := sanitizeName(req.UserName)
	if userName == "" {
		userName = models.IdentityUser.DefaultLabel()
	}

	// The log keeps the raw input; the cleaned body travels in the decision.
	sess := h.sessions.Get(r.Context(), req.SessionID)
	msg, err := h.sessions.Append(r.Context(), sess, models.Message{
		Sender:      models.IdentityUser,
		DisplayName: userName,
		Body:        req.Message,
		ParentID:    req.ParentID,
		Mode:        req.Mode,
		Intent:      "chat",
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}
	metrics.MessagesAppended.WithLabelValues(string(models.IdentityUser)).Inc()

	history := sess.Snapshot()

	resp := ChatResponse{
		SessionID:      sess.ID(),
		MessageID:      msg.ID,
		Decision:       decisionResponse(decision),
		Recipients:     recipients(decision),
		Context:        chat.RecentContext(history, chat.ContextWindowSize),
		Debate:         chat.CurrentStatus(history),
		WaitingForUser: chat.IsWaitingForUser(history),
	}
	if decision.Kind != chat.TargetEveryone {
		resp.TargetLabel = reg.DisplayName(decision.Model)
	}

	h.JSON(w, http.StatusOK, resp)
}

// decisionResponse converts a routing decision to its wire form.
func decisionResponse(d chat.RoutingDecision) DecisionResponse {
	out := DecisionResponse{
		Target:    d.Kind.String(),
		Fallback:  d.Fallback,
		Body:      d.Body,
		DataQuery: d.DataQuery,
	}
	if d.Kind != chat.TargetEveryone {
		out.Model = string(d.Model)
	}
	return out
}

// recipients expands a decision into the voices that should respond.
func recipients(d chat.RoutingDecision) []models.Identity {
	if d.Kind == chat.TargetEveryone {
		return models.Models
	}
	return []models.Identity{d.Model}
}
