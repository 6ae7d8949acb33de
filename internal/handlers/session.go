package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nickfox/LLMCreativeStudio/internal/chat"
	"github.com/nickfox/LLMCreativeStudio/internal/metrics"
	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// AppendMessageRequest is an annotated response delivered by the transport
// collaborator after a model call. Both historical response shapes are
// normalized into this one before they reach the server.
type AppendMessageRequest struct {
	Sender      models.Identity `json:"sender"`
	DisplayName string          `json:"display_name,omitempty"`
	Body        string          `json:"body"`
	ParentID    string          `json:"pid,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Intent      string          `json:"intent,omitempty"`

	Round          *int   `json:"debate_round,omitempty"`
	Phase          string `json:"debate_phase,omitempty"`
	WaitingForUser bool   `json:"waiting_for_user,omitempty"`
	Action         string `json:"action,omitempty"`
}

// AppendMessageResponse confirms a stored message.
type AppendMessageResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"ts"`
}

// AppendMessage stores an annotated message in a session's history.
func (h *Handler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !req.Sender.Valid() {
		h.Error(w, http.StatusBadRequest, "unknown sender identity")
		return
	}
	if strings.TrimSpace(req.Body) == "" && req.Round == nil && req.Phase == "" {
		h.Error(w, http.StatusBadRequest, "body is required")
		return
	}
	if req.Round != nil && (*req.Round < 0 || *req.Round > 5) {
		h.Error(w, http.StatusBadRequest, "debate_round must be between 0 and 5")
		return
	}

	displayName := sanitizeName(req.DisplayName)
	if displayName == "" {
		displayName = req.Sender.DefaultLabel()
	}

	sess := h.sessions.Get(r.Context(), sessionID)
	msg, err := h.sessions.Append(r.Context(), sess, models.Message{
		Sender:         req.Sender,
		DisplayName:    displayName,
		Body:           req.Body,
		ParentID:       req.ParentID,
		Mode:           req.Mode,
		Intent:         req.Intent,
		Round:          req.Round,
		Phase:          req.Phase,
		WaitingForUser: req.WaitingForUser,
		Action:         req.Action,
	})
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}
	metrics.MessagesAppended.WithLabelValues(string(req.Sender)).Inc()

	h.JSON(w, http.StatusCreated, AppendMessageResponse{
		ID:        msg.ID,
		SessionID: sess.ID(),
		Timestamp: msg.Timestamp,
	})
}

// MessagesResponse represents a page of session history.
type MessagesResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []models.Message `json:"messages"`
	HasMore   bool             `json:"has_more"`
}

// Messages returns a session's history, oldest first within the page.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 200 {
		limit = 200
	}

	var before int64
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		if b, err := strconv.ParseInt(beforeStr, 10, 64); err == nil {
			before = b
		}
	}

	// Fetch one extra to detect more pages; store returns newest first.
	page, err := h.msgs.SessionMessages(r.Context(), sessionID, limit+1, before)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	hasMore := len(page) > limit
	if hasMore {
		page = page[:limit]
	}

	// Reverse into chronological order for display.
	msgs := make([]models.Message, 0, len(page))
	for i := len(page) - 1; i >= 0; i-- {
		msgs = append(msgs, page[i])
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		SessionID: sessionID,
		Messages:  msgs,
		HasMore:   hasMore,
	})
}

// DebateStatusResponse reports the derived debate state for a session.
type DebateStatusResponse struct {
	SessionID      string            `json:"session_id"`
	Active         bool              `json:"active"`
	Status         chat.DebateStatus `json:"status"`
	WaitingForUser bool              `json:"waiting_for_user"`
}

// DebateStatus derives the current debate state from the session's log.
func (h *Handler) DebateStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess := h.sessions.Get(r.Context(), sessionID)
	history := sess.Snapshot()

	active := chat.IsActiveDebate(history)
	if active {
		metrics.DebatesActive.Inc()
	}

	h.JSON(w, http.StatusOK, DebateStatusResponse{
		SessionID:      sess.ID(),
		Active:         active,
		Status:         chat.CurrentStatus(history),
		WaitingForUser: chat.IsWaitingForUser(history),
	})
}

// ContextResponse carries the recent context window for a session.
type ContextResponse struct {
	SessionID string              `json:"session_id"`
	Context   []chat.ContextEntry `json:"context"`
}

// Context returns the bounded recent-history slice used to ground outgoing
// model calls.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	n := chat.ContextWindowSize
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		if v, err := strconv.Atoi(nStr); err == nil && v > 0 && v <= 50 {
			n = v
		}
	}

	sess := h.sessions.Get(r.Context(), sessionID)

	h.JSON(w, http.StatusOK, ContextResponse{
		SessionID: sess.ID(),
		Context:   chat.RecentContext(sess.Snapshot(), n),
	})
}

// ClearSessionResponse returns the replacement session id after a clear.
type ClearSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ClearSession wipes a session's history and mints a fresh session id.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess := h.sessions.Get(r.Context(), sessionID)
	newID, err := h.sessions.Clear(r.Context(), sess)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	metrics.SessionsCleared.Inc()

	h.JSON(w, http.StatusOK, ClearSessionResponse{SessionID: newID})
}

// SessionInfo represents one active session in the list response.
type SessionInfo struct {
	ID string `json:"id"`
}

// SessionListResponse represents the sessions list response.
type SessionListResponse struct {
	Sessions []SessionInfo `json:"sessions"`
	Total    int           `json:"total"`
}

// ListSessions lists sessions that currently hold history.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids := h.sessions.ActiveIDs(r.Context())

	sessions := make([]SessionInfo, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, SessionInfo{ID: id})
	}

	h.JSON(w, http.StatusOK, SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}
