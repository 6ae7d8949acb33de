package handlers

import (
	"net/http"
	"time"
)

// MessagePreview is a trimmed message for the stats activity feed.
type MessagePreview struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	Sender      string `json:"sender"`
	DisplayName string `json:"display_name"`
	Body        string `json:"body"`
	Timestamp   int64  `json:"ts"`
}

// StatsResponse represents the response from the stats endpoint.
type StatsResponse struct {
	TotalProjects   int64            `json:"total_projects"`
	TotalCharacters int64            `json:"total_characters"`
	ActiveSessions  int              `json:"active_sessions"`
	TotalMessages   int64            `json:"total_messages"`
	LastActivity    string           `json:"last_activity"`
	RecentMessages  []MessagePreview `json:"recent_messages"`
}

// Stats returns platform statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalProjects, err := h.data.CountProjects(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count projects")
		return
	}

	totalCharacters, err := h.data.CountCharacters(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count characters")
		return
	}

	totalMessages, err := h.msgs.CountMessages(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count messages")
		return
	}

	// Recent activity is decoration on the stats page; a fetch error
	// degrades to empty rather than failing the whole response.
	recent, err := h.msgs.RecentMessages(ctx, 5)
	if err != nil {
		recent = nil
	}

	lastActivity := "no activity yet"
	previews := make([]MessagePreview, 0, len(recent))
	for i, m := range recent {
		if i == 0 {
			lastActivity = formatTimeAgo(time.UnixMilli(m.Timestamp))
		}
		body := m.Body
		if len(body) > 200 {
			body = body[:197] + "..."
		}
		previews = append(previews, MessagePreview{
			ID:          m.ID,
			SessionID:   m.SessionID,
			Sender:      string(m.Sender),
			DisplayName: m.DisplayName,
			Body:        body,
			Timestamp:   m.Timestamp,
		})
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalProjects:   totalProjects,
		TotalCharacters: totalCharacters,
		ActiveSessions:  len(h.sessions.ActiveIDs(ctx)),
		TotalMessages:   totalMessages,
		LastActivity:    lastActivity,
		RecentMessages:  previews,
	})
}

// formatTimeAgo renders an elapsed duration as a coarse human label.
func formatTimeAgo(t time.Time) string {
	elapsed := time.Since(t)

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		m := int(elapsed.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return formatInt(m) + " minutes ago"
	case elapsed < 24*time.Hour:
		h := int(elapsed.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return formatInt(h) + " hours ago"
	default:
		d := int(elapsed.Hours() / 24)
		if d == 1 {
			return "1 day ago"
		}
		return formatInt(d) + " days ago"
	}
}

// formatInt converts an int to string without importing strconv.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
