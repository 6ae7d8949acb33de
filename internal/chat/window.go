package chat

import (
	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// ContextWindowSize is how many trailing messages ride along on an outbound
// request as conversational grounding.
const ContextWindowSize = 5

// ContextEntry is a message reduced to the fields the dispatch collaborator
// needs; nothing transport-unsafe crosses this boundary.
type ContextEntry struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	Sender       models.Identity `json:"sender"`
	DisplayName  string          `json:"display_name"`
	Timestamp    int64           `json:"ts"`
	ReferencedID string          `json:"pid,omitempty"`
	Intent       string          `json:"intent,omitempty"`
}

// RecentContext projects the last n messages of the history, in original
// chronological order. Histories shorter than n come back whole.
func RecentContext(history []models.Message, n int) []ContextEntry {
	if n <= 0 {
		n = ContextWindowSize
	}
	start := len(history) - n
	if start < 0 {
		start = 0
	}

	out := make([]ContextEntry, 0, len(history)-start)
	for _, m := range history[start:] {
		out = append(out, ContextEntry{
			ID:           m.ID,
			Text:         m.Body,
			Sender:       m.Sender,
			DisplayName:  m.DisplayName,
			Timestamp:    m.Timestamp,
			ReferencedID: m.ParentID,
			Intent:       m.Intent,
		})
	}
	return out
}
