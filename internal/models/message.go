package models

// Message is one entry in a session's append-only history. Once created it
// is never mutated; clearing a session replaces the whole log.
type Message struct {
	ID          string   `json:"id"` // ULID
	SessionID   string   `json:"session_id"`
	Sender      Identity `json:"sender"`
	DisplayName string   `json:"display_name"`     // label at time of send
	Body        string   `json:"body"`
	ParentID    string   `json:"pid,omitempty"`    // for reply threading
	Mode        string   `json:"mode,omitempty"`   // conversation mode tag
	Intent      string   `json:"intent,omitempty"` // semantic intent tag
	Timestamp   int64    `json:"ts"`               // Unix ms

	// Debate annotations. Round is nil outside a debate; rounds 1-4 are the
	// numbered phases, 5 is synthesis.
	Round          *int   `json:"debate_round,omitempty"`
	Phase          string `json:"debate_phase,omitempty"`
	WaitingForUser bool   `json:"waiting_for_user,omitempty"`
	Action         string `json:"action,omitempty"` // UI action required, e.g. "user_input"
}

// InDebate reports whether the message carries any debate marker.
func (m *Message) InDebate() bool {
	return m.Round != nil || m.Phase != ""
}
