package chat

import (
	"fmt"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// Scan windows for debate state derivation. Status is reconstructed by a
// bounded backward scan over the log rather than carried as session state,
// so it is always re-derivable after a replay. The waiting window is
// shorter so a stale "your turn" prompt stops gating input quickly.
const (
	debateScanWindow  = 10
	waitingScanWindow = 5
)

// DebateStatus is the renderable debate state derived from the log. It is
// recomputed on demand and never persisted.
type DebateStatus struct {
	Round string `json:"round"`
	State string `json:"state"`
}

// defaultStatus is returned when no message in the window qualifies; callers
// always get something renderable.
var defaultStatus = DebateStatus{Round: "Active", State: "In Progress"}

// roundLabels maps round numbers to display labels. Round 5 is the
// synthesis pass that closes a debate.
var roundLabels = map[int]string{
	1: "Opening",
	2: "Questions",
	3: "Responses",
	4: "Consensus",
	5: "Synthesis",
}

// RoundLabel returns the display label for a debate round number.
func RoundLabel(round int) string {
	if label, ok := roundLabels[round]; ok {
		return label
	}
	return fmt.Sprintf("Round %d", round)
}

// IsActiveDebate reports whether any of the last ten messages carries a
// debate marker. Debate activity older than the window counts as concluded
// for display purposes; this is a recency heuristic, not a hard guarantee.
func IsActiveDebate(history []models.Message) bool {
	for i, n := len(history)-1, 0; i >= 0 && n < debateScanWindow; i, n = i-1, n+1 {
		if history[i].InDebate() {
			return true
		}
	}
	return false
}

// CurrentStatus derives the debate status from the nearest message in the
// last ten that carries both a round number and a phase label. Only that
// message determines the status; older markers are ignored.
func CurrentStatus(history []models.Message) DebateStatus {
	for i, n := len(history)-1, 0; i >= 0 && n < debateScanWindow; i, n = i-1, n+1 {
		m := history[i]
		if m.Round == nil || m.Phase == "" {
			continue
		}
		state := "In progress"
		if m.WaitingForUser {
			state = "Waiting for you"
		}
		return DebateStatus{Round: RoundLabel(*m.Round), State: state}
	}
	return defaultStatus
}

// IsWaitingForUser reports whether the nearest of the last five messages
// has the waiting flag set, i.e. the debate is paused for human input.
func IsWaitingForUser(history []models.Message) bool {
	for i, n := len(history)-1, 0; i >= 0 && n < waitingScanWindow; i, n = i-1, n+1 {
		if history[i].WaitingForUser {
			return true
		}
	}
	return false
}
