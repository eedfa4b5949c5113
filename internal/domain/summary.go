package domain

import (
	"time"

	"github.com/google/uuid"
)

// CallSummary is the structured distillation of a full session, produced
// exactly once per session id after the session has ended, and written once
// to the external CRM.
type CallSummary struct {
	SessionID      uuid.UUID `json:"session_id"`
	GuestName      string    `json:"guest_name"`
	Intent         string    `json:"intent"`
	Summary        string    `json:"summary"`
	ActionRequired bool      `json:"action_required"`
	EndedAt        time.Time `json:"ended_at"`
}
