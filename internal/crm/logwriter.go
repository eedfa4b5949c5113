package crm

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// LogWriter records summaries in the application log. Used for local
// development when no spreadsheet is configured.
type LogWriter struct{}

// Write logs the summary and always succeeds.
func (LogWriter) Write(_ context.Context, s domain.CallSummary) error {
	log.Info().
		Str("session_id", s.SessionID.String()).
		Str("guest", s.GuestName).
		Str("intent", s.Intent).
		Bool("action_required", s.ActionRequired).
		Str("summary", s.Summary).
		Msg("call summary (crm disabled)")
	return nil
}
