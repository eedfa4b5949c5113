package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/concierge"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Concierge abstracts the turn orchestrator for handler testing.
// *concierge.Orchestrator satisfies this interface.
type Concierge interface {
	Greet(ctx context.Context) (*concierge.GreetResult, error)
	HandleTurn(ctx context.Context, sessionID uuid.UUID, text string) (*concierge.TurnResult, error)
	EndCall(ctx context.Context, sessionID uuid.UUID) (domain.CallSummary, error)
}
