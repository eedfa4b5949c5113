// Package tools holds the deterministic tool executors the orchestrator can
// route to. No external calls are made here.
package tools

import (
	"context"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Nightly rates in USD.
const (
	standardRate = 150
	deluxeRate   = 250
)

// Availability checks room availability for a requested date. The inventory
// rule mirrors the booking system stub: Friday and Saturday nights are sold
// out, everything else is open.
type Availability struct {
	now func() time.Time
}

// NewAvailability creates the availability checker.
func NewAvailability() *Availability {
	return &Availability{now: time.Now}
}

// Check extracts a stay date and room type from the utterance and resolves
// availability. Utterances without a recognizable date default to tomorrow.
func (a *Availability) Check(_ context.Context, utterance string) (domain.ToolResult, error) {
	ref := a.now()

	date, err := naturaldate.Parse(utterance, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil || sameDay(date, ref) {
		// No explicit date in the utterance; assume the guest means tomorrow.
		date = ref.AddDate(0, 0, 1)
	}

	roomType := "Standard Room"
	rate := standardRate
	if strings.Contains(strings.ToLower(utterance), "deluxe") {
		roomType = "Deluxe Room"
		rate = deluxeRate
	}

	wd := date.Weekday()
	return domain.ToolResult{
		Available:   wd != time.Friday && wd != time.Saturday,
		Date:        date,
		RoomType:    roomType,
		NightlyRate: rate,
	}, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
