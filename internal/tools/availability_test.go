package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference "now": Wednesday 2026-01-07.
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)
	}
}

func TestAvailability_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		utterance     string
		wantAvailable bool
		wantWeekday   time.Weekday
		wantRoom      string
		wantRate      int
	}{
		{
			name:          "next_friday_is_sold_out",
			utterance:     "do you have a room for next friday",
			wantAvailable: false,
			wantWeekday:   time.Friday,
			wantRoom:      "Standard Room",
			wantRate:      150,
		},
		{
			name:          "monday_is_available",
			utterance:     "is anything available on monday",
			wantAvailable: true,
			wantWeekday:   time.Monday,
			wantRoom:      "Standard Room",
			wantRate:      150,
		},
		{
			name:          "deluxe_room_tomorrow",
			utterance:     "can I book a deluxe room tomorrow",
			wantAvailable: true, // Thursday
			wantWeekday:   time.Thursday,
			wantRoom:      "Deluxe Room",
			wantRate:      250,
		},
		{
			name:          "no_date_defaults_to_tomorrow",
			utterance:     "is a room free",
			wantAvailable: true, // Thursday
			wantWeekday:   time.Thursday,
			wantRoom:      "Standard Room",
			wantRate:      150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := NewAvailability()
			checker.now = fixedClock()

			result, err := checker.Check(context.Background(), tt.utterance)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAvailable, result.Available)
			assert.Equal(t, tt.wantWeekday, result.Date.Weekday())
			assert.Equal(t, tt.wantRoom, result.RoomType)
			assert.Equal(t, tt.wantRate, result.NightlyRate)
		})
	}
}

// The checker is deterministic: same utterance, same clock, same result.
func TestAvailability_Deterministic(t *testing.T) {
	t.Parallel()

	checker := NewAvailability()
	checker.now = fixedClock()

	first, err := checker.Check(context.Background(), "room for next friday")
	require.NoError(t, err)

	second, err := checker.Check(context.Background(), "room for next friday")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAvailability_NoteRendering(t *testing.T) {
	t.Parallel()

	checker := NewAvailability()
	checker.now = fixedClock()

	result, err := checker.Check(context.Background(), "deluxe room next friday")
	require.NoError(t, err)

	assert.False(t, result.Available)
	assert.Contains(t, result.Note(), "Deluxe Room is SOLD OUT")
}
