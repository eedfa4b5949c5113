package domain

import (
	"fmt"
	"time"
)

// ToolResult is the structured output of a deterministic tool call.
type ToolResult struct {
	Available   bool      `json:"available"`
	Date        time.Time `json:"date"`
	RoomType    string    `json:"room_type"`
	NightlyRate int       `json:"nightly_rate"` // USD
}

// Note renders the result as a system note for the generator prompt.
func (r ToolResult) Note() string {
	day := r.Date.Format("2006-01-02")
	if !r.Available {
		return fmt.Sprintf("%s is SOLD OUT on %s.", r.RoomType, day)
	}
	return fmt.Sprintf("%s is AVAILABLE on %s. Price: $%d per night.", r.RoomType, day, r.NightlyRate)
}
