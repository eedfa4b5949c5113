package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerGuest Speaker = "GUEST"
	SpeakerAgent Speaker = "AGENT"
)

// Route tags an agent turn with the classification path that produced it.
type Route string

const (
	RouteChat   Route = "CHAT"
	RouteRAG    Route = "RAG"
	RouteTool   Route = "TOOL"
	RouteSafety Route = "ROUTED_SAFETY"
)

// SessionState is the lifecycle state of a call session.
type SessionState string

const (
	SessionActive SessionState = "ACTIVE"
	SessionEnded  SessionState = "ENDED"
)

// Turn is one utterance in a call transcript. Immutable once appended.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	Route   Route     `json:"route,omitempty"` // set on agent turns only
	At      time.Time `json:"at"`
}

// Session is the per-call conversation state. The turn sequence is append-only
// and never reordered while the session is active.
type Session struct {
	ID           uuid.UUID    `json:"id"`
	State        SessionState `json:"state"`
	Turns        []Turn       `json:"turns"`
	CreatedAt    time.Time    `json:"created_at"`
	LastActivity time.Time    `json:"last_activity"`
}

// Window returns the most recent n turns, or all turns when n <= 0 or the
// transcript is shorter than n.
func (s *Session) Window(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Transcript renders the full conversation as "SPEAKER: text" lines.
func (s *Session) Transcript() string {
	var sb strings.Builder
	for i, t := range s.Turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(t.Speaker))
		sb.WriteString(": ")
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// SessionRepository stores per-call conversation state. Implementations must
// make Append and Close atomic with respect to concurrent Gets of the same id.
type SessionRepository interface {
	Create() *Session
	Append(id uuid.UUID, turn Turn) error
	Get(id uuid.UUID) (*Session, error)
	Close(id uuid.UUID) (*Session, error)
}
