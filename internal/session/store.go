// Package session holds per-call conversation state in memory.
//
// Sessions are short-lived by design: a call lasts minutes, the transcript is
// handed to the CRM pipeline at close, and idle sessions are evicted by the
// janitor. Nothing here survives a restart.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Store is an in-memory keyed session store with an injected idle-eviction
// window. It satisfies domain.SessionRepository.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewStore creates a Store. idleTTL <= 0 disables eviction.
func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*domain.Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create registers a new active session and returns a snapshot of it.
func (s *Store) Create() *domain.Session {
	now := s.now()
	sess := &domain.Session{
		ID:           uuid.New(),
		State:        domain.SessionActive,
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return snapshot(sess)
}

// Append adds a turn to the session transcript. Returns
// domain.ErrSessionNotFound when the id is unknown or the session has ended.
func (s *Store) Append(id uuid.UUID, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session.Store.Append: %w", domain.ErrSessionNotFound)
	}

	if turn.At.IsZero() {
		turn.At = s.now()
	}
	sess.Turns = append(sess.Turns, turn)
	sess.LastActivity = s.now()

	return nil
}

// Get returns a snapshot of the session, or domain.ErrSessionNotFound.
func (s *Store) Get(id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session.Store.Get: %w", domain.ErrSessionNotFound)
	}

	return snapshot(sess), nil
}

// Close marks the session ended, removes it from the store, and returns the
// final transcript. A second Close (or any later Append/Get) on the same id
// returns domain.ErrSessionNotFound.
func (s *Store) Close(id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session.Store.Close: %w", domain.ErrSessionNotFound)
	}

	delete(s.sessions, id)
	sess.State = domain.SessionEnded

	return snapshot(sess), nil
}

// Len reports the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle past the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle sessions on the given interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Info().Int("evicted", n).Msg("session janitor: evicted idle sessions")
			}
		}
	}
}

// snapshot deep-copies a session so callers never observe later mutations.
func snapshot(sess *domain.Session) *domain.Session {
	cp := *sess
	cp.Turns = make([]domain.Turn, len(sess.Turns))
	copy(cp.Turns, sess.Turns)
	return &cp
}
