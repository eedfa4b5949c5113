package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	// ErrNotFound covers generic missing resources (audio artifacts etc.).
	ErrNotFound = errors.New("domain: not found")
	// ErrSessionNotFound is returned when a session id is unknown, evicted,
	// or already ended. Callers treat it as "session expired".
	ErrSessionNotFound = errors.New("domain: session not found")
	// ErrSafetyBlocked signals the generator flagged the content. Recovered
	// locally with a safe-redirect reply, never surfaced to the caller.
	ErrSafetyBlocked = errors.New("domain: content blocked by safety filter")
	// ErrSynthesis signals audio synthesis failed; the reply text is still valid.
	ErrSynthesis = errors.New("domain: speech synthesis failed")
	// ErrCRMWrite signals the CRM write failed after bounded retries.
	ErrCRMWrite = errors.New("domain: crm write failed")
)
