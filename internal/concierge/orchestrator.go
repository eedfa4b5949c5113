// Package concierge is the turn-level orchestration engine: it classifies
// each utterance through the tier list, generates a reply, keeps the session
// transcript, and hands closed sessions to the CRM pipeline.
package concierge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/audio"
	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Generator produces a reply given the system prompt, prior transcript, and
// the current (possibly context-augmented) message. A safety-flagged result
// is reported as domain.ErrSafetyBlocked.
type Generator interface {
	Generate(ctx context.Context, system string, history []domain.Turn, msg string) (string, error)
}

// Synthesizer turns reply text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Finalizer writes the call summary for a closed session, blocking until the
// CRM write is confirmed or retries are exhausted.
type Finalizer interface {
	Finalize(ctx context.Context, sess *domain.Session) (domain.CallSummary, error)
}

// Options are the orchestrator tunables, sourced from config.
type Options struct {
	HistoryWindow    int
	GenerateTimeout  time.Duration
	SynthesisTimeout time.Duration
}

// TurnResult is the outcome of one handled turn. AudioID is empty when
// synthesis failed; the text is still valid.
type TurnResult struct {
	Text    string
	Route   domain.Route
	AudioID string
}

// GreetResult is the outcome of starting a call.
type GreetResult struct {
	SessionID uuid.UUID
	Text      string
	AudioID   string
}

// Orchestrator routes each utterance through the tier list and owns turn
// ordering: turns within one session are strictly serialized, sessions are
// independent.
type Orchestrator struct {
	sessions  domain.SessionRepository
	gen       Generator
	synth     Synthesizer
	artifacts audio.Store
	crm       Finalizer
	tiers     []Tier
	opts      Options

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

// NewOrchestrator wires the turn engine. tiers are tried in order; open chat
// is the built-in fallback.
func NewOrchestrator(
	sessions domain.SessionRepository,
	gen Generator,
	synth Synthesizer,
	artifacts audio.Store,
	crm Finalizer,
	tiers []Tier,
	opts Options,
) *Orchestrator {
	if opts.HistoryWindow < 1 {
		opts.HistoryWindow = 20
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 20 * time.Second
	}
	if opts.SynthesisTimeout <= 0 {
		opts.SynthesisTimeout = 15 * time.Second
	}
	return &Orchestrator{
		sessions:  sessions,
		gen:       gen,
		synth:     synth,
		artifacts: artifacts,
		crm:       crm,
		tiers:     tiers,
		opts:      opts,
		locks:     make(map[uuid.UUID]*sync.Mutex),
		now:       time.Now,
	}
}

// Greet starts a new call: creates a session, records the canned greeting as
// the first agent turn, and synthesizes it. A synthesis failure still returns
// the session and text, alongside an error wrapping domain.ErrSynthesis.
func (o *Orchestrator) Greet(ctx context.Context) (*GreetResult, error) {
	sess := o.sessions.Create()

	err := o.sessions.Append(sess.ID, domain.Turn{
		Speaker: domain.SpeakerAgent,
		Text:    Greeting,
		At:      o.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("concierge.Orchestrator.Greet: %w", err)
	}

	res := &GreetResult{SessionID: sess.ID, Text: Greeting}

	audioID, synthErr := o.synthesize(ctx, Greeting)
	if synthErr != nil {
		return res, fmt.Errorf("concierge.Orchestrator.Greet: %w", synthErr)
	}
	res.AudioID = audioID

	log.Info().Str("session_id", sess.ID.String()).Msg("call started")
	return res, nil
}

// HandleTurn processes one guest utterance. Nothing is appended to the
// transcript until a reply exists, so a generator failure leaves the session
// untouched. Both turns are then appended in arrival order under the
// session's lock.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID uuid.UUID, text string) (*TurnResult, error) {
	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := o.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("concierge.Orchestrator.HandleTurn: %w", err)
	}

	decision := classify(ctx, o.tiers, text)

	msg := text
	if decision.Context != "" {
		msg = text + "\n" + decision.Context
	}

	genCtx, cancel := context.WithTimeout(ctx, o.opts.GenerateTimeout)
	defer cancel()

	reply, err := o.gen.Generate(genCtx, systemPrompt(o.now(), decision.Instruction), sess.Window(o.opts.HistoryWindow), msg)
	route := decision.Route
	if err != nil {
		if !errors.Is(err, domain.ErrSafetyBlocked) {
			return nil, fmt.Errorf("concierge.Orchestrator.HandleTurn: generate: %w", err)
		}
		// Safety flag: substitute the fixed redirect, no retry, no raw content.
		reply = safeRedirect
		route = domain.RouteSafety
		log.Warn().Str("session_id", sessionID.String()).Msg("reply blocked by safety filter; substituting redirect")
	}

	now := o.now()
	if err := o.sessions.Append(sessionID, domain.Turn{Speaker: domain.SpeakerGuest, Text: text, At: now}); err != nil {
		return nil, fmt.Errorf("concierge.Orchestrator.HandleTurn: %w", err)
	}
	if err := o.sessions.Append(sessionID, domain.Turn{Speaker: domain.SpeakerAgent, Text: reply, Route: route, At: now}); err != nil {
		return nil, fmt.Errorf("concierge.Orchestrator.HandleTurn: %w", err)
	}

	res := &TurnResult{Text: reply, Route: route}

	audioID, synthErr := o.synthesize(ctx, reply)
	if synthErr != nil {
		return res, fmt.Errorf("concierge.Orchestrator.HandleTurn: %w", synthErr)
	}
	res.AudioID = audioID

	log.Info().
		Str("session_id", sessionID.String()).
		Str("route", string(route)).
		Msg("turn handled")
	return res, nil
}

// EndCall closes the session and blocks until the CRM pipeline confirms the
// summary write or exhausts its retries. The session is ended either way; a
// failed write surfaces as domain.ErrCRMWrite without resurrecting it.
func (o *Orchestrator) EndCall(ctx context.Context, sessionID uuid.UUID) (domain.CallSummary, error) {
	lock := o.lockFor(sessionID)
	lock.Lock()

	sess, err := o.sessions.Close(sessionID)

	// The lock entry is dead once the session is gone.
	lock.Unlock()
	o.dropLock(sessionID)

	if err != nil {
		return domain.CallSummary{}, fmt.Errorf("concierge.Orchestrator.EndCall: %w", err)
	}

	summary, err := o.crm.Finalize(ctx, sess)
	if err != nil {
		return summary, fmt.Errorf("concierge.Orchestrator.EndCall: %w", err)
	}

	log.Info().Str("session_id", sessionID.String()).Msg("call ended")
	return summary, nil
}

// synthesize creates the audio artifact and stores it by reference. Returns
// an error wrapping domain.ErrSynthesis on failure; callers keep the text.
func (o *Orchestrator) synthesize(ctx context.Context, text string) (string, error) {
	synthCtx, cancel := context.WithTimeout(ctx, o.opts.SynthesisTimeout)
	defer cancel()

	data, err := o.synth.Synthesize(synthCtx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	id := uuid.New().String()
	if err := o.artifacts.Put(ctx, id, data); err != nil {
		return "", fmt.Errorf("%w: store artifact: %w", domain.ErrSynthesis, err)
	}
	return id, nil
}

// lockFor returns the per-session mutex, creating it on first use. This is
// the serialization point: no two turns for one session run concurrently.
func (o *Orchestrator) lockFor(id uuid.UUID) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[id] = lock
	}
	return lock
}

func (o *Orchestrator) dropLock(id uuid.UUID) {
	o.mu.Lock()
	delete(o.locks, id)
	o.mu.Unlock()
}
