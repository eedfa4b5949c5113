// Package crm turns a closed session into a CallSummary and writes it to the
// external CRM sheet. The write is deliberately blocking: the end-of-call
// request is not acknowledged until the row is durable or retries run out.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Summarizer produces the summary text from a prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Writer persists one CallSummary row in the external CRM.
type Writer interface {
	Write(ctx context.Context, summary domain.CallSummary) error
}

// Pipeline generates and persists exactly one CallSummary per closed session.
type Pipeline struct {
	gen         Summarizer
	writer      Writer
	maxAttempts int
	initialWait time.Duration
}

// NewPipeline creates the summary pipeline. maxAttempts bounds the total
// number of CRM write attempts (first try included).
func NewPipeline(gen Summarizer, writer Writer, maxAttempts int) *Pipeline {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Pipeline{
		gen:         gen,
		writer:      writer,
		maxAttempts: maxAttempts,
		initialWait: time.Second,
	}
}

// Finalize summarizes the closed session and writes the row. It must only be
// called with an ended session. On write failure it retries with exponential
// backoff up to maxAttempts, then returns an error wrapping domain.ErrCRMWrite;
// the session stays ended regardless.
func (p *Pipeline) Finalize(ctx context.Context, sess *domain.Session) (domain.CallSummary, error) {
	if sess.State != domain.SessionEnded {
		return domain.CallSummary{}, fmt.Errorf("crm.Pipeline.Finalize: session %s is not ended", sess.ID)
	}

	summary := p.summarize(ctx, sess)

	op := func() error {
		return p.writer.Write(ctx, summary)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialWait

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.maxAttempts-1)), ctx))
	if err != nil {
		return summary, fmt.Errorf("crm.Pipeline.Finalize: %w: %w", domain.ErrCRMWrite, err)
	}

	log.Info().Str("session_id", sess.ID.String()).Str("intent", summary.Intent).Msg("call summary written to crm")
	return summary, nil
}

// summarize asks the generator for a structured summary. Generation failures
// degrade to a minimal transcript-derived summary: the row write stays the
// durability gate, not the model.
func (p *Pipeline) summarize(ctx context.Context, sess *domain.Session) domain.CallSummary {
	summary := domain.CallSummary{
		SessionID: sess.ID,
		GuestName: "Unknown",
		Intent:    "General",
		EndedAt:   time.Now(),
	}

	raw, err := p.gen.Summarize(ctx, summaryPrompt(sess.Transcript()))
	if err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("summary generation failed; writing fallback summary")
		summary.Summary = fallbackSummary(sess)
		return summary
	}

	var parsed struct {
		GuestName      string `json:"guest_name"`
		Intent         string `json:"intent"`
		Summary        string `json:"summary"`
		ActionRequired string `json:"action_required"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("summary parse failed; writing fallback summary")
		summary.Summary = fallbackSummary(sess)
		return summary
	}

	if parsed.GuestName != "" {
		summary.GuestName = parsed.GuestName
	}
	if parsed.Intent != "" {
		summary.Intent = parsed.Intent
	}
	summary.Summary = parsed.Summary
	summary.ActionRequired = strings.EqualFold(parsed.ActionRequired, "yes")

	return summary
}

func summaryPrompt(transcript string) string {
	return `Summarize this hotel call into JSON with exactly these fields:
{
  "guest_name": "Name or Unknown",
  "intent": "Booking/Inquiry/Complaint/General",
  "summary": "One short sentence",
  "action_required": "Yes or No"
}
Respond with JSON only, no markdown.

Transcript:
` + transcript
}

// fallbackSummary is the first guest utterance, so the CRM row is never empty.
func fallbackSummary(sess *domain.Session) string {
	for _, t := range sess.Turns {
		if t.Speaker == domain.SpeakerGuest {
			return "Call transcript (unsummarized): " + t.Text
		}
	}
	return "Call ended with no guest utterances."
}

// stripFences removes a ```json ... ``` wrapper the model sometimes adds.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
