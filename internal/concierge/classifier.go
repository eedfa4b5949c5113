package concierge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Decision is the outcome of intent classification for one utterance.
type Decision struct {
	Route domain.Route
	// Context is a system note injected into the generator message
	// ("[TOOL OUTPUT]: ..." / "[KNOWLEDGE]: ..."); empty for open chat.
	Context string
	// Instruction is an extra style constraint appended to the system prompt.
	Instruction string
}

// Tier is one stage of the ordered intent classification. The first tier to
// match wins; a tier error degrades the turn to open-domain chat.
type Tier interface {
	Name() string
	Match(ctx context.Context, utterance string) (Decision, bool, error)
}

// classify runs the tier list in order. Tool triggers are checked before any
// similarity scoring, so a clear booking phrase can never be preempted by a
// retrieval hit.
func classify(ctx context.Context, tiers []Tier, utterance string) Decision {
	for _, tier := range tiers {
		d, ok, err := tier.Match(ctx, utterance)
		if err != nil {
			log.Warn().Err(err).Str("tier", tier.Name()).Msg("tier unavailable; degrading to chat")
			break
		}
		if ok {
			return d
		}
	}
	return Decision{Route: domain.RouteChat}
}

// ---------------------------------------------------------------------------
// Tier 1: deterministic availability/booking triggers
// ---------------------------------------------------------------------------

// ToolExecutor resolves a booking-related utterance into a structured result.
type ToolExecutor interface {
	Check(ctx context.Context, utterance string) (domain.ToolResult, error)
}

// The month "may" is absent: it collides with the modal verb.
var bookingTrigger = regexp.MustCompile(`(?i)\b(availab\w*|vacanc\w*|book(ing)?|reserv\w*|room for|check[- ]?in|tonight|tomorrow|weekend|date|monday|tuesday|wednesday|thursday|friday|saturday|sunday|january|february|march|april|june|july|august|september|october|november|december|dec|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov)\b`)

type toolTier struct {
	exec ToolExecutor
}

// NewToolTier wires the deterministic booking-trigger tier.
func NewToolTier(exec ToolExecutor) Tier {
	return &toolTier{exec: exec}
}

func (t *toolTier) Name() string { return "tool" }

func (t *toolTier) Match(ctx context.Context, utterance string) (Decision, bool, error) {
	if !bookingTrigger.MatchString(utterance) {
		return Decision{}, false, nil
	}

	result, err := t.exec.Check(ctx, utterance)
	if err != nil {
		return Decision{}, false, fmt.Errorf("concierge: tool check: %w", err)
	}

	return Decision{
		Route:       domain.RouteTool,
		Context:     "[TOOL OUTPUT]: " + result.Note(),
		Instruction: "Relay the availability result exactly as given; do not invent dates or prices.",
	}, true, nil
}

// ---------------------------------------------------------------------------
// Tier 2: semantic retrieval against the knowledge index
// ---------------------------------------------------------------------------

// Retriever answers nearest-neighbor queries, relevance-descending.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.RetrievalHit, error)
}

type ragTier struct {
	index     Retriever
	threshold float64
	topK      int
}

// NewRAGTier wires the semantic-similarity tier. A best hit scoring below
// threshold falls through without injecting anything.
func NewRAGTier(index Retriever, threshold float64, topK int) Tier {
	return &ragTier{index: index, threshold: threshold, topK: topK}
}

func (t *ragTier) Name() string { return "rag" }

func (t *ragTier) Match(ctx context.Context, utterance string) (Decision, bool, error) {
	hits, err := t.index.Query(ctx, utterance, t.topK)
	if err != nil {
		return Decision{}, false, fmt.Errorf("concierge: rag query: %w", err)
	}

	if len(hits) == 0 || hits[0].Score < t.threshold {
		return Decision{}, false, nil
	}

	var sb strings.Builder
	sb.WriteString("[KNOWLEDGE]: ")
	for i, h := range hits {
		if h.Score < t.threshold {
			break
		}
		if i > 0 {
			sb.WriteString(" | ")
		}
		fmt.Fprintf(&sb, "Source (%s): %s", h.Source, h.Passage)
	}

	return Decision{
		Route:       domain.RouteRAG,
		Context:     sb.String(),
		Instruction: "Answer in at most two speakable sentences. Extract only the specific answer from the knowledge note; never quote the document verbatim.",
	}, true, nil
}
