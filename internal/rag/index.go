// Package rag provides a read-only nearest-neighbor index over the hotel
// knowledge base. The index is loaded once at startup from a snapshot written
// by the ingestion job and is safe for concurrent use without locking.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Embedder produces a vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Passage is one knowledge-base chunk with its precomputed embedding.
type Passage struct {
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Vector []float32 `json:"vector"`
}

type snapshot struct {
	Passages []Passage `json:"passages"`
}

// Index answers nearest-neighbor queries over embedded passages.
type Index struct {
	passages []Passage
	embedder Embedder
}

// New builds an index over the given passages.
func New(passages []Passage, embedder Embedder) *Index {
	return &Index{passages: passages, embedder: embedder}
}

// Load reads a snapshot file produced by the ingestion job.
func Load(path string, embedder Embedder) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rag.Load: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("rag.Load: parse snapshot %s: %w", path, err)
	}
	if len(snap.Passages) == 0 {
		return nil, fmt.Errorf("rag.Load: snapshot %s contains no passages", path)
	}

	return New(snap.Passages, embedder), nil
}

// Len reports the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Query embeds the text and returns up to k hits ordered by cosine
// similarity, descending.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]domain.RetrievalHit, error) {
	if k < 1 {
		k = 1
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("rag.Index.Query: embed: %w", err)
	}

	hits := make([]domain.RetrievalHit, 0, len(ix.passages))
	for _, p := range ix.passages {
		hits = append(hits, domain.RetrievalHit{
			Passage: p.Text,
			Source:  p.Source,
			Score:   cosine(vec, p.Vector),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := range n {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
