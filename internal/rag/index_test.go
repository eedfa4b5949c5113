package rag_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/rag"
)

// stubEmbedder maps known strings to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func testPassages() []rag.Passage {
	return []rag.Passage{
		{Text: "The pool is open 7am-10pm.", Source: "amenities.md", Vector: []float32{1, 0, 0}},
		{Text: "Cancellations are free up to 48 hours before check-in.", Source: "policy.md", Vector: []float32{0, 1, 0}},
		{Text: "Pets up to 20kg are welcome for a $40 fee.", Source: "policy.md", Vector: []float32{0, 0, 1}},
	}
}

// ---------------------------------------------------------------------------
// Query ordering and bounding
// ---------------------------------------------------------------------------

func TestIndex_Query_OrdersByRelevanceDescending(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{
		// Closest to the cancellation passage, some pull toward the pool.
		"can I cancel?": {0.3, 0.9, 0.1},
	}}
	index := rag.New(testPassages(), embedder)

	hits, err := index.Query(context.Background(), "can I cancel?", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Contains(t, hits[0].Passage, "Cancellations")
	assert.Equal(t, "policy.md", hits[0].Source)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score, "hits must be relevance-descending")
	}
}

func TestIndex_Query_BoundsToK(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{"pool": {1, 0, 0}}}
	index := rag.New(testPassages(), embedder)

	hits, err := index.Query(context.Background(), "pool", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Passage, "pool")
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestIndex_Query_EmbedderErrorPropagates(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{err: assert.AnError}
	index := rag.New(testPassages(), embedder)

	_, err := index.Query(context.Background(), "anything", 1)
	assert.ErrorIs(t, err, assert.AnError)
}

// A zero query vector scores 0 against everything rather than dividing by zero.
func TestIndex_Query_ZeroVector(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{vectors: map[string][]float32{"blank": {0, 0, 0}}}
	index := rag.New(testPassages(), embedder)

	hits, err := index.Query(context.Background(), "blank", 3)
	require.NoError(t, err)
	for _, h := range hits {
		assert.Zero(t, h.Score)
	}
}

// ---------------------------------------------------------------------------
// snapshot loading
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	snap := map[string]any{"passages": testPassages()}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	index, err := rag.Load(path, &stubEmbedder{})
	require.NoError(t, err)
	assert.Equal(t, 3, index.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := rag.Load(filepath.Join(t.TempDir(), "nope.json"), &stubEmbedder{})
	assert.Error(t, err)
}

func TestLoad_EmptySnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"passages":[]}`), 0o600))

	_, err := rag.Load(path, &stubEmbedder{})
	assert.ErrorContains(t, err, "no passages")
}
