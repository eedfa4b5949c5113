package domain

// RetrievalHit is one knowledge-base passage matched against a query.
// Ephemeral: produced per query, never persisted.
type RetrievalHit struct {
	Passage string  `json:"passage"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"` // cosine similarity, higher is closer
}
