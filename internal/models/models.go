package models

import "time"

// KnowledgeDocument is one curated advisory document in the knowledge base.
// Documents are written by the offline ingestion pipeline and read-only to
// the answer path.
type KnowledgeDocument struct {
	ID        string
	Title     string
	Content   string
	Keywords  []string
	Category  string
	Source    string
	Embedding []float32 // populated by ingestion, not consulted when ranking
	IsActive  bool
}

// RankedDocument pairs a document with its per-query relevance score.
// Scores are transient and never persisted.
type RankedDocument struct {
	KnowledgeDocument
	Score int
}

// Page is one raw page fetched by the ingestion scraper, before cleaning
// and keyword extraction turn it into a KnowledgeDocument.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Interaction is one recorded question/answer exchange.
type Interaction struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	Sources        *string   `json:"sources"`
	DocumentsUsed  int       `json:"documents_used"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	FeedbackRating *int      `json:"feedback_rating"`
	CreatedAt      time.Time `json:"created_at"`
}

// AskResult is the answer returned to the caller of Engine.Ask.
type AskResult struct {
	Answer         string  `json:"answer"`
	Sources        *string `json:"sources"`
	DocumentsUsed  int     `json:"documents_used"`
	ResponseTimeMS int64   `json:"response_time_ms"`
	Fallback       bool    `json:"fallback,omitempty"`
}
