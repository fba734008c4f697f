package types

import (
	"context"

	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

// Core interfaces

// KnowledgeStore is the read side of the knowledge base used when answering.
type KnowledgeStore interface {
	ListActive(ctx context.Context) ([]models.KnowledgeDocument, error)
	Upsert(ctx context.Context, docs []models.KnowledgeDocument) error
	Close()
}

// InteractionStore persists question/answer exchanges and feedback.
type InteractionStore interface {
	Record(ctx context.Context, in models.Interaction) (models.Interaction, error)
	History(ctx context.Context, sessionID string, limit int) ([]models.Interaction, error)
	UpdateFeedback(ctx context.Context, interactionID string, rating int) error
}

// Completer sends one system+user exchange to the language-model gateway.
// fallback is true when the call succeeded but the body carried no usable
// answer and a canned reply was substituted.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, question string) (answer string, fallback bool, err error)
}

// Embedder produces document embeddings during ingestion.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
