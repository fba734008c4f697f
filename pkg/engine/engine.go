package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/types"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/llm"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/prompt"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/ranker"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/session"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/store"
)

// ErrEmptyQuestion is returned before any network or storage call when the
// question is empty or whitespace-only.
var ErrEmptyQuestion = errors.New("question is empty")

// ErrInvalidRating is returned when a feedback rating falls outside 1..5.
// Caller contract violation: rejected before any storage call.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// User-facing messages. Only the rate-limit case carries a machine-readable
// type; everything else is a human-readable string.
const (
	msgRateLimited    = "এই মুহূর্তে অনেক প্রশ্ন আসছে। একটু অপেক্ষা করে আবার চেষ্টা করুন।"
	msgQuotaExhausted = "সেবাটি সাময়িকভাবে বন্ধ আছে। কিছুক্ষণ পরে আবার চেষ্টা করুন।"
	msgGenericFailure = "দুঃখিত, এখন উত্তর আনা গেল না। অনুগ্রহ করে আবার চেষ্টা করুন।"
)

// UserError is the only error shape that crosses into the UI layer. Type is
// "rate_limit" for 429s and empty otherwise.
type UserError struct {
	Message string `json:"error"`
	Type    string `json:"type,omitempty"`
}

func (e *UserError) Error() string {
	return e.Message
}

// Config tunes the orchestrator.
type Config struct {
	RankLimit    int    // documents injected as context, default 5
	HistoryLimit int    // default history page size, default 20
	BasePrompt   string // system prompt base, defaulted by the prompt package
}

// Engine composes ranking, prompting, the gateway call and recording into
// the ask/history/feedback cycle. Each Ask is independent and stateless
// apart from the session context the caller threads in.
type Engine struct {
	config       Config
	knowledge    types.KnowledgeStore
	interactions types.InteractionStore
	gateway      types.Completer
	logger       *slog.Logger
}

// New creates an engine.
func New(config Config, knowledge types.KnowledgeStore, interactions types.InteractionStore, gateway types.Completer, logger *slog.Logger) *Engine {
	if config.RankLimit <= 0 {
		config.RankLimit = ranker.DefaultLimit
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 20
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		config:       config,
		knowledge:    knowledge,
		interactions: interactions,
		gateway:      gateway,
		logger:       logger,
	}
}

// Ask runs one question end to end: validate, rank, call the gateway,
// record, return. Gateway failures come back as *UserError and leave no
// interaction row; a recording failure is logged and the answer is still
// returned.
func (e *Engine) Ask(ctx context.Context, sess session.Context, question string) (*models.AskResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()

	docs, err := e.knowledge.ListActive(ctx)
	if err != nil {
		// Degrade to an ungrounded answer rather than failing the question.
		e.logger.Warn("knowledge base unavailable, answering ungrounded", "error", err)
		docs = nil
	}

	ranked := ranker.Rank(question, docs, e.config.RankLimit)
	contextBlock, _ := prompt.AssembleContext(ranked)
	systemPrompt := prompt.BuildSystem(e.config.BasePrompt, contextBlock)

	answer, fallback, err := e.gateway.Complete(ctx, systemPrompt, question)
	if err != nil {
		e.logger.Error("gateway call failed", "error", err, "session", sess.Key())
		return nil, translateGatewayError(err)
	}

	elapsed := time.Since(start).Milliseconds()
	sources := prompt.Sources(ranked)

	result := &models.AskResult{
		Answer:         answer,
		Sources:        sources,
		DocumentsUsed:  len(ranked),
		ResponseTimeMS: elapsed,
		Fallback:       fallback,
	}

	// Recording is awaited but never blocks the answer.
	_, err = e.interactions.Record(ctx, models.Interaction{
		SessionID:      sess.Key(),
		Query:          question,
		Response:       answer,
		Sources:        sources,
		DocumentsUsed:  len(ranked),
		ResponseTimeMS: elapsed,
	})
	if err != nil {
		e.logger.Warn("failed to record interaction", "error", err, "session", sess.Key())
	}

	return result, nil
}

// History returns the identity's recent exchanges, newest first.
func (e *Engine) History(ctx context.Context, sess session.Context, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = e.config.HistoryLimit
	}

	interactions, err := e.interactions.History(ctx, sess.Key(), limit)
	if err != nil {
		e.logger.Error("failed to fetch history", "error", err, "session", sess.Key())
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	return interactions, nil
}

// SubmitFeedback stores a 1..5 rating on one interaction. Out-of-range
// ratings are rejected before any storage call.
func (e *Engine) SubmitFeedback(ctx context.Context, interactionID string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	err := e.interactions.UpdateFeedback(ctx, interactionID, rating)
	if errors.Is(err, store.ErrInteractionNotFound) {
		return err
	}
	if err != nil {
		e.logger.Error("failed to submit feedback", "error", err, "interaction", interactionID)
		return fmt.Errorf("failed to submit feedback: %w", err)
	}

	return nil
}

func translateGatewayError(err error) *UserError {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return &UserError{Message: msgRateLimited, Type: "rate_limit"}
	case errors.Is(err, llm.ErrQuotaExhausted):
		return &UserError{Message: msgQuotaExhausted}
	default:
		// upstream status or transport failure
		return &UserError{Message: msgGenericFailure}
	}
}
