package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

// ErrInteractionNotFound is returned when feedback targets an unknown
// interaction id.
var ErrInteractionNotFound = errors.New("interaction not found")

// InteractionStoreConfig configures the interactions table.
type InteractionStoreConfig struct {
	ConnString string
	TableName  string
}

// InteractionStore persists one row per question/answer exchange, keyed by
// the session-or-user identity. Rows are never deleted here; each insert is
// independent so concurrent questions need no coordination.
type InteractionStore struct {
	config InteractionStoreConfig
	pool   *pgxpool.Pool
}

// NewInteractionStore connects and ensures the schema exists.
func NewInteractionStore(config InteractionStoreConfig) (*InteractionStore, error) {
	if config.TableName == "" {
		config.TableName = "interactions"
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	is := &InteractionStore{
		config: config,
		pool:   pool,
	}

	if err := is.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return is, nil
}

// NewInteractionStoreWithPool wraps an existing pool.
func NewInteractionStoreWithPool(pool *pgxpool.Pool, config InteractionStoreConfig) (*InteractionStore, error) {
	if config.TableName == "" {
		config.TableName = "interactions"
	}

	is := &InteractionStore{
		config: config,
		pool:   pool,
	}

	if err := is.initialize(); err != nil {
		return nil, err
	}

	return is, nil
}

func (is *InteractionStore) initialize() error {
	ctx := context.Background()

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			query TEXT NOT NULL,
			response TEXT NOT NULL,
			sources TEXT,
			documents_used INTEGER NOT NULL DEFAULT 0,
			response_time_ms BIGINT NOT NULL DEFAULT 0,
			feedback_rating INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, is.config.TableName)

	_, err := is.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_session_created_idx
		ON %s (session_id, created_at DESC)`,
		is.config.TableName, is.config.TableName)

	_, err = is.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Record inserts one exchange and returns it with id and timestamp filled.
func (is *InteractionStore) Record(ctx context.Context, in models.Interaction) (models.Interaction, error) {
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, query, response, sources, documents_used, response_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		is.config.TableName)

	_, err := is.pool.Exec(ctx, stmt,
		in.ID,
		in.SessionID,
		in.Query,
		in.Response,
		in.Sources,
		in.DocumentsUsed,
		in.ResponseTimeMS,
		in.CreatedAt,
	)
	if err != nil {
		return models.Interaction{}, fmt.Errorf("failed to record interaction: %v", err)
	}

	return in, nil
}

// History returns the identity's most recent exchanges, newest first.
func (is *InteractionStore) History(ctx context.Context, sessionID string, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT id, session_id, query, response, sources, documents_used, response_time_ms, feedback_rating, created_at
		FROM %s
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		is.config.TableName)

	rows, err := is.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %v", err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var in models.Interaction
		err := rows.Scan(
			&in.ID,
			&in.SessionID,
			&in.Query,
			&in.Response,
			&in.Sources,
			&in.DocumentsUsed,
			&in.ResponseTimeMS,
			&in.FeedbackRating,
			&in.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		interactions = append(interactions, in)
	}

	return interactions, rows.Err()
}

// UpdateFeedback sets the rating on one interaction. A later submission
// overwrites an earlier one; the rating is never cleared here.
func (is *InteractionStore) UpdateFeedback(ctx context.Context, interactionID string, rating int) error {
	stmt := fmt.Sprintf(`UPDATE %s SET feedback_rating = $1 WHERE id = $2`, is.config.TableName)

	tag, err := is.pool.Exec(ctx, stmt, rating, interactionID)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInteractionNotFound
	}

	return nil
}

func (is *InteractionStore) Close() {
	if is.pool != nil {
		is.pool.Close()
	}
}
