package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

// KnowledgeStoreConfig configures the knowledge-base table.
type KnowledgeStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// KnowledgeStore holds the curated advisory documents. The answer path only
// reads active documents; writes come from the offline ingestion pipeline.
type KnowledgeStore struct {
	config KnowledgeStoreConfig
	pool   *pgxpool.Pool
}

// NewKnowledgeStore connects and ensures the schema exists.
func NewKnowledgeStore(config KnowledgeStoreConfig) (*KnowledgeStore, error) {
	if config.TableName == "" {
		config.TableName = "knowledge_documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	ks := &KnowledgeStore{
		config: config,
		pool:   pool,
	}

	if err := ks.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return ks, nil
}

// NewKnowledgeStoreWithPool wraps an existing pool, sharing connections with
// the interaction store. Schema setup still runs.
func NewKnowledgeStoreWithPool(pool *pgxpool.Pool, config KnowledgeStoreConfig) (*KnowledgeStore, error) {
	if config.TableName == "" {
		config.TableName = "knowledge_documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}

	ks := &KnowledgeStore{
		config: config,
		pool:   pool,
	}

	if err := ks.initialize(); err != nil {
		return nil, err
	}

	return ks, nil
}

func (ks *KnowledgeStore) initialize() error {
	ctx := context.Background()

	_, err := ks.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			keywords TEXT[],
			category TEXT,
			source TEXT,
			embedding vector(%d),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`, ks.config.TableName, ks.config.VectorDim)

	_, err = ks.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	return nil
}

// Upsert writes ingested documents, replacing content, keywords and
// embedding on conflict. Existing is_active flags are preserved so a
// moderated-out document stays out after re-ingestion.
func (ks *KnowledgeStore) Upsert(ctx context.Context, docs []models.KnowledgeDocument) error {
	tx, err := ks.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, keywords, category, source, embedding, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			keywords = EXCLUDED.keywords,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			embedding = EXCLUDED.embedding`,
		ks.config.TableName)

	for _, doc := range docs {
		var embedding any
		if len(doc.Embedding) > 0 {
			embedding = pgvector.NewVector(doc.Embedding)
		}

		_, err = tx.Exec(ctx, stmt,
			doc.ID,
			sanitizeUTF8(doc.Title),
			sanitizeUTF8(doc.Content),
			doc.Keywords,
			doc.Category,
			doc.Source,
			embedding,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %v", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// ListActive returns every active document for in-memory ranking. The
// embedding column is intentionally left out of the select list; the
// answer path never reads it.
func (ks *KnowledgeStore) ListActive(ctx context.Context) ([]models.KnowledgeDocument, error) {
	query := fmt.Sprintf(`
		SELECT id, title, content, COALESCE(keywords, '{}'), COALESCE(category, ''), COALESCE(source, '')
		FROM %s
		WHERE is_active = TRUE`,
		ks.config.TableName)

	rows, err := ks.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var docs []models.KnowledgeDocument
	for rows.Next() {
		doc := models.KnowledgeDocument{IsActive: true}
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Content,
			&doc.Keywords,
			&doc.Category,
			&doc.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (ks *KnowledgeStore) Close() {
	if ks.pool != nil {
		ks.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
