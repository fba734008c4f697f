package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/store"
)

func testConnString(t *testing.T) string {
	t.Helper()
	conn := os.Getenv("TEST_DATABASE_URL")
	if conn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return conn
}

func TestKnowledgeStore_UpsertAndListActive(t *testing.T) {
	ks, err := store.NewKnowledgeStore(store.KnowledgeStoreConfig{
		ConnString: testConnString(t),
		TableName:  fmt.Sprintf("test_knowledge_%d", time.Now().UnixNano()),
		VectorDim:  4,
	})
	require.NoError(t, err)
	defer ks.Close()

	ctx := context.Background()

	docs := []models.KnowledgeDocument{
		{
			ID:        "kd-1",
			Title:     "ধানের ব্লাস্ট রোগ",
			Content:   "ট্রাইসাইক্লাজল স্প্রে করুন",
			Keywords:  []string{"ব্লাস্ট", "ধান"},
			Category:  "disease",
			Source:    "BARI",
			Embedding: []float32{0.1, 0.2, 0.3, 0.4},
		},
		{
			ID:      "kd-2",
			Title:   "সার পরামর্শ",
			Content: "ইউরিয়া কম দিন",
			// no embedding yet: column stays NULL
		},
	}

	require.NoError(t, ks.Upsert(ctx, docs))

	// Upsert again with updated content
	docs[0].Content = "আক্রান্ত পাতা পুড়িয়ে ফেলুন"
	require.NoError(t, ks.Upsert(ctx, docs))

	active, err := ks.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	byID := map[string]models.KnowledgeDocument{}
	for _, doc := range active {
		byID[doc.ID] = doc
	}
	assert.Equal(t, "আক্রান্ত পাতা পুড়িয়ে ফেলুন", byID["kd-1"].Content)
	assert.Equal(t, []string{"ব্লাস্ট", "ধান"}, byID["kd-1"].Keywords)
	assert.True(t, byID["kd-2"].IsActive)
	assert.Empty(t, byID["kd-2"].Keywords)
}

func TestInteractionStore_RecordHistoryFeedback(t *testing.T) {
	is, err := store.NewInteractionStore(store.InteractionStoreConfig{
		ConnString: testConnString(t),
		TableName:  fmt.Sprintf("test_interactions_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	defer is.Close()

	ctx := context.Background()
	sessionID := "anon-test-session"

	first, err := is.Record(ctx, models.Interaction{
		SessionID:      sessionID,
		Query:          "ধানে ব্লাস্ট হলে কী করব?",
		Response:       "ট্রাইসাইক্লাজল স্প্রে করুন",
		DocumentsUsed:  2,
		ResponseTimeMS: 850,
		CreatedAt:      time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := is.Record(ctx, models.Interaction{
		SessionID: sessionID,
		Query:     "কত দিন পরপর স্প্রে করব?",
		Response:  "সাত দিন পরপর",
	})
	require.NoError(t, err)

	// newest first, scoped to the session
	history, err := is.History(ctx, sessionID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Nil(t, history[0].FeedbackRating)

	// feedback lands and can be overwritten
	require.NoError(t, is.UpdateFeedback(ctx, first.ID, 4))
	require.NoError(t, is.UpdateFeedback(ctx, first.ID, 5))

	history, err = is.History(ctx, sessionID, 10)
	require.NoError(t, err)
	require.NotNil(t, history[1].FeedbackRating)
	assert.Equal(t, 5, *history[1].FeedbackRating)

	// other sessions see nothing
	other, err := is.History(ctx, "anon-other", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInteractionStore_FeedbackNotFound(t *testing.T) {
	is, err := store.NewInteractionStore(store.InteractionStoreConfig{
		ConnString: testConnString(t),
		TableName:  fmt.Sprintf("test_interactions_nf_%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	defer is.Close()

	err = is.UpdateFeedback(context.Background(), "no-such-id", 3)
	assert.ErrorIs(t, err, store.ErrInteractionNotFound)
}
