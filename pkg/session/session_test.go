package session_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/session"
)

func TestResolve_Idempotent(t *testing.T) {
	m := session.NewManager(&session.MemoryStore{}, "")

	first, err := m.Resolve()
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)

	second, err := m.Resolve()
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestReset_RotatesToken(t *testing.T) {
	m := session.NewManager(&session.MemoryStore{}, "")

	before, err := m.Resolve()
	require.NoError(t, err)

	after, err := m.Reset()
	require.NoError(t, err)
	assert.NotEqual(t, before.SessionID, after.SessionID)

	// and the new token sticks
	again, err := m.Resolve()
	require.NoError(t, err)
	assert.Equal(t, after.SessionID, again.SessionID)
}

func TestResolve_AuthenticatedUserWins(t *testing.T) {
	m := session.NewManager(&session.MemoryStore{}, "farmer-42")

	ctx, err := m.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "farmer-42", ctx.Key())
	assert.NotEmpty(t, ctx.SessionID)
}

func TestContext_Key(t *testing.T) {
	assert.Equal(t, "user-1", session.Context{UserID: "user-1", SessionID: "anon-x"}.Key())
	assert.Equal(t, "anon-x", session.Context{SessionID: "anon-x"}.Key())
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := session.FileStore{Path: filepath.Join(t.TempDir(), "nested", "session")}

	// empty before first save
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("anon-abc"))

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "anon-abc", token)
}

func TestFileStore_SurvivesManagerRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")

	first, err := session.NewManager(session.FileStore{Path: path}, "").Resolve()
	require.NoError(t, err)

	second, err := session.NewManager(session.FileStore{Path: path}, "").Resolve()
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
}
