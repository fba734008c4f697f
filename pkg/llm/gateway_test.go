package llm_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yasar-sys/agri-shokti-bangla-sub001/pkg/llm"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*llm.Gateway, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw, err := llm.NewGateway(llm.GatewayConfig{
		BaseURL: srv.URL + "/v1",
		APIKey:  "test-key",
		Model:   "test-model",
	})
	require.NoError(t, err)

	return gw, srv
}

func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestNewGateway_RequiresAPIKey(t *testing.T) {
	_, err := llm.NewGateway(llm.GatewayConfig{})
	assert.Error(t, err)
}

func TestComplete_Success(t *testing.T) {
	var gotAuth string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		jsonResponse(http.StatusOK, `{"id":"1","choices":[{"message":{"role":"assistant","content":"ইউরিয়া কম দিন"}}]}`)(w, r)
	})

	answer, fallback, err := gw.Complete(context.Background(), "system", "সার কত দেব?")

	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, "ইউরিয়া কম দিন", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestComplete_RateLimited(t *testing.T) {
	gw, _ := newTestGateway(t, jsonResponse(http.StatusTooManyRequests,
		`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))

	_, _, err := gw.Complete(context.Background(), "system", "q")

	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestComplete_QuotaExhausted(t *testing.T) {
	gw, _ := newTestGateway(t, jsonResponse(http.StatusPaymentRequired,
		`{"error":{"message":"insufficient balance","type":"insufficient_quota"}}`))

	_, _, err := gw.Complete(context.Background(), "system", "q")

	assert.ErrorIs(t, err, llm.ErrQuotaExhausted)
}

func TestComplete_UpstreamError(t *testing.T) {
	gw, _ := newTestGateway(t, jsonResponse(http.StatusBadGateway,
		`{"error":{"message":"upstream broke","type":"server_error"}}`))

	_, _, err := gw.Complete(context.Background(), "system", "q")

	var upstream *llm.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestComplete_NonJSONErrorBodyStillClassified(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("too many requests"))
	})

	_, _, err := gw.Complete(context.Background(), "system", "q")

	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestComplete_MissingChoicesFallsBack(t *testing.T) {
	gw, _ := newTestGateway(t, jsonResponse(http.StatusOK, `{"id":"1","choices":[]}`))

	answer, fallback, err := gw.Complete(context.Background(), "system", "q")

	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, llm.FallbackAnswer, answer)
}

func TestComplete_EmptyContentFallsBack(t *testing.T) {
	gw, _ := newTestGateway(t, jsonResponse(http.StatusOK,
		`{"id":"1","choices":[{"message":{"role":"assistant","content":"  "}}]}`))

	answer, fallback, err := gw.Complete(context.Background(), "system", "q")

	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, llm.FallbackAnswer, answer)
}

func TestComplete_TransportError(t *testing.T) {
	gw, srv := newTestGateway(t, jsonResponse(http.StatusOK, `{}`))
	srv.Close()

	_, _, err := gw.Complete(context.Background(), "system", "q")

	assert.ErrorIs(t, err, llm.ErrTransport)
	assert.NotErrorIs(t, err, llm.ErrRateLimited)
}
