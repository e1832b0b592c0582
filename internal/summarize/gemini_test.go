package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func newGemini(serverURL string) *GeminiProvider {
	return NewGeminiProvider(&GeminiConfig{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		Instruction: "summarize",
		Logger:      discardLogger(),
	})
}

func TestGeminiProvider_GenerateSummary_Success(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{
		"candidates": [{"content": {"parts": [{"text": "Summary "}, {"text": "B"}]}}]
	}`)
	defer srv.Close()

	summary, err := newGemini(srv.URL).GenerateSummary(context.Background(), "Hello world")

	require.NoError(t, err)
	assert.Equal(t, "Summary B", summary)
}

func TestGeminiProvider_GenerateSummary_RateLimit(t *testing.T) {
	srv := newGeminiServer(t, http.StatusTooManyRequests, `{
		"error": {"code": 429, "message": "Resource exhausted", "status": "RESOURCE_EXHAUSTED"}
	}`)
	defer srv.Close()

	_, err := newGemini(srv.URL).GenerateSummary(context.Background(), "Hello world")

	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindRateLimit, provErr.Kind)
	assert.True(t, IsCapacityError(err))
}

func TestGeminiProvider_GenerateSummary_QuotaExceeded(t *testing.T) {
	srv := newGeminiServer(t, http.StatusTooManyRequests, `{
		"error": {"code": 429, "message": "You exceeded your quota for this model", "status": "RESOURCE_EXHAUSTED"}
	}`)
	defer srv.Close()

	_, err := newGemini(srv.URL).GenerateSummary(context.Background(), "Hello world")

	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, KindQuotaExceeded, provErr.Kind)
}

func TestGeminiProvider_GenerateSummary_ServerError(t *testing.T) {
	srv := newGeminiServer(t, http.StatusInternalServerError, `{
		"error": {"code": 500, "message": "Internal error", "status": "INTERNAL"}
	}`)
	defer srv.Close()

	_, err := newGemini(srv.URL).GenerateSummary(context.Background(), "Hello world")

	require.Error(t, err)
	assert.False(t, IsCapacityError(err))
}

func TestGeminiProvider_GenerateSummary_NoCandidates(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"candidates": []}`)
	defer srv.Close()

	_, err := newGemini(srv.URL).GenerateSummary(context.Background(), "Hello world")

	require.Error(t, err)
	assert.False(t, IsCapacityError(err))
}
