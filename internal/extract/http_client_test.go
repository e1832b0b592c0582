package extract

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPClient_Extract_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)

		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://files.example.com/doc.pdf", req.FileURL)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(extractResponse{Text: "Hello world"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 0, discardLogger())
	text, err := client.Extract(context.Background(), "https://files.example.com/doc.pdf")

	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
}

func TestHTTPClient_Extract_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "document is encrypted"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 0, discardLogger())
	_, err := client.Extract(context.Background(), "https://files.example.com/doc.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestHTTPClient_Extract_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": ""}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 0, discardLogger())
	_, err := client.Extract(context.Background(), "https://files.example.com/doc.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestHTTPClient_Extract_Unreachable(t *testing.T) {
	// Closed server simulates an unreachable extraction service
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewHTTPClient(srv.URL, 0, discardLogger())
	_, err := client.Extract(context.Background(), "https://files.example.com/doc.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
