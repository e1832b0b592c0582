package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoangvq/summarize-be/internal/domain"
)

// HTTPClient calls an external text-extraction service over HTTP.
// The service fetches the document at file_url and returns its full text.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an extraction service client
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type extractRequest struct {
	FileURL string `json:"file_url"`
}

type extractResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Extract requests the document text from the extraction service. Any
// transport error, non-2xx status, or empty text is an extraction failure.
func (c *HTTPClient) Extract(ctx context.Context, fileURL string) (string, error) {
	body, err := json.Marshal(extractRequest{FileURL: fileURL})
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode request: %v", domain.ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Extraction request failed",
			slog.String("file_url", fileURL),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", domain.ErrExtractionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Extraction service returned an error",
			slog.String("file_url", fileURL),
			slog.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("%w: extraction service returned status %d", domain.ErrExtractionFailed, resp.StatusCode)
	}

	var extractResp extractResponse
	if err := json.Unmarshal(respBody, &extractResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrExtractionFailed, err)
	}

	if extractResp.Error != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrExtractionFailed, extractResp.Error)
	}

	if extractResp.Text == "" {
		return "", fmt.Errorf("%w: extraction service returned empty text", domain.ErrExtractionFailed)
	}

	c.logger.Debug("Document text extracted",
		slog.String("file_url", fileURL),
		slog.Int("text_length", len(extractResp.Text)),
	)

	return extractResp.Text, nil
}
