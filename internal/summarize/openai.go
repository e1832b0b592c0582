package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls an OpenAI-compatible chat completions API
type OpenAIProvider struct {
	baseURL     string
	apiKey      string
	model       string
	instruction string
	httpClient  *http.Client
	logger      *slog.Logger
}

// OpenAIConfig holds OpenAI provider settings
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Instruction string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewOpenAIProvider creates an OpenAI-backed summary provider
func NewOpenAIProvider(cfg *OpenAIConfig) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OpenAIProvider{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		instruction: cfg.Instruction,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      cfg.Logger,
	}
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return "openai"
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *openAIError `json:"error,omitempty"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// GenerateSummary calls the chat completions endpoint. HTTP 429 is
// classified as a capacity failure: code "insufficient_quota" maps to
// QUOTA_EXCEEDED, anything else on 429 to RATE_LIMIT.
func (p *OpenAIProvider) GenerateSummary(ctx context.Context, text string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.instruction},
			{Role: "user", Content: "Transform this document into an engaging, easy-to-read summary with contextually relevant emojis and proper markdown formatting:\n\n" + text},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError(KindOther, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to read response: %w", err))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil && resp.StatusCode == http.StatusOK {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		kind := KindRateLimit
		if completion.Error != nil {
			if code, ok := completion.Error.Code.(string); ok && code == "insufficient_quota" {
				kind = KindQuotaExceeded
			}
		}

		p.logger.Warn("OpenAI capacity failure",
			slog.String("kind", string(kind)),
			slog.String("model", p.model),
		)
		return "", NewProviderError(kind, fmt.Errorf("openai returned status %d", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("openai returned status %d", resp.StatusCode)
		if completion.Error != nil && completion.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, completion.Error.Message)
		}
		return "", NewProviderError(KindOther, fmt.Errorf("%s", msg))
	}

	if len(completion.Choices) == 0 {
		return "", NewProviderError(KindOther, fmt.Errorf("openai returned no choices"))
	}

	return completion.Choices[0].Message.Content, nil
}
