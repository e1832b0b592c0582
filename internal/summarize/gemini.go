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

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Google Gemini generateContent API
type GeminiProvider struct {
	baseURL     string
	apiKey      string
	model       string
	instruction string
	httpClient  *http.Client
	logger      *slog.Logger
}

// GeminiConfig holds Gemini provider settings
type GeminiConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Instruction string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewGeminiProvider creates a Gemini-backed summary provider
func NewGeminiProvider(cfg *GeminiConfig) *GeminiProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &GeminiProvider{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		instruction: cfg.Instruction,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      cfg.Logger,
	}
}

// Name returns the provider identifier
func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateSummary calls generateContent. HTTP 429 (RESOURCE_EXHAUSTED) is
// classified as a capacity failure.
func (p *GeminiProvider) GenerateSummary(ctx context.Context, text string) (string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: p.instruction}},
		},
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: "Transform this document into an engaging, easy-to-read summary with contextually relevant emojis and proper markdown formatting:\n\n" + text}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to encode request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError(KindOther, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to read response: %w", err))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil && resp.StatusCode == http.StatusOK {
		return "", NewProviderError(KindOther, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		kind := KindRateLimit
		if genResp.Error != nil && strings.Contains(genResp.Error.Message, "quota") {
			kind = KindQuotaExceeded
		}

		p.logger.Warn("Gemini capacity failure",
			slog.String("kind", string(kind)),
			slog.String("model", p.model),
		)
		return "", NewProviderError(kind, fmt.Errorf("gemini returned status %d", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("gemini returned status %d", resp.StatusCode)
		if genResp.Error != nil && genResp.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, genResp.Error.Message)
		}
		return "", NewProviderError(KindOther, fmt.Errorf("%s", msg))
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", NewProviderError(KindOther, fmt.Errorf("gemini returned no candidates"))
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return sb.String(), nil
}
