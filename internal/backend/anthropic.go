package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// AnthropicBackend talks to the Anthropic messages API.
type AnthropicBackend struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewAnthropic creates an Anthropic messages backend from settings.
func NewAnthropic(settings Settings) *AnthropicBackend {
	name := settings.Name
	if name == "" {
		name = "anthropic"
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	model := settings.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicBackend{
		name:    name,
		apiKey:  settings.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: settings.Timeout,
		},
	}
}

func (b *AnthropicBackend) Name() string {
	return b.name
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b *AnthropicBackend) Query(ctx context.Context, prompt string) (*Reply, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("%s: API key not configured", b.name)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.httpClient.Timeout)
		defer cancel()
	}

	reqBody := anthropicRequest{
		Model:     b.model,
		MaxTokens: 2048,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request failed with status %d: %s", b.name, resp.StatusCode, string(body))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(body, &anthResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if anthResp.Error != nil {
		return nil, fmt.Errorf("%s API error: %s", b.name, anthResp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range anthResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return nil, fmt.Errorf("%s returned no text content", b.name)
	}

	modelVersion := anthResp.Model
	if modelVersion == "" {
		modelVersion = b.model
	}

	return &Reply{
		Text:         strings.TrimSpace(sb.String()),
		ModelVersion: modelVersion,
		TokensUsed:   anthResp.Usage.InputTokens + anthResp.Usage.OutputTokens,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
