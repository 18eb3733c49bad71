package backend

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

const (
	openaiBaseURL     = "https://api.openai.com/v1"
	perplexityBaseURL = "https://api.perplexity.ai"

	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIBackend talks to any OpenAI-compatible chat completions endpoint.
// Perplexity exposes the same wire shape, so the same client serves both
// with a different base URL and model.
type OpenAIBackend struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAI creates a chat-completions backend from settings.
func NewOpenAI(settings Settings) *OpenAIBackend {
	name := settings.Name
	if name == "" {
		name = "openai"
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = openaiBaseURL
	}

	model := settings.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIBackend{
		name:    name,
		apiKey:  settings.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: settings.Timeout,
		},
	}
}

func (b *OpenAIBackend) Name() string {
	return b.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Query sends one prompt as a single-turn conversation. Rate-limit responses
// are retried with exponential backoff before giving up.
func (b *OpenAIBackend) Query(ctx context.Context, prompt string) (*Reply, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("%s: API key not configured", b.name)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.httpClient.Timeout)
		defer cancel()
	}

	reqBody := chatRequest{
		Model:       b.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   2048,
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			slog.Debug("retrying backend request", "backend", b.name, "attempt", i)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+b.apiKey)

		resp, err := b.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%s request failed with status %d: %s", b.name, resp.StatusCode, string(body))
		}

		var chatResp chatResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if chatResp.Error != nil {
			return nil, fmt.Errorf("%s API error: %s", b.name, chatResp.Error.Message)
		}

		if len(chatResp.Choices) == 0 {
			return nil, fmt.Errorf("%s returned no completion", b.name)
		}

		modelVersion := chatResp.Model
		if modelVersion == "" {
			modelVersion = b.model
		}

		return &Reply{
			Text:         strings.TrimSpace(chatResp.Choices[0].Message.Content),
			ModelVersion: modelVersion,
			TokensUsed:   chatResp.Usage.TotalTokens,
			LatencyMs:    time.Since(start).Milliseconds(),
		}, nil
	}

	return nil, fmt.Errorf("%s: max retries exceeded: %w", b.name, lastErr)
}
