package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend talks to the Gemini API via the official SDK. The client is
// created lazily on first Query because the SDK requires a context to dial.
type GeminiBackend struct {
	name   string
	apiKey string
	model  string

	initOnce sync.Once
	initErr  error
	client   *genai.Client
}

// NewGemini creates a Gemini backend from settings.
func NewGemini(settings Settings) *GeminiBackend {
	name := settings.Name
	if name == "" {
		name = "gemini"
	}

	model := settings.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiBackend{
		name:   name,
		apiKey: settings.APIKey,
		model:  model,
	}
}

func (b *GeminiBackend) Name() string {
	return b.name
}

func (b *GeminiBackend) init(ctx context.Context) error {
	b.initOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  b.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			b.initErr = fmt.Errorf("failed to create gemini client: %w", err)
			return
		}
		b.client = client
	})

	return b.initErr
}

func (b *GeminiBackend) Query(ctx context.Context, prompt string) (*Reply, error) {
	if b.apiKey == "" {
		return nil, fmt.Errorf("%s: API key not configured", b.name)
	}

	if err := b.init(ctx); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", b.name, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%s returned no text content", b.name)
	}

	modelVersion := resp.ModelVersion
	if modelVersion == "" {
		modelVersion = b.model
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Reply{
		Text:         text,
		ModelVersion: modelVersion,
		TokensUsed:   tokens,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
