package backend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend issues a single natural-language query against one AI answer engine.
// Implementations must be safe for concurrent use: the runner fans out many
// queries against the same Backend at once.
type Backend interface {
	// Name returns the stable identifier used in results and reports
	// (e.g. "openai", "gemini").
	Name() string

	// Query sends one prompt and returns the engine's reply. Transport and
	// provider errors are returned as errors; the caller records them per
	// prompt/backend pair rather than aborting the run.
	Query(ctx context.Context, prompt string) (*Reply, error)
}

// Reply is a single raw answer from a backend.
type Reply struct {
	Text         string
	ModelVersion string
	TokensUsed   int
	LatencyMs    int64
}

// Settings holds the per-backend connection configuration, typically loaded
// from .beacon.yaml or environment variables.
type Settings struct {
	Kind    string        `yaml:"kind" json:"kind"`
	Name    string        `yaml:"name,omitempty" json:"name,omitempty"`
	APIKey  string        `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Model   string        `yaml:"model,omitempty" json:"model,omitempty"`
	// Timeout is set programmatically from the project config's
	// defaults.timeout (seconds); yaml.v3 cannot decode duration strings.
	Timeout time.Duration `yaml:"-" json:"timeout,omitempty"`
}

// DefaultTimeout is applied when Settings.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// New constructs a Backend from settings. The kind selects the implementation;
// unknown kinds are a configuration error.
func New(settings Settings) (Backend, error) {
	if settings.Timeout == 0 {
		settings.Timeout = DefaultTimeout
	}

	switch strings.ToLower(settings.Kind) {
	case "openai":
		return NewOpenAI(settings), nil
	case "perplexity":
		if settings.BaseURL == "" {
			settings.BaseURL = perplexityBaseURL
		}
		if settings.Name == "" {
			settings.Name = "perplexity"
		}
		return NewOpenAI(settings), nil
	case "anthropic":
		return NewAnthropic(settings), nil
	case "gemini":
		return NewGemini(settings), nil
	case "copilot":
		return NewCopilot(settings), nil
	case "mock":
		return NewMock(settings.Name), nil
	default:
		return nil, fmt.Errorf("unknown backend kind %q", settings.Kind)
	}
}
