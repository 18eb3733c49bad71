package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotBackend runs prompts through the GitHub Copilot CLI. Each query gets
// its own short-lived session; the underlying client process is started once
// and shared.
type CopilotBackend struct {
	name    string
	modelID string

	client    copilotClient
	startOnce sync.Once
	startErr  error
}

// copilotSession is just an interface over [*copilot.Session]
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
	SessionID() string
}

// copilotClient is just an interface over [*copilot.Client]
type copilotClient interface {
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Start(ctx context.Context) error
	Stop() error
}

type copilotClientWrapper struct {
	inner *copilot.Client
}

var (
	_ copilotClient  = (*copilotClientWrapper)(nil)
	_ copilotSession = (*copilotSessionWrapper)(nil)
)

func (w *copilotClientWrapper) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := w.inner.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return &copilotSessionWrapper{inner: sess}, nil
}

// copilotSessionWrapper forwards to [copilot.Session]. It only has to exist
// because [copilot.Session.SessionID] is a field, so we can't represent it in
// an interface.
type copilotSessionWrapper struct {
	inner *copilot.Session
}

func (w *copilotSessionWrapper) On(handler copilot.SessionEventHandler) func() {
	return w.inner.On(handler)
}

func (w *copilotSessionWrapper) SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error) {
	return w.inner.SendAndWait(ctx, options)
}

func (w *copilotSessionWrapper) SessionID() string {
	return w.inner.SessionID
}

func (w *copilotClientWrapper) Start(ctx context.Context) error {
	return w.inner.Start(ctx)
}

func (w *copilotClientWrapper) Stop() error {
	return w.inner.Stop()
}

// NewCopilot creates a Copilot CLI backend from settings.
func NewCopilot(settings Settings) *CopilotBackend {
	name := settings.Name
	if name == "" {
		name = "copilot"
	}

	return &CopilotBackend{
		name:    name,
		modelID: settings.Model,
		client: &copilotClientWrapper{
			inner: copilot.NewClient(&copilot.ClientOptions{
				LogLevel:  "error",
				AutoStart: copilot.Bool(false),
			}),
		},
	}
}

// NewCopilotWithClient is used by tests to substitute a fake client.
func NewCopilotWithClient(name, modelID string, client copilotClient) *CopilotBackend {
	if name == "" {
		name = "copilot"
	}
	return &CopilotBackend{name: name, modelID: modelID, client: client}
}

func (b *CopilotBackend) Name() string {
	return b.name
}

func (b *CopilotBackend) start(ctx context.Context) error {
	b.startOnce.Do(func() {
		b.startErr = b.client.Start(ctx)
	})
	return b.startErr
}

func (b *CopilotBackend) Query(ctx context.Context, prompt string) (*Reply, error) {
	if err := b.start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start copilot client: %w", err)
	}

	start := time.Now()

	session, err := b.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: b.modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var parts []string
	unsubscribe := session.On(func(event copilot.SessionEvent) {
		switch event.Type {
		case copilot.AssistantMessage, copilot.AssistantMessageDelta:
			if event.Data.Content != nil {
				parts = append(parts, *event.Data.Content)
			}
		}
	})
	defer unsubscribe()

	if _, err := session.SendAndWait(ctx, copilot.MessageOptions{Prompt: prompt}); err != nil {
		return nil, fmt.Errorf("session failed: %w", err)
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return nil, fmt.Errorf("%s returned no output", b.name)
	}

	return &Reply{
		Text:         text,
		ModelVersion: b.modelID,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Shutdown stops the underlying CLI process.
func (b *CopilotBackend) Shutdown() error {
	return b.client.Stop()
}
