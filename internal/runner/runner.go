// Package runner fans the prompt matrix out across every configured backend
// and collects one result per prompt/backend pair.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/parser"
)

// DefaultConcurrency bounds in-flight queries per backend.
const DefaultConcurrency = 5

// ErrNoBackends is returned when a run is started with no backends configured.
var ErrNoBackends = errors.New("no backends configured")

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStart     EventType = "run_start"
	EventRunComplete  EventType = "run_complete"
	EventPromptStart  EventType = "prompt_start"
	EventPromptResult EventType = "prompt_result"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	Current    int
	Total      int
	Backend    string
	Dimension  models.Dimension
	Persona    string
	Topic      string
	PromptText string
	Mentioned  bool
	Position   *int
	Failed     bool
}

// Runner executes the prompt matrix. Backends run fully in parallel; within a
// backend, at most Concurrency queries are in flight at once.
type Runner struct {
	backends    []backend.Backend
	parser      *parser.Parser
	concurrency int64

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds in-flight queries per backend.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = int64(n)
		}
	}
}

// New creates a runner over the given backends. The parser may be nil, in
// which case replies are collected without entity extraction.
func New(backends []backend.Backend, p *parser.Parser, opts ...Option) *Runner {
	r := &Runner{
		backends:    backends,
		parser:      p,
		concurrency: DefaultConcurrency,
		listeners:   []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run executes every prompt against every backend and returns one result per
// pair. Individual query or parse failures are recorded in the result rather
// than aborting the run. On cancellation the results collected so far are
// returned along with the context error.
func (r *Runner) Run(ctx context.Context, profile *models.BrandProfile, prompts []models.Prompt) ([]models.PromptResult, error) {
	if len(r.backends) == 0 {
		return nil, ErrNoBackends
	}

	total := len(prompts) * len(r.backends)
	knownEntities := profile.KnownEntityNames()
	entityType := profile.EntityType
	if entityType == "" {
		entityType = "company"
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunStart, Total: total})

	// resultsMu guards results, started, and completed. Start and completion
	// events draw from separate counters so each stream is strictly
	// monotonic on its own.
	var resultsMu sync.Mutex
	results := make([]models.PromptResult, 0, total)
	started := 0
	completed := 0

	var wg sync.WaitGroup

	for _, be := range r.backends {
		sem := semaphore.NewWeighted(r.concurrency)

		for _, prompt := range prompts {
			wg.Add(1)
			go func(be backend.Backend, prompt models.Prompt) {
				defer wg.Done()

				if err := sem.Acquire(ctx, 1); err != nil {
					return
				}
				defer sem.Release(1)

				resultsMu.Lock()
				started++
				current := started
				resultsMu.Unlock()

				r.notifyProgress(ProgressEvent{
					EventType:  EventPromptStart,
					Current:    current,
					Total:      total,
					Backend:    be.Name(),
					Dimension:  prompt.Dimension,
					Persona:    prompt.Persona,
					Topic:      prompt.Topic,
					PromptText: prompt.Text,
				})

				result := r.runSingle(ctx, be, prompt, entityType, knownEntities)

				resultsMu.Lock()
				results = append(results, result)
				completed++
				current = completed
				resultsMu.Unlock()

				r.notifyProgress(ProgressEvent{
					EventType: EventPromptResult,
					Current:   current,
					Total:     total,
					Backend:   be.Name(),
					Dimension: prompt.Dimension,
					Persona:   prompt.Persona,
					Topic:     prompt.Topic,
					Mentioned: result.BrandMentioned,
					Position:  result.Position,
					Failed:    result.Error != "",
				})
			}(be, prompt)
		}
	}

	wg.Wait()

	r.notifyProgress(ProgressEvent{EventType: EventRunComplete, Current: completed, Total: total})

	slog.Info("audit run complete",
		"results", len(results),
		"backends", len(r.backends),
		"prompts", len(prompts))

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runSingle(ctx context.Context, be backend.Backend, prompt models.Prompt, entityType string, knownEntities []string) models.PromptResult {
	result := models.PromptResult{
		PromptID:           prompt.ID,
		PromptText:         prompt.Text,
		Dimension:          prompt.Dimension,
		Persona:            prompt.Persona,
		Topic:              prompt.Topic,
		Weight:             prompt.Weight,
		Backend:            be.Name(),
		RecommendationType: models.RecommendationNotMentioned,
		Sentiment:          models.SentimentNeutral,
	}

	reply, err := be.Query(ctx, prompt.Text)
	if err != nil {
		slog.Warn("prompt query failed", "prompt", prompt.ID, "backend", be.Name(), "error", err)
		result.Error = err.Error()
		return result
	}

	result.RawReply = reply.Text
	result.ModelVersion = reply.ModelVersion
	result.LatencyMs = reply.LatencyMs
	result.TokensUsed = reply.TokensUsed

	if r.parser == nil {
		return result
	}

	mentions := r.parser.Parse(ctx, prompt.Text, reply.Text, entityType, knownEntities)
	result.Mentions = mentions

	// Find our brand among the mentions.
	companyLower := models.NormalizeEntityName(knownEntities[0])
	for _, m := range mentions {
		if matchesBrand(m.NormalizedName, companyLower) {
			result.BrandMentioned = true
			result.Position = m.Position
			result.RecommendationType = m.RecommendationType
			result.Sentiment = m.Sentiment
			result.Confidence = m.Confidence
			result.Context = m.Context
			break
		}
	}

	return result
}

func matchesBrand(normalized, companyLower string) bool {
	if normalized == companyLower {
		return true
	}
	if normalized == "" || companyLower == "" {
		return false
	}
	return strings.Contains(normalized, companyLower) || strings.Contains(companyLower, normalized)
}
