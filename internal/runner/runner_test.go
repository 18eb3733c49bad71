package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconlabs/beacon/internal/backend"
	"github.com/beaconlabs/beacon/internal/models"
	"github.com/beaconlabs/beacon/internal/parser"
)

func testProfile() *models.BrandProfile {
	return &models.BrandProfile{
		CompanyName: "Acme Audio",
		Competitors: []models.Competitor{{Name: "SoundCore"}},
	}
}

func testPrompts(n int) []models.Prompt {
	prompts := make([]models.Prompt, n)
	for i := range prompts {
		prompts[i] = models.Prompt{
			ID:        fmt.Sprintf("p-%d", i),
			Text:      "prompt text",
			Dimension: models.DimensionCategoryDefault,
			Weight:    0.2,
		}
	}
	return prompts
}

func TestRunProducesResultPerPair(t *testing.T) {
	b1 := backend.NewMock("mock-a").DefaultReply("Acme Audio is great.")
	b2 := backend.NewMock("mock-b").DefaultReply("No brands to mention here.")

	r := New([]backend.Backend{b1, b2}, parser.New(nil))

	results, err := r.Run(context.Background(), testProfile(), testPrompts(10))
	require.NoError(t, err)
	require.Len(t, results, 20)

	perBackend := map[string]int{}
	mentioned := 0
	for _, res := range results {
		perBackend[res.Backend]++
		if res.BrandMentioned {
			mentioned++
			assert.Equal(t, "mock-a", res.Backend)
		}
		assert.Empty(t, res.Error)
	}

	assert.Equal(t, 10, perBackend["mock-a"])
	assert.Equal(t, 10, perBackend["mock-b"])
	assert.Equal(t, 10, mentioned)
}

func TestRunProducesResultPerPairAtScale(t *testing.T) {
	const nPrompts, nBackends = 100, 100

	backends := make([]backend.Backend, nBackends)
	for i := range backends {
		backends[i] = backend.NewMock(fmt.Sprintf("mock-%d", i)).DefaultReply("Acme Audio is great.")
	}

	r := New(backends, parser.New(nil))

	results, err := r.Run(context.Background(), testProfile(), testPrompts(nPrompts))
	require.NoError(t, err)
	require.Len(t, results, nPrompts*nBackends)

	// Every (prompt, backend) pair appears exactly once.
	seen := make(map[string]bool, nPrompts*nBackends)
	for _, res := range results {
		key := res.PromptID + "|" + res.Backend
		require.False(t, seen[key], "duplicate pair %s", key)
		seen[key] = true
	}
}

func TestRunNoBackends(t *testing.T) {
	r := New(nil, parser.New(nil))

	_, err := r.Run(context.Background(), testProfile(), testPrompts(1))
	require.ErrorIs(t, err, ErrNoBackends)
}

func TestRunBackendFailureIsolated(t *testing.T) {
	good := backend.NewMock("good").DefaultReply("Acme Audio wins.")
	bad := backend.NewMock("bad").Fail(errors.New("backend down"))

	r := New([]backend.Backend{good, bad}, parser.New(nil))

	results, err := r.Run(context.Background(), testProfile(), testPrompts(5))
	require.NoError(t, err)
	require.Len(t, results, 10)

	for _, res := range results {
		switch res.Backend {
		case "good":
			assert.Empty(t, res.Error)
			assert.True(t, res.BrandMentioned)
		case "bad":
			assert.Contains(t, res.Error, "backend down")
			assert.False(t, res.BrandMentioned)
			assert.Equal(t, models.RecommendationNotMentioned, res.RecommendationType)
		}
	}
}

func TestRunProgressEvents(t *testing.T) {
	b := backend.NewMock("mock").DefaultReply("Acme Audio is great.")
	r := New([]backend.Backend{b}, parser.New(nil))

	var mu sync.Mutex
	counts := map[EventType]int{}
	var lastResult ProgressEvent
	r.OnProgress(func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		counts[event.EventType]++
		if event.EventType == EventPromptResult {
			lastResult = event
		}
	})

	prompts := testPrompts(4)
	_, err := r.Run(context.Background(), testProfile(), prompts)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, counts[EventRunStart])
	assert.Equal(t, 1, counts[EventRunComplete])
	assert.Equal(t, 4, counts[EventPromptStart])
	assert.Equal(t, 4, counts[EventPromptResult])
	assert.Equal(t, 4, lastResult.Total)
	assert.True(t, lastResult.Mentioned)
}

func TestRunStartEventsAreUnique(t *testing.T) {
	b1 := backend.NewMock("mock-a").DefaultReply("reply")
	b2 := backend.NewMock("mock-b").DefaultReply("reply")
	r := New([]backend.Backend{b1, b2}, parser.New(nil), WithConcurrency(8))

	var mu sync.Mutex
	var starts, completions []int
	r.OnProgress(func(event ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch event.EventType {
		case EventPromptStart:
			starts = append(starts, event.Current)
		case EventPromptResult:
			completions = append(completions, event.Current)
		}
	})

	_, err := r.Run(context.Background(), testProfile(), testPrompts(25))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	// Both streams cover 1..50 with no value handed out twice.
	assert.ElementsMatch(t, sequence(50), starts)
	assert.ElementsMatch(t, sequence(50), completions)
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func TestRunConcurrencyBound(t *testing.T) {
	const concurrency = 2

	var mu sync.Mutex
	inflight, peak := 0, 0

	b := &gaugeBackend{
		enter: func() {
			mu.Lock()
			inflight++
			if inflight > peak {
				peak = inflight
			}
			mu.Unlock()
		},
		exit: func() {
			mu.Lock()
			inflight--
			mu.Unlock()
		},
	}

	r := New([]backend.Backend{b}, parser.New(nil), WithConcurrency(concurrency))

	_, err := r.Run(context.Background(), testProfile(), testPrompts(10))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, concurrency)
	assert.Greater(t, peak, 0)
}

func TestRunCancellationPreservesResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	var mu sync.Mutex
	b := &gaugeBackend{
		enter: func() {
			mu.Lock()
			calls++
			if calls == 3 {
				cancel()
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
		},
		exit: func() {},
	}

	r := New([]backend.Backend{b}, parser.New(nil), WithConcurrency(1))

	results, err := r.Run(ctx, testProfile(), testPrompts(20))
	require.ErrorIs(t, err, context.Canceled)

	// Results collected before cancellation survive; the rest never ran.
	assert.NotEmpty(t, results)
	assert.Less(t, len(results), 20)
}

// gaugeBackend instruments Query entry and exit.
type gaugeBackend struct {
	enter func()
	exit  func()
}

func (g *gaugeBackend) Name() string { return "gauge" }

func (g *gaugeBackend) Query(ctx context.Context, prompt string) (*backend.Reply, error) {
	g.enter()
	defer g.exit()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
	}

	return &backend.Reply{Text: "Acme Audio is great.", ModelVersion: "gauge-v1"}, nil
}
