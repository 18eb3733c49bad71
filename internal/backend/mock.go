package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockBackend is a scriptable in-memory backend for tests and dry runs.
type MockBackend struct {
	name string

	mu      sync.Mutex
	replies map[string]string // substring of prompt -> canned reply
	def     string
	err     error
	delay   time.Duration
	calls   int
}

// NewMock creates a mock backend that answers every prompt with a generic
// reply until scripted otherwise.
func NewMock(name string) *MockBackend {
	if name == "" {
		name = "mock"
	}
	return &MockBackend{
		name:    name,
		replies: map[string]string{},
		def:     "I don't have a specific recommendation for that.",
	}
}

func (m *MockBackend) Name() string {
	return m.name
}

// Reply registers a canned reply for any prompt containing the given substring.
func (m *MockBackend) Reply(promptContains, reply string) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[promptContains] = reply
	return m
}

// DefaultReply sets the reply used when no scripted entry matches.
func (m *MockBackend) DefaultReply(reply string) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.def = reply
	return m
}

// Fail makes every subsequent Query return the given error.
func (m *MockBackend) Fail(err error) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Delay makes every Query sleep before answering, for concurrency tests.
func (m *MockBackend) Delay(d time.Duration) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// Calls returns how many times Query was invoked.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockBackend) Query(ctx context.Context, prompt string) (*Reply, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	delay := m.delay
	text := m.def
	for substr, reply := range m.replies {
		if substr != "" && strings.Contains(prompt, substr) {
			text = reply
			break
		}
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err != nil {
		return nil, err
	}

	return &Reply{
		Text:         text,
		ModelVersion: fmt.Sprintf("%s-v1", m.name),
		TokensUsed:   len(prompt)/4 + len(text)/4,
		LatencyMs:    delay.Milliseconds(),
	}, nil
}
