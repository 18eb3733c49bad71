package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIQuery(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := map[string]any{
			"model": "gpt-4o-mini-2024-07-18",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Some great options are Brand A and Brand B."}},
			},
			"usage": map[string]any{"total_tokens": 42},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	b := NewOpenAI(Settings{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})

	reply, err := b.Query(context.Background(), "best running shoes?")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "best running shoes?", gotReq.Messages[0].Content)

	assert.Equal(t, "Some great options are Brand A and Brand B.", reply.Text)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", reply.ModelVersion)
	assert.Equal(t, 42, reply.TokensUsed)
}

func TestOpenAIQueryRetriesRateLimit(t *testing.T) {
	var attempts int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	b := NewOpenAI(Settings{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 10 * time.Second,
	})

	reply, err := b.Query(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, 2, attempts)
}

func TestOpenAIQueryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	b := NewOpenAI(Settings{APIKey: "k", BaseURL: server.URL, Timeout: 5 * time.Second})

	_, err := b.Query(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOpenAIQueryNoAPIKey(t *testing.T) {
	b := NewOpenAI(Settings{Timeout: time.Second})

	_, err := b.Query(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestNewBackendKinds(t *testing.T) {
	tests := []struct {
		kind     string
		wantName string
	}{
		{kind: "openai", wantName: "openai"},
		{kind: "perplexity", wantName: "perplexity"},
		{kind: "anthropic", wantName: "anthropic"},
		{kind: "gemini", wantName: "gemini"},
		{kind: "mock", wantName: "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			b, err := New(Settings{Kind: tt.kind, APIKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, b.Name())
		})
	}

	_, err := New(Settings{Kind: "nope"})
	require.Error(t, err)
}

func TestMockBackendScripting(t *testing.T) {
	m := NewMock("").
		Reply("running shoes", "Try Brand A.").
		DefaultReply("no idea")

	reply, err := m.Query(context.Background(), "what are the best running shoes?")
	require.NoError(t, err)
	assert.Equal(t, "Try Brand A.", reply.Text)

	reply, err = m.Query(context.Background(), "unrelated question")
	require.NoError(t, err)
	assert.Equal(t, "no idea", reply.Text)

	assert.Equal(t, 2, m.Calls())

	m.Fail(errors.New("backend down"))
	_, err = m.Query(context.Background(), "anything")
	require.ErrorContains(t, err, "backend down")
}
