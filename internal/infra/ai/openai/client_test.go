package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
)

func newTestServer(t *testing.T, status int, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okReply = `{"id":"c1","object":"chat.completion","choices":[{"index":0,
  "message":{"role":"assistant","content":"{\"a\":1}"},"finish_reason":"stop"}],
  "usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`

func TestComplete_WithImage(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, http.StatusOK, okReply, &body)

	c, err := NewClient("test-key", srv.URL+"/v1", "gpt-4o", srv.Client(), nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), domai.CompletionRequest{
		Prompt:    "describe",
		Image:     &domai.Image{Data: "aGk=", MediaType: "image/png"},
		MaxTokens: 8192,
		Step:      "step-1",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, 8192, body["max_tokens"])
	msgs := body["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	img := parts[0].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,aGk=", img["url"])
	assert.Equal(t, "describe", parts[1].(map[string]any)["text"])
}

func TestComplete_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, http.StatusOK, okReply, &body)

	c, err := NewClient("test-key", srv.URL+"/v1", "o3-mini", srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), domai.CompletionRequest{Prompt: "x", MaxTokens: 100})
	require.NoError(t, err)

	assert.EqualValues(t, 100, body["max_completion_tokens"])
	assert.NotContains(t, body, "max_tokens")
	assert.Equal(t, "x", body["messages"].([]any)[0].(map[string]any)["content"])
}

func TestComplete_RateLimited(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"quota","type":"rate_limit","code":"rate_limit_exceeded"}}`, nil)

	c, err := NewClient("test-key", srv.URL+"/v1", "", srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), domai.CompletionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, domai.ErrQuotaExceeded)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"choices":[]}`, nil)

	c, err := NewClient("test-key", srv.URL+"/v1", "", srv.Client(), nil)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), domai.CompletionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, domai.ErrEmptyResponse)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", "", "", nil, nil)
	assert.ErrorIs(t, err, domai.ErrNotConfigured)
}
