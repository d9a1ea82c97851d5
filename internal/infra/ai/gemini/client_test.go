package gemini

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

func serve(t *testing.T, status int, reply string, got *map[string]any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "models/"+DefaultModel+":generateContent")
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	}, nil)
	require.NoError(t, err)
	return c
}

const okReply = `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]},
	"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":4,"candidatesTokenCount":2}}`

func TestComplete_InlineImage(t *testing.T) {
	var body map[string]any
	c := serve(t, http.StatusOK, okReply, &body)

	out, err := c.Complete(context.Background(), domai.CompletionRequest{
		Prompt:    "describe",
		Image:     &domai.Image{Data: "aGk=", MediaType: "image/webp"},
		MaxTokens: 8192,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	contents := body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/webp", inline["mimeType"])
	assert.Equal(t, "aGk=", inline["data"])
	assert.Equal(t, "describe", parts[1].(map[string]any)["text"])

	gen := body["generationConfig"].(map[string]any)
	assert.InDelta(t, 0.7, gen["temperature"], 0.001)
	assert.EqualValues(t, 8192, gen["maxOutputTokens"])
}

func TestComplete_BadBase64(t *testing.T) {
	c := serve(t, http.StatusOK, okReply, nil)
	_, err := c.Complete(context.Background(), domai.CompletionRequest{
		Prompt: "x",
		Image:  &domai.Image{Data: "!!!", MediaType: "image/png"},
	})
	assert.Error(t, err)
}

func TestComplete_Quota(t *testing.T) {
	c := serve(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, nil)
	_, err := c.Complete(context.Background(), domai.CompletionRequest{Prompt: "x", MaxTokens: 1})
	assert.ErrorIs(t, err, domai.ErrQuotaExceeded)
}

func TestComplete_EmptyText(t *testing.T) {
	c := serve(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[]}}]}`, nil)
	_, err := c.Complete(context.Background(), domai.CompletionRequest{Prompt: "x", MaxTokens: 1})
	assert.ErrorIs(t, err, domai.ErrEmptyResponse)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{}, nil)
	assert.ErrorIs(t, err, domai.ErrNotConfigured)
}
