package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGeneratorGenerate(t *testing.T) {
	body := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "{\"location\": \"Tokyo Stock Exchange, Tokyo, Japan\"}"}}]
	}`
	var seen map[string]any
	srv := newChatServer(t, http.StatusOK, body, &seen)

	gen, err := NewOpenAIGenerator("test-key", "", srv.URL+"/v1/")
	require.NoError(t, err)

	out, err := gen.Generate(context.Background(), GenerateRequest{
		System:      "You are a location detection assistant.",
		User:        "Where?",
		Temperature: 0.3,
		MaxTokens:   150,
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "gpt-4o-mini", out.Model)
	assert.Contains(t, out.Text, "Tokyo Stock Exchange")

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.Equal(t, 0.3, seen["temperature"])
	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIGeneratorServerErrorIsRetryable(t *testing.T) {
	srv := newChatServer(t, http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`, nil)

	gen, err := NewOpenAIGenerator("test-key", "gpt-4o-mini", srv.URL+"/v1/")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), GenerateRequest{User: "hi"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestOpenAIGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator("", "", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestAnthropicGeneratorRequiresKey(t *testing.T) {
	_, err := NewAnthropicGenerator("", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
