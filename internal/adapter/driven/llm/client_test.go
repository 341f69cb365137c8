package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "you are terse", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "summarize the week", req.Messages[1].Content)

		fmt.Fprint(w, `{"choices": [{"message": {"content": "A quiet week."}}]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(srv.Client(), srv.URL, "llama-3.3-70b-versatile")

	answer, err := client.Complete(context.Background(), "you are terse", "summarize the week")

	require.NoError(t, err)
	assert.Equal(t, "A quiet week.", answer)
}

func TestComplete_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "gsk_test", "test-model")
	client.httpClient = srv.Client()

	_, err := client.Complete(context.Background(), "s", "u")

	require.NoError(t, err)
}

func TestComplete_NoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization")) // Local providers take no key.
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(srv.Client(), srv.URL, "test-model")

	_, err := client.Complete(context.Background(), "s", "u")

	require.NoError(t, err)
}

func TestComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limit exceeded"}}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(srv.Client(), srv.URL, "test-model")

	_, err := client.Complete(context.Background(), "s", "u")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestComplete_ProviderErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"message": "model not found"}}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(srv.Client(), srv.URL, "bogus-model")

	_, err := client.Complete(context.Background(), "s", "u")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(srv.Client(), srv.URL, "test-model")

	_, err := client.Complete(context.Background(), "s", "u")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
