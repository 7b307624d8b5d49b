package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClientWithHTTPClient(Config{BaseURL: srv.URL + "/", APIKey: apiKey}, srv.Client(), nil)
	return client, &calls
}

func testRequest() ChatRequest {
	return ChatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   2000,
		Messages: []Message{
			{Role: "system", Content: "You are an analyst."},
			{Role: "user", Content: "Analyze this."},
		},
	}
}

func TestCompleteSendsRequest(t *testing.T) {
	client, calls := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, chatCompletionsPath, r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, 0.7, body["temperature"])
		assert.Equal(t, float64(2000), body["max_tokens"])
		messages, _ := body["messages"].([]any)
		if assert.Len(t, messages, 2) {
			assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  "}},{"message":{"content":"{\"ok\":true}"}}]}`))
	})

	text, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCompleteWithoutAPIKey(t *testing.T) {
	client, calls := newTestClient(t, "  ", func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Complete(context.Background(), testRequest())
	assert.ErrorIs(t, err, models.ErrConfiguration)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestCompleteErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		client, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
		})

		_, err := client.Complete(context.Background(), testRequest())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
		assert.Contains(t, httpErr.Body, "bad key")
	})

	t.Run("no choices", func(t *testing.T) {
		client, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		})

		_, err := client.Complete(context.Background(), testRequest())
		assert.ErrorIs(t, err, models.ErrMalformedResponse)
	})

	t.Run("undecodable body", func(t *testing.T) {
		client, _ := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})

		_, err := client.Complete(context.Background(), testRequest())
		assert.ErrorIs(t, err, models.ErrMalformedResponse)
	})
}

func TestCompleteOpensBreakerOnServerErrors(t *testing.T) {
	client, calls := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), testRequest())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
	}

	_, err := client.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis service unavailable")
	assert.Equal(t, int32(5), atomic.LoadInt32(calls))
}

func TestClientErrorsDoNotOpenBreaker(t *testing.T) {
	client, calls := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 7; i++ {
		_, err := client.Complete(context.Background(), testRequest())
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
	}
	assert.Equal(t, int32(7), atomic.LoadInt32(calls))
}
