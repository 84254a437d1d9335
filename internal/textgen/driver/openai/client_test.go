package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lughati/lughati/internal/textgen/driver"
)

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", 0)
	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "test",
		Messages: []driver.Message{{Role: driver.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientRequiresModel(t *testing.T) {
	client := NewClient("", 0)
	_, err := client.Complete(context.Background(), &driver.Request{
		Messages: []driver.Message{{Role: driver.RoleUser, Content: "hi"}},
		APIKey:   "test-key",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestClientSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload chatCompletionRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "test-model", payload.Model)
		require.Len(t, payload.Messages, 2)
		require.Equal(t, "system", payload.Messages[0].Role)
		require.NotNil(t, payload.Temperature)
		require.InDelta(t, 0.7, *payload.Temperature, 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"مرحبا"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	client.HTTPClient = server.Client()

	temp := 0.7
	resp, err := client.Complete(context.Background(), &driver.Request{
		Model: "test-model",
		Messages: []driver.Message{
			{Role: driver.RoleSystem, Content: "sys"},
			{Role: driver.RoleUser, Content: "usr"},
		},
		Temperature: &temp,
		APIKey:      "test-key",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "مرحبا", resp.Text)
	require.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	require.Equal(t, 3, resp.Usage.TotalTokens)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("nope"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "test-model",
		Messages: []driver.Message{{Role: driver.RoleUser, Content: "hi"}},
		APIKey:   "bad-key",
	})
	require.Error(t, err)

	var providerErr *driver.ProviderError
	require.True(t, errors.As(err, &providerErr))
	require.Equal(t, "openai", providerErr.Provider)
	require.Equal(t, http.StatusUnauthorized, providerErr.StatusCode)
	require.Equal(t, "nope", providerErr.Message)
}

func TestClientErrorsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), &driver.Request{
		Model:    "test-model",
		Messages: []driver.Message{{Role: driver.RoleUser, Content: "hi"}},
		APIKey:   "test-key",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty response choices")
}
