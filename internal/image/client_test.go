package image

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deposia/avatar-api/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestGenerateReturnsHostedURL(t *testing.T) {
	var received generationRequest
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"url": "https://img.example/out.png"}},
		})
	})

	client := NewClient(server.URL, "test-key")
	result, err := client.Generate(context.Background(), &GenerateRequest{
		Model:          "black-forest-labs/FLUX.1-schnell",
		Prompt:         "portrait",
		Width:          1024,
		Height:         768,
		Steps:          28,
		Count:          1,
		ResponseFormat: ResponseFormatURL,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://img.example/out.png", result.Reference)
	assert.Equal(t, "black-forest-labs/FLUX.1-schnell", received.Model)
	assert.Equal(t, 1024, received.Width)
	assert.Equal(t, 768, received.Height)
	assert.Equal(t, 28, received.Steps)
	assert.Equal(t, 1, received.N)
	assert.Equal(t, "url", received.ResponseFormat)
}

func TestGenerateBase64BecomesDataURI(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"b64_json": "aGVsbG8="}},
		})
	})

	client := NewClient(server.URL, "test-key")
	result, err := client.Generate(context.Background(), &GenerateRequest{
		Prompt:         "portrait",
		ResponseFormat: ResponseFormatB64,
	})
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,aGVsbG8=", result.Reference)
}

func TestGenerateMissingAPIKey(t *testing.T) {
	calls := 0
	server := newTestServer(t, func(http.ResponseWriter, *http.Request) {
		calls++
	})

	client := NewClient(server.URL, "")
	result, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "portrait"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Contains(t, err.Error(), "TOGETHER_API_KEY")

	// the credential check happens before any network call
	assert.Equal(t, 0, calls)
}

func TestGenerateProviderError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	})

	client := NewClient(server.URL, "test-key")
	_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "portrait"})

	var remote *llm.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusTooManyRequests, remote.StatusCode)
	assert.Contains(t, remote.Message, "rate limited")
}

func TestGenerateEmptyDataIsFailure(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]string{}})
	})

	client := NewClient(server.URL, "test-key")
	result, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "portrait"})

	assert.Nil(t, result)
	var remote *llm.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Contains(t, remote.Message, "zero images")
}

func TestGenerateMalformedResponse(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	client := NewClient(server.URL, "test-key")
	_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "portrait"})

	var remote *llm.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Contains(t, remote.Message, "malformed response")
}
