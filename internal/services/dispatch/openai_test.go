package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sparknote/ai-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerate(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter()
	temp := 0.2
	maxTokens := 64
	result, err := adapter.Generate(context.Background(), "sk-test",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{
			Service: models.ServiceOpenAI,
			Model:   "gpt-4o",
			Prompt:  "say hello",
			Options: &models.GenerationOptions{Temperature: &temp, MaxTokens: &maxTokens},
		})

	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, "gpt-4o", result.Model)

	tokens := models.TotalTokens(result.Usage)
	require.NotNil(t, tokens)
	assert.Equal(t, 5, *tokens)
	assert.NotEmpty(t, result.Raw)

	// the request carried the prompt, the system message, and the options
	assert.Equal(t, "gpt-4o", gotBody["model"])
	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "say hello", messages[1].(map[string]any)["content"])
	assert.EqualValues(t, 0.2, gotBody["temperature"])
	assert.EqualValues(t, 64, gotBody["max_tokens"])
}

func TestOpenAIGenerateProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	adapter := NewOpenAIAdapter()
	_, err := adapter.Generate(context.Background(), "sk-bad",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{Service: models.ServiceOpenAI, Model: "gpt-4o", Prompt: "hi"})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeProvider, appErr.Type)
	assert.Contains(t, appErr.Message, "Incorrect API key provided")
}

func TestOpenAIGenerateTransportError(t *testing.T) {
	adapter := NewOpenAIAdapter()
	_, err := adapter.Generate(context.Background(), "sk-test",
		models.ProviderConfig{BaseURL: "http://127.0.0.1:1", TimeoutMs: 200},
		&models.GenerationRequest{Service: models.ServiceOpenAI, Model: "gpt-4o", Prompt: "hi"})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeTransport, appErr.Type)
}

func TestPerplexitySendsTopK(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "resp-1",
			"model": "llama-3.1-sonar-small-128k-online",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "answer"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 6, "total_tokens": 10}
		}`))
	}))
	defer server.Close()

	adapter := NewPerplexityAdapter()
	topK := 40
	result, err := adapter.Generate(context.Background(), "pplx-test",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{
			Service: models.ServicePerplexity,
			Model:   "llama-3.1-sonar-small-128k-online",
			Prompt:  "search something",
			Options: &models.GenerationOptions{TopK: &topK},
		})

	require.NoError(t, err)
	assert.Equal(t, "answer", result.Content)
	assert.EqualValues(t, 40, gotBody["top_k"])
}

func TestPerplexityDefaultBaseURL(t *testing.T) {
	adapter := NewPerplexityAdapter()
	assert.Equal(t, models.DefaultPerplexityBaseURL, adapter.defaultBaseURL)
}
