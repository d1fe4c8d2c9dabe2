package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorMessage(t *testing.T) {
	msg := providerErrorMessage(`{"error": {"message": "quota exceeded"}}`, "OpenAI API error")
	assert.Equal(t, "quota exceeded", msg)

	msg = providerErrorMessage(`{"error": {}}`, "OpenAI API error")
	assert.Equal(t, "OpenAI API error", msg)

	msg = providerErrorMessage(`not json at all`, "Anthropic API error")
	assert.Equal(t, "Anthropic API error", msg)
}

func TestClientConfigHash(t *testing.T) {
	h1, err := clientConfigHash("sk-one", "https://api.openai.com", 0)
	require.NoError(t, err)
	h2, err := clientConfigHash("sk-one", "https://api.openai.com", 0)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// rotating the key must produce a different cache key
	h3, err := clientConfigHash("sk-two", "https://api.openai.com", 0)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	// the cache key never contains the raw secret
	assert.NotContains(t, h1, "sk-one")
}
