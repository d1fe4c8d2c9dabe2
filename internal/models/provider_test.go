package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderService(t *testing.T) {
	for _, svc := range AllServices {
		parsed, err := ParseProviderService(string(svc))
		assert.NoError(t, err)
		assert.Equal(t, svc, parsed)
	}

	_, err := ParseProviderService("mistral")
	assert.Error(t, err)

	_, err = ParseProviderService("")
	assert.Error(t, err)
}

func TestDefaultModelFor(t *testing.T) {
	assert.Equal(t, DefaultOpenAIModel, DefaultModelFor(ServiceOpenAI))
	assert.Equal(t, DefaultPerplexityModel, DefaultModelFor(ServicePerplexity))
	assert.Equal(t, DefaultAnthropicModel, DefaultModelFor(ServiceAnthropic))
	assert.Equal(t, DefaultGoogleModel, DefaultModelFor(ServiceGoogle))

	// custom is enumerable but has no adapter and no default model
	assert.Equal(t, "", DefaultModelFor(ServiceCustom))
}
