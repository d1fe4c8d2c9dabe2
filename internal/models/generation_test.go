package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalTokens(t *testing.T) {
	tests := []struct {
		name     string
		usage    string
		expected *int
	}{
		{
			name:     "openai style total_tokens",
			usage:    `{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}`,
			expected: intPtr(5),
		},
		{
			name:     "gemini style totalTokenCount",
			usage:    `{"promptTokenCount":4,"candidatesTokenCount":6,"totalTokenCount":10}`,
			expected: intPtr(10),
		},
		{
			name:     "anthropic style input plus output",
			usage:    `{"input_tokens":7,"output_tokens":3}`,
			expected: intPtr(10),
		},
		{
			name:     "prompt plus completion without total",
			usage:    `{"prompt_tokens":2,"completion_tokens":1}`,
			expected: intPtr(3),
		},
		{
			name:     "only input tokens",
			usage:    `{"input_tokens":4}`,
			expected: intPtr(4),
		},
		{
			name:     "no recognizable counts",
			usage:    `{"something_else":9}`,
			expected: nil,
		},
		{
			name:     "malformed payload",
			usage:    `not json`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalTokens(json.RawMessage(tt.usage))
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tt.expected, *got)
			}
		})
	}
}

func TestTotalTokensEmptyPayload(t *testing.T) {
	assert.Nil(t, TotalTokens(nil))
	assert.Nil(t, TotalTokens(json.RawMessage{}))
}

func intPtr(v int) *int {
	return &v
}
