package models

import "encoding/json"

// GenerationOptions are the caller-tunable sampling parameters. Each provider
// applies the subset it understands; the rest are ignored.
type GenerationOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
}

// GenerationRequest is one inbound dispatch request. It is scoped to a single
// Generate call and never persisted or reused.
type GenerationRequest struct {
	Service   ProviderService    `json:"service"`
	Model     string             `json:"model,omitempty"`
	Prompt    string             `json:"prompt"`
	Operation string             `json:"operation,omitempty"`
	Options   *GenerationOptions `json:"options,omitempty"`
}

// GenerationResult is the normalized outcome of a successful dispatch. Usage
// keeps each provider's native token-count shape (OpenAI/Perplexity expose a
// single usage object, Anthropic input/output counts, Google usageMetadata);
// callers must treat it as diagnostic rather than a uniform schema. Raw
// retains the unmodified provider payload.
type GenerationResult struct {
	Content string          `json:"content"`
	Model   string          `json:"model"`
	Usage   json.RawMessage `json:"usage,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

// DispatchOutcome is the usage-recorder output contract: everything an
// external logger needs to record one dispatch attempt. It is produced for
// every Generate call regardless of outcome.
type DispatchOutcome struct {
	Operation    string          `json:"operation"`
	Service      ProviderService `json:"service"`
	Model        string          `json:"model,omitempty"`
	KeyID        *string         `json:"key_id,omitempty"`
	TokensUsed   *int            `json:"tokens_used,omitempty"`
	Successful   bool            `json:"successful"`
	ErrorMessage string          `json:"error_message,omitempty"`
	LatencyMs    int             `json:"latency_ms"`
}

// tokenCounts covers the token fields used across all four provider usage
// shapes; unknown fields are ignored.
type tokenCounts struct {
	TotalTokens      *int `json:"total_tokens"`
	InputTokens      *int `json:"input_tokens"`
	OutputTokens     *int `json:"output_tokens"`
	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
	TotalTokenCount  *int `json:"totalTokenCount"`
}

// TotalTokens extracts a best-effort total token count from a native provider
// usage payload. Returns nil when the payload is absent or carries no
// recognizable counts.
func TotalTokens(usage json.RawMessage) *int {
	if len(usage) == 0 {
		return nil
	}
	var c tokenCounts
	if err := json.Unmarshal(usage, &c); err != nil {
		return nil
	}
	switch {
	case c.TotalTokens != nil:
		return c.TotalTokens
	case c.TotalTokenCount != nil:
		return c.TotalTokenCount
	case c.InputTokens != nil || c.OutputTokens != nil:
		total := 0
		if c.InputTokens != nil {
			total += *c.InputTokens
		}
		if c.OutputTokens != nil {
			total += *c.OutputTokens
		}
		return &total
	case c.PromptTokens != nil || c.CompletionTokens != nil:
		total := 0
		if c.PromptTokens != nil {
			total += *c.PromptTokens
		}
		if c.CompletionTokens != nil {
			total += *c.CompletionTokens
		}
		return &total
	default:
		return nil
	}
}
