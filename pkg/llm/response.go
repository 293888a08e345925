package llm

// DefaultConfidence is reported for every successful generation.
const DefaultConfidence = 0.95

// Response is a complete generation result.
type Response struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`

	// Model that generated the response
	Model string `json:"model,omitempty"`

	// Token usage, when the provider reports it
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}
