package provider

import (
	"context"
	"fmt"

	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/llm/provider/gemini"
	"github.com/Yash3561/Nexus/pkg/llm/provider/openai"
)

// Supported provider type constants
const (
	Gemini = "gemini"
	OpenAI = "openai"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Gemini, OpenAI}
}

// New creates the Generator for cfg.Provider. A backend without
// credentials returns llm.ErrNotConfigured; an unrecognized name is an error.
func New(ctx context.Context, cfg Config) (llm.Generator, error) {
	switch cfg.Provider {
	case Gemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case OpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}
}
