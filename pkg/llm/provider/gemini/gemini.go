// Package gemini generates replies with the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Yash3561/Nexus/pkg/llm"
)

const defaultModel = "gemini-2.5-flash"

// Config holds Gemini settings.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. Empty uses the public endpoint.
	BaseURL string

	Timeout time.Duration
}

// Generator implements llm.Generator on genai.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New builds a Generator. An empty API key returns llm.ErrNotConfigured.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Generator{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (g *Generator) Name() string { return "gemini" }

func (g *Generator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Generate sends the rendered prompt as a single user turn.
func (g *Generator) Generate(ctx context.Context, p llm.Prompt) (*llm.Response, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.Render()), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return nil, llm.ErrNoCandidates
	}

	out := &llm.Response{
		Text:       text,
		Confidence: llm.DefaultConfidence,
		Sources:    []string{},
		Model:      g.model,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// GenerateStream yields text as Gemini produces it. The timeout covers the
// whole stream.
func (g *Generator) GenerateStream(ctx context.Context, p llm.Prompt) (iter.Seq2[string, error], error) {
	contents := genai.Text(p.Render())

	return func(yield func(string, error) bool) {
		ctx, cancel := g.withTimeout(ctx)
		defer cancel()

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, nil) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			text := candidateText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
