// Package openai generates replies with any OpenAI-compatible chat
// completions endpoint, including Ollama's /v1.
package openai

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Yash3561/Nexus/pkg/llm"
)

const defaultModel = "gpt-4o-mini"

// Config holds OpenAI settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Generator implements llm.Generator on openai-go.
type Generator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New builds a Generator. An empty API key returns llm.ErrNotConfigured.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrNotConfigured
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &Generator{client: &client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (g *Generator) Name() string { return "openai" }

func (g *Generator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Generator) params(p llm.Prompt) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.Turn()),
		},
	}
}

// Generate sends the system prompt and the user turn as separate messages.
func (g *Generator) Generate(ctx context.Context, p llm.Prompt) (*llm.Response, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, g.params(p))
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, llm.ErrNoCandidates
	}

	return &llm.Response{
		Text:       resp.Choices[0].Message.Content,
		Confidence: llm.DefaultConfidence,
		Sources:    []string{},
		Model:      resp.Model,
		Usage: &llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// GenerateStream yields content deltas. The timeout covers the whole
// stream.
func (g *Generator) GenerateStream(ctx context.Context, p llm.Prompt) (iter.Seq2[string, error], error) {
	params := g.params(p)

	return func(yield func(string, error) bool) {
		ctx, cancel := g.withTimeout(ctx)
		defer cancel()

		stream := g.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("openai stream: %w", err))
		}
	}, nil
}
