package testutils

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/Yash3561/Nexus/pkg/llm"
)

// ErrMockGenerate is returned by MockGenerator when Fail is set.
var ErrMockGenerate = errors.New("mock generation failure")

// MockGenerator returns canned replies and records prompts.
type MockGenerator struct {
	mu      sync.Mutex
	prompts []llm.Prompt

	// Reply is returned by Generate.
	Reply string

	// Usage is attached to Generate responses when set.
	Usage *llm.Usage

	// Chunks are yielded by GenerateStream.
	Chunks []string

	// StreamErr is yielded after Chunks when set.
	StreamErr error

	// Fail makes both calls fail up front with ErrMockGenerate.
	Fail bool
}

// NewMockGenerator creates a generator answering reply, streamed as chunks.
func NewMockGenerator(reply string, chunks ...string) *MockGenerator {
	return &MockGenerator{Reply: reply, Chunks: chunks}
}

func (m *MockGenerator) Name() string { return "mock" }

func (m *MockGenerator) Generate(_ context.Context, p llm.Prompt) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)

	if m.Fail {
		return nil, ErrMockGenerate
	}
	return &llm.Response{
		Text:       m.Reply,
		Confidence: llm.DefaultConfidence,
		Sources:    []string{},
		Model:      "mock-model",
		Usage:      m.Usage,
	}, nil
}

func (m *MockGenerator) GenerateStream(_ context.Context, p llm.Prompt) (iter.Seq2[string, error], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)

	if m.Fail {
		return nil, ErrMockGenerate
	}
	return llm.Fragments(m.Chunks, m.StreamErr), nil
}

// Prompts returns every prompt received so far.
func (m *MockGenerator) Prompts() []llm.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or the zero Prompt.
func (m *MockGenerator) LastPrompt() llm.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return llm.Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}
