package testutils

import (
	"context"
	"sync"

	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/tts"
)

// MockSearcher returns a fixed result and counts calls.
type MockSearcher struct {
	mu      sync.Mutex
	queries []string

	Result *search.Result
	Err    error
}

func (m *MockSearcher) Search(_ context.Context, query string, _ int) (*search.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Queries returns every query received so far.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// StaticRealtime renders a fixed real-time section.
type StaticRealtime string

func (s StaticRealtime) BuildContext(context.Context) string { return string(s) }

// MockSynthesizer returns fixed audio.
type MockSynthesizer struct {
	Audio []byte
	Err   error
}

func (m *MockSynthesizer) TextToSpeech(context.Context, string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

func (m *MockSynthesizer) Voices(context.Context) ([]tts.Voice, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []tts.Voice{{ID: "mock", Name: "Mock", Category: "test"}}, nil
}
