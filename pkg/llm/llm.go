// Package llm defines the generation collaborator: a Generator turns a
// Prompt into reply text, either whole or as a stream of fragments.
package llm

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrNotConfigured is returned by provider constructors that lack
	// credentials, and by Unavailable on every call.
	ErrNotConfigured = errors.New("llm: generator not configured")

	// ErrNoCandidates is returned when a provider answers without any text.
	ErrNoCandidates = errors.New("llm: no candidates in response")
)

// Generator produces assistant replies.
type Generator interface {
	// Name identifies the backend, e.g. "gemini".
	Name() string

	// Generate returns the complete reply.
	Generate(ctx context.Context, p Prompt) (*Response, error)

	// GenerateStream returns a finite, single-use sequence of text
	// fragments. An error yielded mid-sequence ends it.
	GenerateStream(ctx context.Context, p Prompt) (iter.Seq2[string, error], error)
}

// ErrorResponse is the JSON body of an HTTP error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Unavailable is the Generator used when no backend is configured. Every
// call fails with ErrNotConfigured.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Generate(context.Context, Prompt) (*Response, error) {
	return nil, ErrNotConfigured
}

func (Unavailable) GenerateStream(context.Context, Prompt) (iter.Seq2[string, error], error) {
	return nil, ErrNotConfigured
}
