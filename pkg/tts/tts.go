// Package tts defines the speech synthesis collaborator.
package tts

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no speech API key is set.
var ErrNotConfigured = errors.New("tts: no API key configured")

// AudioFormat is the encoding of synthesized audio.
const AudioFormat = "mp3"

// Voice describes an available synthesis voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Synthesizer converts reply text to audio.
type Synthesizer interface {
	TextToSpeech(ctx context.Context, text string) ([]byte, error)
	Voices(ctx context.Context) ([]Voice, error)
}
