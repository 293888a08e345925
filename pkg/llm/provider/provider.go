package provider

import (
	"log/slog"
	"time"
)

// Config selects and configures a generation backend.
type Config struct {
	// Provider is one of the Supported names.
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout bounds each call, including a full stream. Zero means no
	// bound beyond the caller's context.
	Timeout time.Duration

	Logger *slog.Logger
}
