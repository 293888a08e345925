// Package api provides the nexus HTTP server: the assistant endpoints, the
// memory and real-time views, and the MCP and expvar surfaces.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/realtime"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/tts"
)

// DefaultFeedInterval is how often /api/gaia/stream checks the feed cache
// for changes.
const DefaultFeedInterval = 5 * time.Second

// RealtimeService answers the on-demand real-time views.
type RealtimeService interface {
	City() string
	Now() time.Time
	CurrentTime() realtime.TimeInfo
	Weather(ctx context.Context, lat, lon float64) (*realtime.Weather, error)
	NewsHeadlines(ctx context.Context, category string) (*realtime.News, error)
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	// CORSOrigins is a comma separated list of allowed browser origins
	CORSOrigins string

	// Orchestrator answers requests. Required.
	Orchestrator *assistant.Orchestrator

	// Search backs the prometheus insight card. Optional.
	Search search.Searcher

	// Realtime backs the gaia views and greeting weather. Optional.
	Realtime RealtimeService

	// Feed is the event-fed real-time cache. Defaults to an empty cache.
	Feed *realtime.Cache

	// Speech enables audio on /api/process-with-voice. Optional.
	Speech tts.Synthesizer

	// EventBus and Storage name the active backends for /health.
	EventBus string
	Storage  string

	// FeedInterval defaults to DefaultFeedInterval.
	FeedInterval time.Duration

	Logger *slog.Logger
}
