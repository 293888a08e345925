package api

import (
	"context"
	"errors"
	"expvar"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Yash3561/Nexus/api/mcp"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/realtime"
)

// Server is the nexus API server.
type Server struct {
	config   Config
	registry *memory.Registry
	logger   *slog.Logger
	app      *fiber.App
	now      func() time.Time

	// ctx ends long-lived streams on Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new API server and registers its routes.
func NewServer(config Config) (*Server, error) {
	if config.Orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if config.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.Feed == nil {
		config.Feed = realtime.NewCache()
	}
	if config.FeedInterval <= 0 {
		config.FeedInterval = DefaultFeedInterval
	}
	if config.EventBus == "" {
		config.EventBus = "simulation"
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry: config.Orchestrator.Registry(),
		Logger:   config.Logger,
	})
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   config,
		registry: config.Orchestrator.Registry(),
		logger:   config.Logger,
		app:      app,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     config.CORSOrigins,
			AllowCredentials: config.CORSOrigins != "*",
		}))
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)

	app.Post("/api/process", s.handleProcess)
	app.Post("/api/process-with-voice", s.handleProcessWithVoice)
	app.Post("/api/stream", s.handleStream)

	app.Get("/api/echo/profile", s.handleGetProfile)
	app.Post("/api/echo/profile", s.handleUpdateProfile)
	app.Delete("/api/echo/session", s.handleClearSession)
	app.Get("/api/echo/greeting", s.handleGreeting)
	app.Get("/api/echo/insights", s.handleInsights)

	app.Get("/api/gaia/status", s.handleGaiaStatus)
	app.Get("/api/gaia/news", s.handleGaiaNews)
	app.Get("/api/gaia/realtime", s.handleGaiaRealtime)
	app.Get("/api/gaia/stream", s.handleGaiaStream)

	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	app.Get("/debug/vars", adaptor.HTTPHandler(expvar.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown ends open streams and gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}
