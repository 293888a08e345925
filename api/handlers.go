package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Yash3561/Nexus/pkg/utils"
)

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	EventBus  string `json:"eventbus"`
	Generator string `json:"generator"`
	Storage   string `json:"storage"`
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Status:  "online",
		Service: "NEXUS API",
		Version: utils.Version,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		EventBus:  s.config.EventBus,
		Generator: s.config.Orchestrator.Generator().Name(),
		Storage:   s.config.Storage,
	})
}
