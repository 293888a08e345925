package api

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/realtime"
	"github.com/Yash3561/Nexus/pkg/sse"
)

const defaultNewsCategory = "general"

// GaiaStatus is the body of GET /api/gaia/status.
type GaiaStatus struct {
	Time     realtime.TimeInfo `json:"time"`
	Weather  *realtime.Weather `json:"weather"`
	Location string            `json:"location"`
}

var errRealtimeUnavailable = llm.ErrorResponse{Error: "real-time data is not configured"}

// handleGaiaStatus handles GET /api/gaia/status. Weather is null when the
// provider cannot be reached.
func (s *Server) handleGaiaStatus(c *fiber.Ctx) error {
	rt := s.config.Realtime
	if rt == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errRealtimeUnavailable)
	}

	status := GaiaStatus{
		Time:     rt.CurrentTime(),
		Location: rt.City(),
	}

	w, err := rt.Weather(c.UserContext(), 0, 0)
	if err != nil {
		s.logger.Warn("weather lookup failed", "error", err)
	} else {
		status.Weather = w
	}

	return c.JSON(status)
}

// handleGaiaNews handles GET /api/gaia/news.
func (s *Server) handleGaiaNews(c *fiber.Ctx) error {
	rt := s.config.Realtime
	if rt == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errRealtimeUnavailable)
	}

	news, err := rt.NewsHeadlines(c.UserContext(), c.Query("category", defaultNewsCategory))
	if err != nil {
		s.logger.Warn("news lookup failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "news unavailable"})
	}

	return c.JSON(news)
}

// handleGaiaRealtime handles GET /api/gaia/realtime.
func (s *Server) handleGaiaRealtime(c *fiber.Ctx) error {
	return c.JSON(s.config.Feed.Snapshot())
}

// handleGaiaStream handles GET /api/gaia/stream.
func (s *Server) handleGaiaStream(c *fiber.Ctx) error {
	setStreamHeaders(c)

	pr, pw := io.Pipe()
	go func() {
		err := s.streamFeed(s.ctx, sse.NewWriter(pw))
		pw.CloseWithError(err)
	}()
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamFeed writes the current snapshot, then a new one each time the
// cache's last update moves. It returns nil when ctx ends and the write
// error when the client goes away.
func (s *Server) streamFeed(ctx context.Context, w *sse.Writer) error {
	feed := s.config.Feed

	last := feed.LastUpdate()
	if err := w.WriteJSON(feed.Snapshot()); err != nil {
		return err
	}

	ticker := time.NewTicker(s.config.FeedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if lu := feed.LastUpdate(); !lu.Equal(last) {
			last = lu
			if err := w.WriteJSON(feed.Snapshot()); err != nil {
				return err
			}
		}
	}
}
