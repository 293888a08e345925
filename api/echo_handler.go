package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/realtime"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/utils"
)

const (
	previousTopicLen  = 80
	insightSearchSize = 3
)

// ProfileResponse is the memory view of one user.
type ProfileResponse struct {
	UserID      string            `json:"user_id"`
	Name        *string           `json:"name"`
	Facts       []string          `json:"facts"`
	Preferences map[string]string `json:"preferences"`
	Stats       ProfileStats      `json:"stats"`
}

// ProfileStats summarizes a user's activity.
type ProfileStats struct {
	TotalConversations int       `json:"total_conversations"`
	MessagesSent       int       `json:"messages_sent"`
	FirstSeen          time.Time `json:"first_seen"`
	LastSeen           time.Time `json:"last_seen"`
}

// ProfileUpdate is the body of POST /api/echo/profile.
type ProfileUpdate struct {
	UserID      string            `json:"user_id"`
	Name        *string           `json:"name"`
	Preferences map[string]string `json:"preferences"`
}

// GreetingResponse is the body of GET /api/echo/greeting.
type GreetingResponse struct {
	Greeting      string            `json:"greeting"`
	Name          *string           `json:"name"`
	Weather       *realtime.Weather `json:"weather"`
	PreviousTopic string            `json:"previous_topic,omitempty"`
}

// Insight is one source-attribution card.
type Insight struct {
	Source  string          `json:"source"`
	Label   string          `json:"label"`
	Active  bool            `json:"active"`
	Detail  string          `json:"detail"`
	Sources []search.Source `json:"sources,omitempty"`
}

// InsightsResponse is the body of GET /api/echo/insights.
type InsightsResponse struct {
	Query    string    `json:"query"`
	Insights []Insight `json:"insights"`
}

func userID(c *fiber.Ctx) string {
	return c.Query("user_id", assistant.DefaultUserID)
}

// profileView reads the persisted state, not the cached handle.
func (s *Server) profileView(ctx context.Context, user, session string) ProfileResponse {
	h := s.registry.Open(ctx, user, session)
	rec := h.Profile.Record()

	total, err := s.registry.Conversations().Count(ctx, user+"_")
	if err != nil {
		s.logger.Warn("counting conversations failed", "user_id", user, "error", err)
	}

	lastSeen := rec.UpdatedAt
	if lastSeen.IsZero() {
		lastSeen = rec.CreatedAt
	}

	facts := rec.Facts
	if facts == nil {
		facts = []string{}
	}

	return ProfileResponse{
		UserID:      rec.UserID,
		Name:        rec.Name,
		Facts:       facts,
		Preferences: rec.Preferences,
		Stats: ProfileStats{
			TotalConversations: total,
			MessagesSent:       h.Conversation.CountRole(memory.RoleUser),
			FirstSeen:          rec.CreatedAt,
			LastSeen:           lastSeen,
		},
	}
}

// handleGetProfile handles GET /api/echo/profile.
func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	return c.JSON(s.profileView(c.UserContext(), userID(c), c.Query("session_id")))
}

// handleUpdateProfile handles POST /api/echo/profile. Updates go through the
// shared handle so in-flight requests see them.
func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var body ProfileUpdate
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if body.UserID == "" {
		body.UserID = assistant.DefaultUserID
	}

	ctx := c.UserContext()
	h := s.registry.Get(ctx, body.UserID, "")

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "name must not be empty"})
		}
		if err := h.Profile.SetName(ctx, name); err != nil {
			s.logger.Error("saving profile name failed", "user_id", body.UserID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to save profile"})
		}
	}
	for key, value := range body.Preferences {
		if key == "" {
			continue
		}
		if err := h.Profile.AddPreference(ctx, key, value); err != nil {
			s.logger.Error("saving preference failed", "user_id", body.UserID, "key", key, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to save profile"})
		}
	}

	return c.JSON(s.profileView(ctx, body.UserID, ""))
}

// handleClearSession handles DELETE /api/echo/session.
func (s *Server) handleClearSession(c *fiber.Ctx) error {
	user := userID(c)
	ctx := c.UserContext()

	h := s.registry.Get(ctx, user, c.Query("session_id"))
	if err := h.Conversation.Clear(ctx); err != nil {
		s.logger.Error("clearing session failed", "user_id", user, "session_id", h.SessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to clear session"})
	}

	return c.JSON(fiber.Map{
		"status":     "cleared",
		"session_id": h.SessionID,
	})
}

func salutation(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// previousTopic returns the last user message among the most recent
// exchange, if any.
func previousTopic(conv *memory.Conversation) string {
	recent := conv.Window(0)
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role == memory.RoleUser {
			return utils.Clip(recent[i].Content, previousTopicLen)
		}
	}
	return ""
}

// handleGreeting handles GET /api/echo/greeting.
func (s *Server) handleGreeting(c *fiber.Ctx) error {
	ctx := c.UserContext()
	h := s.registry.Open(ctx, userID(c), c.Query("session_id"))
	rec := h.Profile.Record()

	now := s.now()
	if s.config.Realtime != nil {
		now = s.config.Realtime.Now()
	}

	var b strings.Builder
	b.WriteString(salutation(now))
	if rec.Name != nil {
		b.WriteString(", " + *rec.Name)
	}
	b.WriteString(".")

	resp := GreetingResponse{Name: rec.Name}

	if s.config.Realtime != nil {
		w, err := s.config.Realtime.Weather(ctx, 0, 0)
		if err != nil {
			s.logger.Debug("greeting weather unavailable", "error", err)
		} else {
			resp.Weather = w
			fmt.Fprintf(&b, " It's %s and %s in %s.", w.Temperature, strings.ToLower(w.Condition), w.Location)
		}
	}

	if topic := previousTopic(h.Conversation); topic != "" {
		resp.PreviousTopic = topic
		fmt.Fprintf(&b, " Last time we talked about %q.", topic)
	}

	resp.Greeting = b.String()
	return c.JSON(resp)
}

// handleInsights handles GET /api/echo/insights: which sources would inform
// an answer to query.
func (s *Server) handleInsights(c *fiber.Ctx) error {
	ctx := c.UserContext()
	query := c.Query("query")

	return c.JSON(InsightsResponse{
		Query: query,
		Insights: []Insight{
			s.echoInsight(ctx, userID(c)),
			s.gaiaInsight(),
			s.prometheusInsight(ctx, query),
		},
	})
}

func (s *Server) echoInsight(ctx context.Context, user string) Insight {
	rec := s.registry.Open(ctx, user, "").Profile.Record()

	card := Insight{Source: "echo", Label: "Memory"}
	switch {
	case rec.Name != nil:
		card.Active = true
		card.Detail = fmt.Sprintf("Remembers %d facts about %s", len(rec.Facts), *rec.Name)
	case len(rec.Facts) > 0:
		card.Active = true
		card.Detail = fmt.Sprintf("Remembers %d facts", len(rec.Facts))
	default:
		card.Detail = "No memories yet"
	}
	return card
}

func (s *Server) gaiaInsight() Insight {
	card := Insight{Source: "gaia", Label: "Real-time"}

	snap := s.config.Feed.Snapshot()
	switch {
	case snap.Weather != nil:
		card.Active = true
		card.Detail = fmt.Sprintf("Live feed: %.0f°F, %d headlines, %d alerts", snap.Weather.Temperature, len(snap.News), len(snap.Alerts))
	case s.config.Realtime != nil:
		card.Active = true
		card.Detail = "Time and weather for " + s.config.Realtime.City()
	default:
		card.Detail = "Real-time data unavailable"
	}
	return card
}

func (s *Server) prometheusInsight(ctx context.Context, query string) Insight {
	card := Insight{Source: "prometheus", Label: "Web search"}

	switch {
	case s.config.Search == nil:
		card.Detail = "Web search not configured"
		return card
	case !search.IsQuestion(query):
		card.Detail = "Not a question"
		return card
	}

	result, err := s.config.Search.Search(ctx, query, insightSearchSize)
	if err != nil {
		s.logger.Warn("insight search failed", "error", err)
		card.Detail = "Web search unavailable"
		return card
	}

	card.Sources = search.Sources(result)
	card.Active = len(card.Sources) > 0
	card.Detail = fmt.Sprintf("%d web sources", len(card.Sources))
	return card
}
