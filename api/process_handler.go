package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/sse"
	"github.com/Yash3561/Nexus/pkg/tts"
)

// ProcessRequest is the body of the assistant endpoints.
type ProcessRequest struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ProcessResponse is the body of POST /api/process.
type ProcessResponse struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Sources    []search.Source `json:"sources"`
}

// VoiceResponse is the body of POST /api/process-with-voice. Audio is
// base64 encoded and both audio fields are null when synthesis is
// unavailable.
type VoiceResponse struct {
	ProcessResponse
	Audio       *string `json:"audio"`
	AudioFormat *string `json:"audio_format"`
}

// streamChunk, streamDone and llm.ErrorResponse are the /api/stream frames.
type streamChunk struct {
	Chunk string `json:"chunk"`
}

type streamDone struct {
	Done     bool            `json:"done"`
	FullText string          `json:"full_text"`
	Sources  []search.Source `json:"sources"`
}

var errTextRequired = errors.New("text is required")

// parseProcessRequest decodes and validates the request body before any
// collaborator is involved.
func parseProcessRequest(c *fiber.Ctx) (assistant.Request, error) {
	var body ProcessRequest
	if err := c.BodyParser(&body); err != nil {
		return assistant.Request{}, errors.New("invalid request body")
	}
	if strings.TrimSpace(body.Text) == "" {
		return assistant.Request{}, errTextRequired
	}

	userID := body.UserID
	if userID == "" {
		userID = assistant.DefaultUserID
	}
	return assistant.Request{
		Text:      body.Text,
		UserID:    userID,
		SessionID: body.SessionID,
	}, nil
}

func badRequest(c *fiber.Ctx, err error) error {
	if errors.Is(err, memory.ErrEmptyText) {
		err = errTextRequired
	}
	return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
}

func toProcessResponse(r *assistant.Reply) ProcessResponse {
	sources := r.Sources
	if sources == nil {
		sources = []search.Source{}
	}
	return ProcessResponse{
		Text:       r.Text,
		Confidence: r.Confidence,
		Sources:    sources,
	}
}

// handleProcess handles POST /api/process.
func (s *Server) handleProcess(c *fiber.Ctx) error {
	req, err := parseProcessRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	reply, err := s.config.Orchestrator.Process(c.UserContext(), req)
	if err != nil {
		return badRequest(c, err)
	}

	return c.JSON(toProcessResponse(reply))
}

// handleProcessWithVoice handles POST /api/process-with-voice. A synthesis
// failure still returns the text reply.
func (s *Server) handleProcessWithVoice(c *fiber.Ctx) error {
	req, err := parseProcessRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	ctx := c.UserContext()
	reply, err := s.config.Orchestrator.Process(ctx, req)
	if err != nil {
		return badRequest(c, err)
	}

	resp := VoiceResponse{ProcessResponse: toProcessResponse(reply)}
	if s.config.Speech != nil {
		audio, err := s.config.Speech.TextToSpeech(ctx, reply.Text)
		switch {
		case err != nil:
			s.logger.Warn("speech synthesis failed", "error", err)
		case len(audio) > 0:
			encoded := base64.StdEncoding.EncodeToString(audio)
			format := tts.AudioFormat
			resp.Audio = &encoded
			resp.AudioFormat = &format
		}
	}

	return c.JSON(resp)
}

// handleStream handles POST /api/stream as server-sent events.
func (s *Server) handleStream(c *fiber.Ctx) error {
	req, err := parseProcessRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	// The body is written after the handler returns, so generation must
	// not inherit the request context.
	ctx := context.WithoutCancel(c.UserContext())
	events, err := s.config.Orchestrator.Stream(ctx, req)
	if err != nil {
		return badRequest(c, err)
	}

	setStreamHeaders(c)

	pr, pw := io.Pipe()
	go s.writeReplyStream(events, pw)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// writeReplyStream frames events onto pw. Stopping early on a write error
// abandons the reply, which leaves the exchange unrecorded.
func (s *Server) writeReplyStream(events iter.Seq[assistant.Event], pw *io.PipeWriter) {
	defer pw.Close()

	w := sse.NewWriter(pw)
	for ev := range events {
		if err := w.WriteJSON(streamFrame(ev)); err != nil {
			s.logger.Debug("stream client went away", "error", err)
			return
		}
	}
}

func streamFrame(ev assistant.Event) any {
	switch ev.Kind {
	case assistant.EventChunk:
		return streamChunk{Chunk: ev.Chunk}
	case assistant.EventDone:
		sources := ev.Sources
		if sources == nil {
			sources = []search.Source{}
		}
		return streamDone{Done: true, FullText: ev.FullText, Sources: sources}
	default:
		return llm.ErrorResponse{Error: ev.Error}
	}
}

func setStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}
