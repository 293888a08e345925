package assistant

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/Yash3561/Nexus/pkg/eventstream"
	"github.com/Yash3561/Nexus/pkg/llm"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/worker"
)

const (
	defaultGenerateTimeout = 60 * time.Second
	eventSource            = "nexus-api"
)

// Enqueuer accepts background publish jobs.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Config configures an Orchestrator.
type Config struct {
	Registry  *memory.Registry
	Assembler *ContextAssembler
	Generator llm.Generator

	// Extractor runs on the user message after each recorded exchange.
	// Optional.
	Extractor memory.Extractor

	// Events receives an exchange event after each recorded exchange.
	// Optional.
	Events Enqueuer

	// SystemPrompt defaults to llm.SystemPrompt.
	SystemPrompt string

	// GenerateTimeout bounds each generation call.
	GenerateTimeout time.Duration

	Logger *slog.Logger
}

// Orchestrator handles requests end to end.
type Orchestrator struct {
	config Config
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(c Config) *Orchestrator {
	if c.SystemPrompt == "" {
		c.SystemPrompt = llm.SystemPrompt
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
	return &Orchestrator{config: c, logger: c.Logger}
}

// Generator returns the configured generator.
func (o *Orchestrator) Generator() llm.Generator {
	return o.config.Generator
}

// Registry returns the memory registry.
func (o *Orchestrator) Registry() *memory.Registry {
	return o.config.Registry
}

// turn is the per-request state shared by Process and Stream.
type turn struct {
	req     Request
	handle  *memory.Handle
	bundle  Bundle
	started time.Time
	logger  *slog.Logger
}

func (t *turn) enter(s State) {
	t.logger.Debug("request state", "state", s)
}

// Process answers req with one generation call. The only error it returns
// is memory.ErrEmptyText for a blank request; every later failure yields
// the fallback reply.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Reply, error) {
	t, err := o.receive(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := o.buildContext(ctx, t); err != nil {
		return o.degrade(t, StateContextBuildFailed, err), nil
	}

	t.enter(StateGenerating)
	genCtx, cancel := context.WithTimeout(ctx, o.config.GenerateTimeout)
	defer cancel()

	resp, err := o.config.Generator.Generate(genCtx, o.prompt(t))
	if err != nil {
		return o.degrade(t, StateGenerationFailed, err), nil
	}

	sources := t.bundle.Sources()
	o.record(ctx, t, resp.Text, resp.Confidence, sources, resp.Model, resp.Usage, false)

	t.enter(StateDelivered)
	return &Reply{
		Text:       resp.Text,
		Confidence: resp.Confidence,
		Sources:    sources,
		Model:      resp.Model,
		State:      StateDelivered,
	}, nil
}

// Stream answers req as a sequence of events: chunk events as fragments
// arrive, then one done event after the exchange is recorded. On failure
// the sequence ends with one error event and nothing is recorded. Like
// Process, it only returns an error for a blank request.
func (o *Orchestrator) Stream(ctx context.Context, req Request) (iter.Seq[Event], error) {
	t, err := o.receive(ctx, req)
	if err != nil {
		return nil, err
	}
	streamsTotal.Add(1)

	return func(yield func(Event) bool) {
		if err := o.buildContext(ctx, t); err != nil {
			o.degrade(t, StateContextBuildFailed, err)
			yield(Event{Kind: EventError, Error: FallbackText})
			return
		}

		t.enter(StateGenerating)
		genCtx, cancel := context.WithTimeout(ctx, o.config.GenerateTimeout)
		defer cancel()

		fragments, err := o.config.Generator.GenerateStream(genCtx, o.prompt(t))
		if err != nil {
			o.degrade(t, StateGenerationFailed, err)
			yield(Event{Kind: EventError, Error: FallbackText})
			return
		}

		var full strings.Builder
		for chunk, err := range fragments {
			if err != nil {
				o.degrade(t, StateGenerationFailed, err)
				yield(Event{Kind: EventError, Error: FallbackText})
				return
			}
			if chunk == "" {
				continue
			}
			full.WriteString(chunk)
			if !yield(Event{Kind: EventChunk, Chunk: chunk}) {
				// The caller stopped listening; the reply is incomplete.
				o.degrade(t, StateGenerationFailed, fmt.Errorf("stream abandoned after %d bytes", full.Len()))
				return
			}
		}

		if full.Len() == 0 {
			o.degrade(t, StateGenerationFailed, llm.ErrNoCandidates)
			yield(Event{Kind: EventError, Error: FallbackText})
			return
		}

		text := full.String()
		sources := t.bundle.Sources()
		o.record(ctx, t, text, llm.DefaultConfidence, sources, o.config.Generator.Name(), nil, true)

		t.enter(StateDelivered)
		yield(Event{Kind: EventDone, FullText: text, Sources: sources})
	}, nil
}

func (o *Orchestrator) receive(ctx context.Context, req Request) (*turn, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, memory.ErrEmptyText
	}
	if req.UserID == "" {
		req.UserID = DefaultUserID
	}

	requestsTotal.Add(1)
	t := &turn{
		req:     req,
		started: time.Now(),
		logger:  o.logger.With("user_id", req.UserID, "session_id", req.SessionID),
	}
	t.enter(StateReceived)
	t.handle = o.config.Registry.Get(ctx, req.UserID, req.SessionID)
	return t, nil
}

func (o *Orchestrator) buildContext(ctx context.Context, t *turn) error {
	bundle, err := o.config.Assembler.Assemble(ctx, t.handle, t.req.Text)
	if err != nil {
		return err
	}
	t.bundle = bundle
	t.enter(StateContextBuilt)
	return nil
}

func (o *Orchestrator) prompt(t *turn) llm.Prompt {
	return llm.Prompt{
		System:  o.config.SystemPrompt,
		Context: t.bundle.Text,
		User:    t.req.Text,
	}
}

// degrade logs the failure and returns the fallback reply. Nothing is
// recorded.
func (o *Orchestrator) degrade(t *turn, s State, err error) *Reply {
	degradedTotal.Add(1)
	t.enter(s)
	t.logger.Error("request degraded", "state", s, "error", err)
	t.enter(StateDegraded)
	return &Reply{
		Text:       FallbackText,
		Confidence: 0,
		Sources:    []search.Source{},
		State:      StateDegraded,
	}
}

// record appends the exchange, learns from the user message and announces
// the exchange on the event bus. Failures are logged; the reply has already
// been produced. usage is nil when the provider did not report it.
func (o *Orchestrator) record(ctx context.Context, t *turn, reply string, confidence float64, sources []search.Source, model string, usage *llm.Usage, streaming bool) {
	meta := map[string]any{"confidence": confidence}
	if len(sources) > 0 {
		meta["sources"] = len(sources)
	}
	if usage != nil {
		meta["prompt_tokens"] = usage.PromptTokens
		meta["completion_tokens"] = usage.CompletionTokens
		t.logger.Debug("generation usage",
			"model", model,
			"prompt_tokens", usage.PromptTokens,
			"completion_tokens", usage.CompletionTokens,
			"total_tokens", usage.TotalTokens,
		)
	}

	if err := t.handle.Conversation.AppendExchange(ctx, t.req.Text, reply, meta); err != nil {
		t.logger.Warn("exchange not persisted", "error", err)
	}

	if o.config.Extractor != nil {
		o.config.Extractor.Extract(ctx, t.req.Text, t.handle.Profile)
	}

	if o.config.Events == nil {
		return
	}

	urls := make([]string, 0, len(sources))
	for _, s := range sources {
		urls = append(urls, s.URL)
	}
	ev, err := eventstream.NewEnvelope(eventstream.EventTypeExchangePersisted, eventSource, eventstream.ExchangePersisted{
		UserID:     t.req.UserID,
		SessionID:  t.handle.SessionID,
		UserText:   t.req.Text,
		Reply:      reply,
		Confidence: confidence,
		Sources:    urls,
		Streaming:  streaming,
		DurationMs: time.Since(t.started).Milliseconds(),
		Model:      model,
	})
	if err != nil {
		t.logger.Warn("exchange event not built", "error", err)
		return
	}
	o.config.Events.Enqueue(worker.Job{Topic: eventstream.TopicExchanges, Event: ev})
}
