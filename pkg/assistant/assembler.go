package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Yash3561/Nexus/pkg/maybe"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/search"
)

// Section labels, in prompt order.
const (
	LabelSearch   = "[Web search results]"
	LabelRealtime = "[Real-time data]"
	LabelUser     = "[About the user]"
	LabelHistory  = "[Conversation history]"
)

const (
	defaultSearchResults   = 5
	defaultHistoryWindow   = 10
	defaultSearchTimeout   = 15 * time.Second
	defaultRealtimeTimeout = 10 * time.Second
)

// RealtimeSource renders the real-time prompt section.
type RealtimeSource interface {
	BuildContext(ctx context.Context) string
}

// AssemblerConfig configures a ContextAssembler. Search and Realtime are
// optional.
type AssemblerConfig struct {
	Registry *memory.Registry
	Search   search.Searcher
	Realtime RealtimeSource

	SearchResults   int
	HistoryWindow   int
	SearchTimeout   time.Duration
	RealtimeTimeout time.Duration

	Logger *slog.Logger
}

// Bundle is an assembled prompt context.
type Bundle struct {
	// Text is the labeled sections joined by blank lines.
	Text string

	// Search is the search outcome; empty when the input was not a question
	// or no searcher is configured.
	Search maybe.Value[*search.Result]
}

// Sources returns the citation cards for the bundle's search results.
func (b Bundle) Sources() []search.Source {
	r, _ := b.Search.Get()
	return search.Sources(r)
}

// ContextAssembler gathers search results, real-time data, the user profile
// and recent history into one prompt context.
type ContextAssembler struct {
	config AssemblerConfig
	logger *slog.Logger
}

// NewContextAssembler creates a ContextAssembler.
func NewContextAssembler(c AssemblerConfig) *ContextAssembler {
	if c.SearchResults <= 0 {
		c.SearchResults = defaultSearchResults
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = defaultHistoryWindow
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = defaultSearchTimeout
	}
	if c.RealtimeTimeout <= 0 {
		c.RealtimeTimeout = defaultRealtimeTimeout
	}
	return &ContextAssembler{config: c, logger: c.Logger}
}

// BuildContext resolves the memory handle for the user and session through
// the registry and assembles the context for userText.
func (a *ContextAssembler) BuildContext(ctx context.Context, userID, sessionID, userText string) (Bundle, error) {
	return a.Assemble(ctx, a.config.Registry.Get(ctx, userID, sessionID), userText)
}

// Assemble builds the context for userText from an already resolved handle.
// Search and real-time failures only drop their section. It fails only when
// ctx ends before assembly completes.
func (a *ContextAssembler) Assemble(ctx context.Context, h *memory.Handle, userText string) (Bundle, error) {
	var (
		wg       sync.WaitGroup
		found    maybe.Value[*search.Result]
		realtime string
	)

	if a.config.Search != nil && search.IsQuestion(userText) {
		wg.Go(func() {
			found = a.search(ctx, userText)
		})
	}

	if a.config.Realtime != nil {
		wg.Go(func() {
			realtime = a.realtime(ctx)
		})
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Bundle{}, fmt.Errorf("assembling context: %w", err)
	}

	var sections []string
	add := func(label, body string) {
		if body = strings.TrimSpace(body); body != "" {
			sections = append(sections, label+"\n"+body)
		}
	}

	if r, ok := found.Get(); ok {
		add(LabelSearch, search.FormatForContext(r))
	}
	add(LabelRealtime, realtime)
	add(LabelUser, h.Profile.RenderContext())
	add(LabelHistory, h.Conversation.RenderForPrompt(a.config.HistoryWindow))

	return Bundle{
		Text:   strings.Join(sections, "\n\n"),
		Search: found,
	}, nil
}

func (a *ContextAssembler) search(ctx context.Context, query string) (result maybe.Value[*search.Result]) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("search panicked", "panic", p)
			result = maybe.Fail[*search.Result](fmt.Errorf("search panicked: %v", p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.config.SearchTimeout)
	defer cancel()

	result = maybe.From(a.config.Search.Search(ctx, query, a.config.SearchResults))
	switch err := result.Err(); {
	case errors.Is(err, search.ErrNotConfigured):
		a.logger.Debug("search skipped", "reason", err)
	case err != nil:
		a.logger.Warn("search failed", "error", err)
	}
	return result
}

func (a *ContextAssembler) realtime(ctx context.Context) (out string) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("realtime context panicked", "panic", p)
			out = ""
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.config.RealtimeTimeout)
	defer cancel()
	return a.config.Realtime.BuildContext(ctx)
}
