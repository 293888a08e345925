package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yash3561/Nexus/pkg/storage"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// DefaultWindow is the number of messages Window returns when asked for
	// the default.
	DefaultWindow = 20

	// previousTopicWindow is what Window(0) returns, enough for a greeting to
	// mention the last exchange.
	previousTopicWindow = 2
)

// Message is one entry in a conversation.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// SessionRecord is the persisted shape of a conversation.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conversation is the live, append-only message log of one session. It is
// safe for concurrent use; each append persists the full record before
// returning.
type Conversation struct {
	mu       sync.Mutex
	store    storage.Driver
	logger   *slog.Logger
	id       string
	window   int
	messages []Message
}

// ConversationLog loads conversations from a storage driver.
type ConversationLog struct {
	store  storage.Driver
	logger *slog.Logger
	window int
}

// NewConversationLog returns a ConversationLog backed by store. window is
// the default for Window; zero or negative selects DefaultWindow.
func NewConversationLog(store storage.Driver, logger *slog.Logger, window int) *ConversationLog {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ConversationLog{store: store, logger: logger, window: window}
}

// Load returns the conversation for sessionID. A missing, unreadable or
// corrupt record yields an empty conversation; errors are logged, never
// returned.
func (l *ConversationLog) Load(ctx context.Context, sessionID string) *Conversation {
	c := &Conversation{
		store:    l.store,
		logger:   l.logger,
		id:       sessionID,
		window:   l.window,
		messages: []Message{},
	}

	body, err := l.store.Get(ctx, storage.KindSession, sessionID)
	if err != nil {
		if !storage.IsNotFound(err) {
			l.logger.Warn("session read failed, starting empty", "session_id", sessionID, "error", err)
		}
		return c
	}

	var rec SessionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		l.logger.Warn("session record corrupt, starting empty", "session_id", sessionID, "error", err)
		return c
	}

	if rec.Messages != nil {
		c.messages = rec.Messages
	}
	return c
}

// Count returns the number of persisted sessions whose id starts with
// prefix.
func (l *ConversationLog) Count(ctx context.Context, prefix string) (int, error) {
	ids, err := l.store.List(ctx, storage.KindSession)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n, nil
}

// ID returns the session id.
func (c *Conversation) ID() string {
	return c.id
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// CountRole returns how many messages were written by role.
func (c *Conversation) CountRole(role Role) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// Messages returns a copy of every message in order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Append adds one message and persists the conversation.
func (c *Conversation) Append(ctx context.Context, role Role, content string, metadata map[string]any) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := newMessage(role, content, metadata)
	c.messages = append(c.messages, msg)
	return msg, c.persist(ctx)
}

// AppendExchange adds a user message and the assistant reply as adjacent
// entries under one lock, then persists once. Concurrent exchanges on the
// same conversation never split a pair, though pairs may land in either
// order.
func (c *Conversation) AppendExchange(ctx context.Context, userText, reply string, metadata map[string]any) error {
	if userText == "" {
		return ErrEmptyText
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages,
		newMessage(RoleUser, userText, nil),
		newMessage(RoleAssistant, reply, metadata),
	)
	return c.persist(ctx)
}

// Window returns the last n messages in chronological order. n < 0 selects
// the configured default window and n == 0 selects the last two messages.
// It never returns more messages than exist.
func (c *Conversation) Window(n int) []Message {
	switch {
	case n < 0:
		n = c.window
	case n == 0:
		n = previousTopicWindow
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := max(0, len(c.messages)-n)
	return slices.Clone(c.messages[start:])
}

// RenderForPrompt formats Window(n) as "User:" and "Assistant:" lines under
// a "Previous conversation:" header. Returns "" when there is no history.
func (c *Conversation) RenderForPrompt(n int) string {
	msgs := c.Window(n)
	if len(msgs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, m := range msgs {
		label := "Assistant"
		if m.Role == RoleUser {
			label = "User"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// Clear empties the conversation and deletes its persisted record.
func (c *Conversation) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = []Message{}
	if err := c.store.Delete(ctx, storage.KindSession, c.id); err != nil {
		return fmt.Errorf("deleting session %s: %w", c.id, err)
	}
	return nil
}

func newMessage(role Role, content string, metadata map[string]any) Message {
	meta := map[string]any{}
	maps.Copy(meta, metadata)

	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	}
}

// persist writes the whole record. Callers hold c.mu.
func (c *Conversation) persist(ctx context.Context) error {
	body, err := json.MarshalIndent(SessionRecord{
		SessionID: c.id,
		Messages:  c.messages,
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := c.store.Put(ctx, storage.KindSession, c.id, body); err != nil {
		return fmt.Errorf("persisting session %s: %w", c.id, err)
	}
	return nil
}
