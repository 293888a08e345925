// Package nop provides the event bus used when no brokers are configured.
package nop

import (
	"context"
	"log/slog"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

// Publisher accepts every event and only logs it.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish validates input and logs what would have been sent.
func (p *Publisher) Publish(_ context.Context, topic string, event *eventstream.Envelope) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.logger.Debug("simulated publish",
		"topic", topic,
		"event_type", event.EventType,
		"event_id", event.EventID,
	)
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
