package eventstream

import "context"

// Publisher publishes envelopes to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Envelope) error
	Close() error
}

// Handler consumes one envelope. A returned error is logged by the
// subscriber and does not stop consumption.
type Handler func(ctx context.Context, topic string, event *Envelope) error

// Subscriber delivers envelopes from topics to a handler until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, topics []string, h Handler) error
	Close() error
}
