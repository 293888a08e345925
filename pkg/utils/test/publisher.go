package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

// ErrMockPublish is returned by MockPublisher when Fail is set.
var ErrMockPublish = errors.New("mock publish failure")

// Published is one recorded publish call.
type Published struct {
	Topic string
	Event *eventstream.Envelope
}

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []Published
	closed bool

	// Fail causes Publish to return ErrMockPublish.
	Fail bool

	// Gate, when non-nil, blocks every Publish until it is closed.
	Gate chan struct{}
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, event *eventstream.Envelope) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrMockPublish
	}
	m.events = append(m.events, Published{Topic: topic, Event: event})
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Events returns a copy of everything published so far.
func (m *MockPublisher) Events() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.events))
	copy(out, m.events)
	return out
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
