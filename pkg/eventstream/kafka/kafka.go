// Package kafka implements the eventstream publisher and subscriber on top
// of segmentio/kafka-go. Credentials switch the connection to SASL/PLAIN
// over TLS, which is what managed clusters such as Confluent Cloud expect.
package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/Yash3561/Nexus/pkg/eventstream"
)

const (
	defaultClientID     = "nexus"
	defaultWriteTimeout = 10 * time.Second
	batchTimeout        = 50 * time.Millisecond
)

// Config holds broker connection settings.
type Config struct {
	Brokers  []string
	Username string
	Password string
	GroupID  string
	ClientID string
}

// ParseBrokers splits a comma separated bootstrap server list, dropping
// empty entries.
func ParseBrokers(s string) []string {
	var out []string
	for b := range strings.SplitSeq(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Mechanism returns the SASL mechanism for c, or nil when no username is set.
func (c Config) Mechanism() sasl.Mechanism {
	if c.Username == "" {
		return nil
	}
	return plain.Mechanism{Username: c.Username, Password: c.Password}
}

// TLS returns a TLS config when credentials are set.
func (c Config) TLS() *tls.Config {
	if c.Username == "" {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c Config) clientID() string {
	if c.ClientID == "" {
		return defaultClientID
	}
	return c.ClientID
}

// Encode turns an envelope into a message keyed by its event type.
func Encode(topic string, event *eventstream.Envelope) (kafkago.Message, error) {
	if event == nil {
		return kafkago.Message{}, eventstream.ErrNilEvent
	}

	body, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshaling event: %w", err)
	}

	return kafkago.Message{
		Topic: topic,
		Key:   []byte(event.EventType),
		Value: body,
		Time:  event.EmittedAt,
	}, nil
}

// Decode parses a message value into an envelope.
func Decode(msg kafkago.Message) (*eventstream.Envelope, error) {
	var ev eventstream.Envelope
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return nil, fmt.Errorf("decoding message from %s: %w", msg.Topic, err)
	}
	return &ev, nil
}

// Publisher writes envelopes to Kafka.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a publisher for the configured brokers. Topics are
// chosen per message.
func NewPublisher(c Config, logger *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           defaultWriteTimeout,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Transport: &kafkago.Transport{
			ClientID: c.clientID(),
			TLS:      c.TLS(),
			SASL:     c.Mechanism(),
		},
	}

	return &Publisher{writer: w, logger: logger}, nil
}

// Publish writes one envelope and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, topic string, event *eventstream.Envelope) error {
	msg, err := Encode(topic, event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	p.logger.Debug("event published", "topic", topic, "event_type", event.EventType, "event_id", event.EventID)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Subscriber reads envelopes from Kafka as part of a consumer group.
type Subscriber struct {
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	reader *kafkago.Reader
}

// NewSubscriber creates a subscriber. The reader is created on Subscribe.
func NewSubscriber(c Config, logger *slog.Logger) (*Subscriber, error) {
	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if c.GroupID == "" {
		return nil, errors.New("kafka: group id is required")
	}
	return &Subscriber{config: c, logger: logger}, nil
}

// Subscribe consumes topics from the latest offset until ctx is done.
// Undecodable messages and handler errors are logged and skipped.
func (s *Subscriber) Subscribe(ctx context.Context, topics []string, h eventstream.Handler) error {
	if len(topics) == 0 {
		return eventstream.ErrNoTopics
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     s.config.Brokers,
		GroupID:     s.config.GroupID,
		GroupTopics: topics,
		StartOffset: kafkago.LastOffset,
		Dialer: &kafkago.Dialer{
			ClientID:      s.config.clientID(),
			Timeout:       defaultWriteTimeout,
			DualStack:     true,
			TLS:           s.config.TLS(),
			SASLMechanism: s.config.Mechanism(),
		},
	})

	s.mu.Lock()
	s.reader = reader
	s.mu.Unlock()

	s.logger.Info("subscribed", "topics", topics, "group_id", s.config.GroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}

		ev, err := Decode(msg)
		if err != nil {
			s.logger.Warn("skipping message", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			continue
		}

		if err := h(ctx, msg.Topic, ev); err != nil {
			s.logger.Warn("handler failed", "topic", msg.Topic, "event_type", ev.EventType, "error", err)
		}
	}
}

// Close closes the underlying reader, if any.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}
