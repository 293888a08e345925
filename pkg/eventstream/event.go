// Package eventstream carries nexus events over a message bus.
package eventstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the envelope schema.
	SchemaVersionV1 = 1

	// EventTypeExchangePersisted is emitted after a user/assistant exchange is
	// written to the conversation log.
	EventTypeExchangePersisted = "nexus.exchange.persisted"

	// Real-time feed event types.
	EventTypeWeather = "gaia.weather"
	EventTypeNews    = "gaia.news"
	EventTypeAlert   = "gaia.alert"
)

// Topics.
const (
	TopicExchanges = "nexus-exchanges"
	TopicUpdates   = "gaia-updates"
	TopicAlerts    = "gaia-alerts"
)

// Envelope is the transport-neutral wrapper for every event on the bus.
type Envelope struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        string          `json:"source"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh v1 envelope.
func NewEnvelope(eventType, source string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}

	return &Envelope{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        source,
		Payload:       body,
	}, nil
}

// Decode unmarshals the envelope payload into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.EventType, err)
	}
	return nil
}

// ExchangePersisted is the payload of EventTypeExchangePersisted.
type ExchangePersisted struct {
	UserID     string   `json:"user_id"`
	SessionID  string   `json:"session_id"`
	UserText   string   `json:"user_text"`
	Reply      string   `json:"reply"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
	Streaming  bool     `json:"streaming"`
	DurationMs int64    `json:"duration_ms"`
	Model      string   `json:"model,omitempty"`
}
