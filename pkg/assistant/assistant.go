// Package assistant turns one user utterance into one assistant reply. It
// assembles prompt context from memory, real-time data and web search,
// calls the generator, and records the exchange only after generation
// succeeds.
package assistant

import (
	"expvar"

	"github.com/Yash3561/Nexus/pkg/search"
)

const (
	// FallbackText is the reply sent when a request cannot be answered.
	FallbackText = "I'm having trouble processing that. Let me try again."

	// DefaultUserID is used when a request names no user.
	DefaultUserID = "default"
)

// Exported counters, served under /debug/vars.
var (
	requestsTotal = expvar.NewInt("nexus_requests")
	degradedTotal = expvar.NewInt("nexus_degraded")
	streamsTotal  = expvar.NewInt("nexus_streams")
)

// State is a step of request handling.
type State string

const (
	StateReceived           State = "RECEIVED"
	StateContextBuilt       State = "CONTEXT_BUILT"
	StateGenerating         State = "GENERATING"
	StateDelivered          State = "DELIVERED"
	StateContextBuildFailed State = "CONTEXT_BUILD_FAILED"
	StateGenerationFailed   State = "GENERATION_FAILED"
	StateDegraded           State = "DEGRADED_RESPONSE"
)

// Request is one user utterance.
type Request struct {
	Text      string
	UserID    string
	SessionID string
}

// Reply is the outcome of Process.
type Reply struct {
	Text       string
	Confidence float64
	Sources    []search.Source
	Model      string

	// State is StateDelivered or StateDegraded.
	State State
}

// Degraded reports whether the reply is the fallback.
func (r *Reply) Degraded() bool {
	return r.State == StateDegraded
}

// EventKind distinguishes stream events.
type EventKind string

const (
	EventChunk EventKind = "chunk"
	EventDone  EventKind = "done"
	EventError EventKind = "error"
)

// Event is one item of a streamed reply. Chunk carries a fragment; Done
// carries the full text and sources; Error carries a client-safe message.
type Event struct {
	Kind     EventKind
	Chunk    string
	FullText string
	Sources  []search.Source
	Error    string
}
