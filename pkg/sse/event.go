// Package sse reads and writes Server-Sent Events. The server uses Writer to
// frame streamed replies and feed snapshots as "data: <json>" events; the
// chat client uses Reader to parse them back.
//
// Event stream format:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single SSE event, delimited by a blank line in the
// byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}
