package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Writer frames events onto an io.Writer and flushes after each one when
// the writer supports it. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes ev followed by a blank line. Multi-line data is split
// into one "data:" line per line.
func (w *Writer) WriteEvent(ev Event) error {
	var b strings.Builder
	if ev.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", ev.ID)
	}
	if ev.Type != "" {
		fmt.Fprintf(&b, "event: %s\n", ev.Type)
	}
	for line := range strings.SplitSeq(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// WriteJSON writes v, JSON encoded, as a default-type event.
func (w *Writer) WriteJSON(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	return w.WriteEvent(Event{Data: string(body)})
}

// WriteComment writes a comment line, commonly used as a keep-alive.
func (w *Writer) WriteComment(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.w, ": "+text+"\n\n"); err != nil {
		return err
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
