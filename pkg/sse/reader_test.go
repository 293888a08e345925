package sse_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/sse"
)

// drain reads every event from r.
func drain(r *sse.Reader) []*sse.Event {
	var out []*sse.Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return out
		}
		out = append(out, ev)
	}
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("parses a single event and then reports exhaustion", func() {
			r := sse.NewReader(strings.NewReader("data: hello world\n\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(*ev).To(Equal(sse.Event{Data: "hello world"}))

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
		})

		It("parses a streamed reply", func() {
			stream := `data: {"chunk": "Hello "}` + "\n\n" +
				`data: {"chunk": "there."}` + "\n\n" +
				`data: {"done": true, "full_text": "Hello there.", "sources": []}` + "\n\n"

			events := drain(sse.NewReader(strings.NewReader(stream)))
			Expect(events).To(HaveLen(3))
			Expect(events[0].Data).To(MatchJSON(`{"chunk": "Hello "}`))
			Expect(events[2].Data).To(MatchJSON(`{"done": true, "full_text": "Hello there.", "sources": []}`))
		})

		It("parses event type and id", func() {
			events := drain(sse.NewReader(strings.NewReader("id: 7\nevent: snapshot\ndata: {}\n\n")))
			Expect(events).To(HaveLen(1))
			Expect(events[0].ID).To(Equal("7"))
			Expect(events[0].Type).To(Equal("snapshot"))
		})

		It("joins multiple data lines with newline", func() {
			events := drain(sse.NewReader(strings.NewReader("data: one\ndata: two\n\n")))
			Expect(events[0].Data).To(Equal("one\ntwo"))
		})

		It("ignores comments and keep-alive blank lines", func() {
			events := drain(sse.NewReader(strings.NewReader("\n\n: ping\n\ndata: x\n\n: ping\n\n")))
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("x"))
		})

		It("accepts data without a space after the colon", func() {
			events := drain(sse.NewReader(strings.NewReader("data:compact\n\n")))
			Expect(events[0].Data).To(Equal("compact"))
		})

		It("yields the last event when the stream ends without a blank line", func() {
			events := drain(sse.NewReader(strings.NewReader("data: a\n\ndata: tail")))
			Expect(events).To(HaveLen(2))
			Expect(events[1].Data).To(Equal("tail"))
		})

		It("ignores retry and unknown fields", func() {
			events := drain(sse.NewReader(strings.NewReader("retry: 1000\nfoo: bar\ndata: ok\n\n")))
			Expect(events).To(HaveLen(1))
			Expect(*events[0]).To(Equal(sse.Event{Data: "ok"}))
		})

		It("returns nothing for empty input", func() {
			Expect(drain(sse.NewReader(strings.NewReader("")))).To(BeEmpty())
		})
	})

	Describe("NewTeeReader", func() {
		It("copies the raw stream, comments included", func() {
			stream := ": ping\n\ndata: {\"chunk\":\"a\"}\n\n"
			dst := &bytes.Buffer{}

			drain(sse.NewTeeReader(strings.NewReader(stream), dst))
			Expect(dst.String()).To(Equal(stream))
		})
	})
})
