package search_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/search"
)

var _ = Describe("IsQuestion", func() {
	DescribeTable("classifies input",
		func(text string, want bool) {
			Expect(search.IsQuestion(text)).To(Equal(want))
		},
		Entry("trailing question mark", "the weather in Paris?", true),
		Entry("question mark after whitespace", "  really?  ", true),
		Entry("what prefix", "What is the capital of France", true),
		Entry("upper case how", "HOW does this work", true),
		Entry("request phrase", "tell me about black holes", true),
		Entry("show me", "Show me the latest news", true),
		Entry("prefix match without word boundary", "island hopping tips", true),
		Entry("statement", "I like pizza", false),
		Entry("greeting", "hello there", false),
		Entry("empty", "", false),
	)
})

var _ = Describe("FormatForContext", func() {
	It("returns empty text for a nil result", func() {
		Expect(search.FormatForContext(nil)).To(BeEmpty())
	})

	It("returns empty text when there are no hits", func() {
		Expect(search.FormatForContext(&search.Result{Query: "q", Answer: "a"})).To(BeEmpty())
	})

	It("renders numbered sources between the block markers", func() {
		out := search.FormatForContext(&search.Result{
			Query:  "capital of france",
			Answer: "Paris",
			Results: []search.Hit{
				{Title: "France", URL: "https://en.wikipedia.org/wiki/France", Content: "Paris is the capital."},
				{Title: "No link", Content: "Body"},
			},
		})

		lines := strings.Split(out, "\n")
		Expect(lines[0]).To(Equal("=== VERIFIED WEB SEARCH RESULTS ==="))
		Expect(out).To(ContainSubstring("SOURCE 1: France\nContent: Paris is the capital.\nURL: https://en.wikipedia.org/wiki/France\n"))
		Expect(out).To(ContainSubstring("SOURCE 2: No link\nContent: Body\nURL: N/A\n"))
		Expect(out).NotTo(ContainSubstring("Paris\n"))
		Expect(lines[len(lines)-1]).To(Equal("IMPORTANT: Base your answer ONLY on the actual source content above."))
	})

	It("keeps at most five sources and clips their content", func() {
		r := &search.Result{}
		for i := range 7 {
			r.Results = append(r.Results, search.Hit{
				Title:   fmt.Sprintf("hit %d", i+1),
				Content: strings.Repeat("x", 400),
			})
		}

		out := search.FormatForContext(r)
		Expect(out).To(ContainSubstring("SOURCE 5: hit 5"))
		Expect(out).NotTo(ContainSubstring("SOURCE 6"))
		Expect(out).To(ContainSubstring("Content: " + strings.Repeat("x", 300) + "\n"))
		Expect(out).NotTo(ContainSubstring(strings.Repeat("x", 301)))
	})
})

var _ = Describe("Sources", func() {
	It("returns an empty list for a nil result", func() {
		Expect(search.Sources(nil)).To(BeEmpty())
	})

	It("builds at most four cards with bare domains", func() {
		r := &search.Result{}
		for i := range 6 {
			r.Results = append(r.Results, search.Hit{
				Title: strings.Repeat("t", 100),
				URL:   fmt.Sprintf("https://www.example%d.com/page", i),
			})
		}

		cards := search.Sources(r)
		Expect(cards).To(HaveLen(4))
		Expect(cards[0].Domain).To(Equal("example0.com"))
		Expect(cards[0].URL).To(Equal("https://www.example0.com/page"))
		Expect(cards[0].Title).To(HaveLen(80))
	})
})

var _ = Describe("Domain", func() {
	It("strips www", func() {
		Expect(search.Domain("https://www.bbc.co.uk/news")).To(Equal("bbc.co.uk"))
	})

	It("keeps other subdomains", func() {
		Expect(search.Domain("https://en.wikipedia.org/wiki/Go")).To(Equal("en.wikipedia.org"))
	})

	It("returns empty for an empty url", func() {
		Expect(search.Domain("")).To(BeEmpty())
	})
})
