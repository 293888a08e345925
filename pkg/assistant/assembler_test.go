package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/search"
)

var _ = Describe("ContextAssembler", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture("Current time: Friday, March 07, 2025 at 02:05 PM")
	})

	It("describes a known user and omits empty history", func() {
		h := f.registry.Get(ctx, "ava", "s1")
		Expect(h.Profile.SetName(ctx, "Ava")).To(Succeed())
		Expect(h.Profile.AddFact(ctx, "I love sailing")).To(Succeed())

		b, err := f.assembler.BuildContext(ctx, "ava", "s1", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Text).To(ContainSubstring(assistant.LabelUser + "\nUser's name: Ava"))
		Expect(b.Text).NotTo(ContainSubstring(assistant.LabelHistory))
	})

	It("emits sections in fixed order separated by blank lines", func() {
		h := f.registry.Get(ctx, "ava", "s1")
		Expect(h.Profile.SetName(ctx, "Ava")).To(Succeed())
		Expect(h.Conversation.AppendExchange(ctx, "hi", "hello", nil)).To(Succeed())

		b, err := f.assembler.BuildContext(ctx, "ava", "s1", "Who won the match?")
		Expect(err).NotTo(HaveOccurred())

		idx := []int{
			strings.Index(b.Text, assistant.LabelSearch),
			strings.Index(b.Text, assistant.LabelRealtime),
			strings.Index(b.Text, assistant.LabelUser),
			strings.Index(b.Text, assistant.LabelHistory),
		}
		Expect(idx[0]).To(Equal(0))
		for i := 1; i < len(idx); i++ {
			Expect(idx[i]).To(BeNumerically(">", idx[i-1]))
		}
		Expect(b.Text).To(ContainSubstring("\n\n" + assistant.LabelRealtime + "\n"))
		Expect(b.Text).To(ContainSubstring("SOURCE 1: Match report"))
		Expect(b.Text).To(HaveSuffix("User: hi\nAssistant: hello"))

		Expect(b.Sources()).To(Equal([]search.Source{
			{Title: "Match report", URL: "https://www.sports.example/report", Domain: "sports.example"},
		}))
	})

	It("only searches for questions", func() {
		b, err := f.assembler.BuildContext(ctx, "ava", "", "I like pizza.")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.searcher.Queries()).To(BeEmpty())
		Expect(b.Text).NotTo(ContainSubstring(assistant.LabelSearch))
		Expect(b.Search.OK()).To(BeFalse())
		Expect(b.Sources()).To(BeEmpty())
	})

	It("drops the search section when search fails", func() {
		f.searcher.Err = errors.New("rate limited")

		b, err := f.assembler.BuildContext(ctx, "ava", "", "How are you")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.searcher.Queries()).To(Equal([]string{"How are you"}))
		Expect(b.Text).NotTo(ContainSubstring(assistant.LabelSearch))
		Expect(b.Text).To(HavePrefix(assistant.LabelRealtime))
		Expect(b.Search.Err()).To(MatchError("rate limited"))
	})

	It("drops the search section when the result has no hits", func() {
		f.searcher.Result = &search.Result{Query: "q"}
		b, err := f.assembler.BuildContext(ctx, "ava", "", "what is new?")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Text).NotTo(ContainSubstring(assistant.LabelSearch))
	})

	It("omits the real-time section when it renders nothing", func() {
		f = newFixture("")
		b, err := f.assembler.BuildContext(ctx, "nobody", "", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Text).To(BeEmpty())
	})

	It("renders only the last ten history messages", func() {
		h := f.registry.Get(ctx, "ava", "s1")
		for i := range 12 {
			Expect(h.Conversation.AppendExchange(ctx, fmt.Sprintf("q%02d", i), fmt.Sprintf("a%02d", i), nil)).To(Succeed())
		}

		b, err := f.assembler.Assemble(ctx, h, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Text).NotTo(ContainSubstring("q06"))
		Expect(b.Text).To(ContainSubstring("User: q07"))
		Expect(b.Text).To(ContainSubstring("Assistant: a11"))
	})

	It("fails when the context is already done", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.assembler.Assemble(cctx, f.registry.Open(ctx, "ava", ""), "hello")
		Expect(err).To(MatchError(context.Canceled))
	})

	It("resolves handles through the registry", func() {
		_, err := f.assembler.BuildContext(ctx, "ava", "", "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.registry.Len()).To(Equal(1))
		Expect(memory.RegistryKey("ava", "")).To(Equal("ava:default"))
	})
})
