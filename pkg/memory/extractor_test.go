package memory_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/memory"
	testutils "github.com/Yash3561/Nexus/pkg/utils/test"
)

var _ = Describe("HeuristicExtractor", func() {
	var (
		ctx       context.Context
		store     *testutils.MockStorageDriver
		profile   *memory.Profile
		extractor memory.Extractor
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStorageDriver()
		profile = memory.NewProfileStore(store, logger.Nop()).Load(ctx, "u1")
		extractor = memory.NewHeuristicExtractor(logger.Nop())
	})

	DescribeTable("name detection",
		func(msg, want string) {
			extractor.Extract(ctx, msg, profile)
			Expect(profile.Name()).To(Equal(want))
		},
		Entry("introduction with punctuation", "Hi, my name is Jordan!", "Jordan"),
		Entry("case-insensitive trigger", "MY NAME IS Priya.", "Priya"),
		Entry("non-alphabetic token", "my name is 7", ""),
		Entry("single letter", "my name is J", ""),
		Entry("no trigger", "this is Jordan", ""),
		Entry("trigger without a following token", "my name is", ""),
		Entry("skips a rejected anchor and keeps scanning", "my name is... it is Kai", "Kai"),
	)

	It("keeps the first accepted name", func() {
		extractor.Extract(ctx, "my name is Ana and my friend is Bea", profile)
		Expect(profile.Name()).To(Equal("Ana"))
	})

	DescribeTable("interest detection",
		func(msg string, stored bool) {
			extractor.Extract(ctx, msg, profile)
			if stored {
				Expect(profile.Facts()).To(Equal([]string{msg}))
			} else {
				Expect(profile.Facts()).To(BeEmpty())
			}
		},
		Entry("i love", "I love hiking in the Alps", true),
		Entry("i like", "honestly i like jazz", true),
		Entry("i enjoy", "I enjoy chess", true),
		Entry("no interest", "What time is it?", false),
	)

	It("stores the first 100 characters of long messages", func() {
		msg := "I love " + strings.Repeat("x", 200)
		extractor.Extract(ctx, msg, profile)

		facts := profile.Facts()
		Expect(facts).To(HaveLen(1))
		Expect(facts[0]).To(HaveLen(100))
		Expect(msg).To(HavePrefix(facts[0]))
	})

	It("does not duplicate repeated interests", func() {
		extractor.Extract(ctx, "I like pizza.", profile)
		extractor.Extract(ctx, "I like pizza.", profile)
		Expect(profile.Facts()).To(HaveLen(1))
	})

	It("never fails when storage does", func() {
		store.FailPut = true
		Expect(func() {
			extractor.Extract(ctx, "my name is Jordan and I love tea", profile)
		}).NotTo(Panic())
	})

	It("ignores a nil profile", func() {
		Expect(func() { extractor.Extract(ctx, "my name is Jordan", nil) }).NotTo(Panic())
	})
})
