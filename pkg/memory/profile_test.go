package memory_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/storage"
	testutils "github.com/Yash3561/Nexus/pkg/utils/test"
)

var _ = Describe("ProfileStore", func() {
	var (
		ctx    context.Context
		store  *testutils.MockStorageDriver
		loader *memory.ProfileStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStorageDriver()
		loader = memory.NewProfileStore(store, logger.Nop())
	})

	Describe("Load", func() {
		It("creates an empty profile for an unknown user", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.UserID()).To(Equal("ava"))
			Expect(p.Name()).To(BeEmpty())
			Expect(p.Facts()).To(BeEmpty())
			Expect(p.Preferences()).To(BeEmpty())
			Expect(p.RenderContext()).To(BeEmpty())
		})

		It("does not persist until a mutation", func() {
			loader.Load(ctx, "ava")
			Expect(store.PutCount(storage.KindUser)).To(Equal(0))
		})

		It("starts fresh on a corrupt record", func() {
			Expect(store.Driver.Put(ctx, storage.KindUser, "ava", []byte("{not json"))).To(Succeed())

			p := loader.Load(ctx, "ava")
			Expect(p.Name()).To(BeEmpty())
			Expect(p.Facts()).To(BeEmpty())
		})

		It("starts fresh when storage fails", func() {
			store.FailGet = true

			p := loader.Load(ctx, "ava")
			Expect(p.UserID()).To(Equal("ava"))
			Expect(p.Facts()).To(BeEmpty())
		})

		It("reads back what was persisted", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.SetName(ctx, "Ava")).To(Succeed())
			Expect(p.AddFact(ctx, "I love hiking")).To(Succeed())
			Expect(p.AddPreference(ctx, "units", "metric")).To(Succeed())

			again := loader.Load(ctx, "ava")
			Expect(again.Name()).To(Equal("Ava"))
			Expect(again.Facts()).To(Equal([]string{"I love hiking"}))
			Expect(again.Preferences()).To(HaveKeyWithValue("units", "metric"))
		})
	})

	Describe("mutators", func() {
		It("persist the whole record on every call", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.SetName(ctx, "Ava")).To(Succeed())
			Expect(p.AddPreference(ctx, "tone", "casual")).To(Succeed())
			Expect(store.PutCount(storage.KindUser)).To(Equal(2))

			body, err := store.Get(ctx, storage.KindUser, "ava")
			Expect(err).NotTo(HaveOccurred())

			var rec map[string]any
			Expect(json.Unmarshal(body, &rec)).To(Succeed())
			Expect(rec).To(HaveKeyWithValue("user_id", "ava"))
			Expect(rec).To(HaveKeyWithValue("name", "Ava"))
			Expect(rec).To(HaveKey("created_at"))
			Expect(rec).To(HaveKey("updated_at"))
		})

		It("persists name as null when unset", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.AddFact(ctx, "likes tea")).To(Succeed())

			body, err := store.Get(ctx, storage.KindUser, "ava")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"name": null`))
		})

		It("AddFact is idempotent", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.AddFact(ctx, "I like jazz")).To(Succeed())
			Expect(p.AddFact(ctx, "I like jazz")).To(Succeed())

			Expect(p.Facts()).To(Equal([]string{"I like jazz"}))
			Expect(store.PutCount(storage.KindUser)).To(Equal(1))
		})

		It("AddPreference replaces an existing key", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.AddPreference(ctx, "units", "metric")).To(Succeed())
			Expect(p.AddPreference(ctx, "units", "imperial")).To(Succeed())
			Expect(p.Preferences()).To(Equal(map[string]string{"units": "imperial"}))
		})

		It("surfaces write failures", func() {
			p := loader.Load(ctx, "ava")
			store.FailPut = true
			Expect(p.SetName(ctx, "Ava")).To(MatchError(testutils.ErrMockStorage))
		})
	})

	Describe("RenderContext", func() {
		It("renders name, the last five facts and sorted preferences", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.SetName(ctx, "Ava")).To(Succeed())
			for _, f := range []string{"f1", "f2", "f3", "f4", "f5", "f6"} {
				Expect(p.AddFact(ctx, f)).To(Succeed())
			}
			Expect(p.AddPreference(ctx, "units", "metric")).To(Succeed())
			Expect(p.AddPreference(ctx, "tone", "casual")).To(Succeed())

			Expect(p.RenderContext()).To(Equal(
				"User's name: Ava\n" +
					"Known about user: f2; f3; f4; f5; f6\n" +
					"Preferences: tone: casual, units: metric",
			))
		})

		It("omits empty sections", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.AddFact(ctx, "I enjoy chess")).To(Succeed())
			Expect(p.RenderContext()).To(Equal("Known about user: I enjoy chess"))
		})
	})

	Describe("Record", func() {
		It("returns a copy", func() {
			p := loader.Load(ctx, "ava")
			Expect(p.AddFact(ctx, "a")).To(Succeed())

			rec := p.Record()
			rec.Facts[0] = "mutated"
			Expect(p.Facts()).To(Equal([]string{"a"}))
		})
	})
})
