package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Yash3561/Nexus/pkg/storage"
	"github.com/Yash3561/Nexus/pkg/storage/sqlite"
)

var _ = Describe("SQLiteDriver", func() {
	var (
		driver *sqlite.SQLiteDriver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewSQLiteDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists records across reopen", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Put(ctx, storage.KindUser, "ava", []byte(`{"name":"Ava"}`))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			body, err := s.Get(ctx, storage.KindUser, "ava")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`{"name":"Ava"}`))
		})
	})

	Describe("Get", func() {
		It("returns NotFoundError for absent records", func() {
			_, err := driver.Get(ctx, storage.KindUser, "nobody")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Put", func() {
		It("overwrites the whole record", func() {
			Expect(driver.Put(ctx, storage.KindSession, "s1", []byte(`{"messages":[]}`))).To(Succeed())
			Expect(driver.Put(ctx, storage.KindSession, "s1", []byte(`{"messages":[1]}`))).To(Succeed())

			body, err := driver.Get(ctx, storage.KindSession, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`{"messages":[1]}`))
		})

		It("keeps kinds apart", func() {
			Expect(driver.Put(ctx, storage.KindSession, "x", []byte("session"))).To(Succeed())
			Expect(driver.Put(ctx, storage.KindUser, "x", []byte("user"))).To(Succeed())

			body, err := driver.Get(ctx, storage.KindSession, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal("session"))
		})
	})

	Describe("List and Delete", func() {
		It("lists ids in order and removes records", func() {
			Expect(driver.Put(ctx, storage.KindSession, "b", []byte("{}"))).To(Succeed())
			Expect(driver.Put(ctx, storage.KindSession, "a", []byte("{}"))).To(Succeed())

			ids, err := driver.List(ctx, storage.KindSession)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"a", "b"}))

			Expect(driver.Delete(ctx, storage.KindSession, "a")).To(Succeed())
			Expect(driver.Delete(ctx, storage.KindSession, "missing")).To(Succeed())

			ids, err = driver.List(ctx, storage.KindSession)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"b"}))
		})

		It("returns an empty list for an empty kind", func() {
			ids, err := driver.List(ctx, storage.KindUser)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})
})
