package storage_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mindtrailco/mindtrail/pkg/storage"
)

var _ = Describe("SQLiteStore", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("NewSQLiteStore", func() {
		It("creates the database file on first open", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			store, err := storage.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer store.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reopens an existing database with its sessions intact", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			store, err := storage.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			session := sampleSession("session_1", 1700000001000)
			Expect(store.Save(ctx, session)).To(Succeed())
			Expect(store.Close()).To(Succeed())

			reopened, err := storage.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			loaded, err := reopened.Load(ctx, session.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(session))

			current, err := reopened.CurrentSessionID(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(Equal(session.ID))
		})
	})

	Describe("corrupt records", func() {
		var (
			store  *storage.SQLiteStore
			dbPath string
		)

		BeforeEach(func() {
			dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")

			var err error
			store, err = storage.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Save(ctx, sampleSession("session_ok", 1700000001000))).To(Succeed())

			// Scribble over a second record directly, bypassing the store.
			db, err := sql.Open("sqlite3", dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer db.Close()
			_, err = db.Exec(
				`INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)`,
				"session_bad", "{not json", int64(1700000002000),
			)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			store.Close()
		})

		It("treats a corrupt record as not found", func() {
			_, err := store.Load(ctx, "session_bad")

			var notFound storage.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFound))
		})

		It("skips corrupt records when listing", func() {
			sessions, err := store.ListAll(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
			Expect(sessions[0].ID).To(Equal("session_ok"))
		})
	})
})
