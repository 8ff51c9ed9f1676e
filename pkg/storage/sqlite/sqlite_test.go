package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sparrow/pkg/storage"
	"github.com/papercomputeco/sparrow/pkg/storage/sqlite"
	"github.com/papercomputeco/sparrow/pkg/storage/storagetest"
)

var _ = storagetest.DescribeDriver("SQLite", func() storage.Driver {
	d, err := sqlite.NewSQLiteDriver(":memory:")
	Expect(err).NotTo(HaveOccurred())
	return d
})

var _ = Describe("SQLiteDriver", func() {
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

		It("keeps records across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "audit.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Append(ctx, storagetest.NewRecord("s1", "hi", "[SPARROW]: hi"))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			Expect(s.Append(ctx, storagetest.NewRecord("s1", "again", "[SPARROW]: again"))).To(Succeed())
			records, err := s.List(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[1].Seq).To(Equal(2))
		})

		It("fails for an unwritable path", func() {
			_, err := sqlite.NewSQLiteDriver(filepath.Join(GinkgoT().TempDir(), "missing", "dir", "x.db"))
			Expect(err).To(HaveOccurred())
		})
	})
})
