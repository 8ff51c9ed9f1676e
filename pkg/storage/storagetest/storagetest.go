// Package storagetest holds the shared behaviour every storage.Driver must
// satisfy, written as Ginkgo specs.
package storagetest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sparrow/pkg/storage"
)

// NewRecord builds an unsaved record for session.
func NewRecord(session, user, assistant string) *storage.Record {
	return &storage.Record{
		SessionID: session,
		User:      user,
		Assistant: assistant,
	}
}

// DescribeDriver registers the driver conformance specs. newDriver is called
// before every spec; the returned driver is closed after it.
func DescribeDriver(name string, newDriver func() storage.Driver) bool {
	return Describe(name+" driver conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("assigns ID, sequence and timestamp on append", func() {
			rec := NewRecord("s1", "hi", "[SPARROW]: hello")
			Expect(driver.Append(ctx, rec)).To(Succeed())

			Expect(rec.ID).NotTo(BeEmpty())
			Expect(rec.Seq).To(Equal(1))
			Expect(rec.CreatedAt).NotTo(BeZero())
		})

		It("lists records of a session in append order", func() {
			for _, text := range []string{"one", "two", "three"} {
				Expect(driver.Append(ctx, NewRecord("s1", text, "[SPARROW]: "+text))).To(Succeed())
			}
			Expect(driver.Append(ctx, NewRecord("s2", "other", "[SPARROW]: other"))).To(Succeed())

			records, err := driver.List(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			for i, r := range records {
				Expect(r.Seq).To(Equal(i + 1))
				Expect(r.SessionID).To(Equal("s1"))
			}
			Expect(records[0].User).To(Equal("one"))
			Expect(records[2].Assistant).To(Equal("[SPARROW]: three"))
		})

		It("keeps the corrected flag and timestamp", func() {
			at := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
			rec := NewRecord("s1", "hi", "[SPARROW]: fixed")
			rec.Corrected = true
			rec.CreatedAt = at
			Expect(driver.Append(ctx, rec)).To(Succeed())

			records, err := driver.List(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records[0].Corrected).To(BeTrue())
			Expect(records[0].CreatedAt.Equal(at)).To(BeTrue())
		})

		It("returns NotFoundError for an unknown session", func() {
			_, err := driver.List(ctx, "missing")
			var notFound storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFound))
			Expect(err.Error()).To(ContainSubstring("missing"))
		})

		It("summarises sessions oldest first", func() {
			early := NewRecord("early", "a", "[SPARROW]: a")
			early.CreatedAt = time.Now().Add(-time.Hour)
			Expect(driver.Append(ctx, early)).To(Succeed())
			Expect(driver.Append(ctx, NewRecord("late", "b", "[SPARROW]: b"))).To(Succeed())
			Expect(driver.Append(ctx, NewRecord("late", "c", "[SPARROW]: c"))).To(Succeed())

			sessions, err := driver.Sessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(2))
			Expect(sessions[0].ID).To(Equal("early"))
			Expect(sessions[0].Turns).To(Equal(1))
			Expect(sessions[1].ID).To(Equal("late"))
			Expect(sessions[1].Turns).To(Equal(2))
		})

		It("rejects nil records", func() {
			err := driver.Append(ctx, nil)
			Expect(err).To(MatchError(ContainSubstring("nil record")))
		})
	})
}
