package inmemory_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sparrow/pkg/storage"
	"github.com/papercomputeco/sparrow/pkg/storage/inmemory"
	"github.com/papercomputeco/sparrow/pkg/storage/storagetest"
)

var _ = storagetest.DescribeDriver("In-memory", func() storage.Driver {
	return inmemory.NewDriver()
})

var _ = Describe("Driver", func() {
	It("returns copies that callers cannot mutate", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.Append(ctx, storagetest.NewRecord("s1", "hi", "[SPARROW]: hi"))).To(Succeed())

		records, err := d.List(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		records[0].Assistant = "tampered"

		again, err := d.List(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].Assistant).To(Equal("[SPARROW]: hi"))
	})

	It("is safe for concurrent sessions", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()

		var wg sync.WaitGroup
		for _, session := range []string{"a", "b", "c", "d"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				defer GinkgoRecover()
				for i := 0; i < 50; i++ {
					Expect(d.Append(ctx, storagetest.NewRecord(id, "u", "[SPARROW]: r"))).To(Succeed())
				}
			}(session)
		}
		wg.Wait()

		sessions, err := d.Sessions(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(4))
		for _, s := range sessions {
			Expect(s.Turns).To(Equal(50))
		}
	})
})
