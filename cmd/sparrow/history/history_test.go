package historycmder_test

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	historycmder "github.com/papercomputeco/sparrow/cmd/sparrow/history"
	"github.com/papercomputeco/sparrow/pkg/dotdir"
	"github.com/papercomputeco/sparrow/pkg/storage"
	"github.com/papercomputeco/sparrow/pkg/storage/sqlite"
)

var _ = Describe("NewHistoryCmd", func() {
	var (
		configDir string
		dbPath    string
		out       *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := historycmder.NewHistoryCmd()
		cmd.Flags().String("config-dir", configDir, "")
		cmd.SetArgs(args)
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		return cmd
	}

	seed := func(session string, turns ...[2]string) {
		d, err := sqlite.NewSQLiteDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		for _, t := range turns {
			Expect(d.Append(context.Background(), &storage.Record{
				SessionID: session,
				User:      t[0],
				Assistant: t[1],
			})).To(Succeed())
		}
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		dbPath = filepath.Join(configDir, "audit.db")
		out = &bytes.Buffer{}
	})

	It("requires a configured database", func() {
		err := newCmd().Execute()
		Expect(err).To(MatchError(ContainSubstring("no audit database configured")))
	})

	It("shows the most recent session", func() {
		seed("s-1", [2]string{"hello", "[SPARROW]: hi"}, [2]string{"bye", "[SPARROW]: bye"})
		Expect(dotdir.NewManager().SaveSessionState(&dotdir.SessionState{
			ID:        "s-1",
			StartedAt: time.Now(),
		}, configDir)).To(Succeed())

		Expect(newCmd("--sqlite", dbPath).Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("s-1"))
		Expect(out.String()).To(ContainSubstring("[SPARROW]: hi"))
		Expect(out.String()).To(ContainSubstring("#2"))
	})

	It("shows a session by ID", func() {
		seed("s-2", [2]string{"what time is it", "[SPARROW]: noon"})

		Expect(newCmd("--sqlite", dbPath, "s-2").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("what time is it"))
	})

	It("fails for an unknown session", func() {
		seed("s-1", [2]string{"hello", "[SPARROW]: hi"})

		err := newCmd("--sqlite", dbPath, "missing").Execute()
		Expect(err).To(MatchError(ContainSubstring("session not found: missing")))
	})

	It("fails without a recent session", func() {
		seed("s-1", [2]string{"hello", "[SPARROW]: hi"})

		err := newCmd("--sqlite", dbPath).Execute()
		Expect(err).To(MatchError(ContainSubstring("no recent session")))
	})

	It("lists sessions with previews", func() {
		seed("s-1", [2]string{"first message\nwith a newline", "[SPARROW]: ok"})
		seed("s-2", [2]string{"second", "[SPARROW]: ok"}, [2]string{"again", "[SPARROW]: ok"})

		Expect(newCmd("--sqlite", dbPath, "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("s-1"))
		Expect(out.String()).To(ContainSubstring("first message with a newline"))
		Expect(out.String()).To(ContainSubstring("2 turns"))
	})

	It("reports an empty database", func() {
		Expect(newCmd("--sqlite", dbPath, "--list").Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No sessions recorded."))
	})
})
