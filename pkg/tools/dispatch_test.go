package tools_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sparrow/pkg/tools"
)

func mustParse(line string) tools.Command {
	cmd, ok := tools.Parse(line)
	Expect(ok).To(BeTrue())
	return cmd
}

var _ = Describe("Toolbox dispatch", func() {
	var tb *tools.Toolbox

	BeforeEach(func() {
		fixed := time.Date(2026, time.October, 19, 8, 5, 3, 0, time.UTC)
		tb = tools.New(tools.WithClock(func() time.Time { return fixed }))
	})

	It("reports unknown commands with a help pointer", func() {
		out := tb.Dispatch(mustParse("/frobnicate"))
		Expect(out).To(ContainSubstring("Unknown command"))
		Expect(out).To(ContainSubstring("/frobnicate"))
		Expect(out).To(ContainSubstring("/help"))

		_, err := tb.Run(mustParse("/frobnicate"))
		var unknown tools.UnknownCommandError
		Expect(err).To(BeAssignableToTypeOf(unknown))
	})

	It("returns help", func() {
		Expect(tb.Dispatch(mustParse("/help"))).To(Equal(tools.Help()))
		Expect(tb.Dispatch(mustParse("/HELP"))).To(Equal(tools.Help()))
	})

	It("formats the time", func() {
		Expect(tb.Dispatch(mustParse("/time"))).To(Equal("Current time: 2026-10-19 08:05:03"))
	})

	Describe("calc", func() {
		It("evaluates an accepted expression", func() {
			Expect(tb.Dispatch(mustParse("/calc 2+2"))).To(Equal("2+2 = 4"))
		})

		It("rejects disallowed characters with an invalid-expression message", func() {
			out := tb.Dispatch(mustParse("/calc 2+2; rm -rf"))
			Expect(out).To(HavePrefix("Invalid expression:"))

			_, err := tb.Run(mustParse("/calc 2+2; rm -rf"))
			Expect(err).To(MatchError(tools.ErrInputRejected))
		})

		It("surfaces division by zero as a calculation error", func() {
			out := tb.Dispatch(mustParse("/calc 10/0"))
			Expect(out).To(Equal("Calculation error: division by zero"))
		})

		It("surfaces unbalanced parentheses as a calculation error", func() {
			Expect(tb.Dispatch(mustParse("/calc (1+2"))).To(HavePrefix("Calculation error:"))
		})

		It("requires an argument", func() {
			Expect(tb.Dispatch(mustParse("/calc"))).To(Equal("Usage: /calc <expression>"))
		})
	})

	Describe("cat", func() {
		It("requires an argument", func() {
			Expect(tb.Dispatch(mustParse("/cat"))).To(Equal("Usage: /cat <path>"))

			_, err := tb.Run(mustParse("/cat"))
			Expect(err).To(MatchError(tools.ErrMissingArgument))
		})

		It("turns filesystem failures into a message", func() {
			out := tb.Dispatch(mustParse("/cat /definitely/not/here"))
			Expect(out).To(HavePrefix("Error running /cat:"))
			Expect(out).To(ContainSubstring("path not found"))

			_, err := tb.Run(mustParse("/cat /definitely/not/here"))
			var execErr *tools.ExecutionError
			Expect(err).To(BeAssignableToTypeOf(execErr))
			Expect(err).To(MatchError(os.ErrNotExist))
		})

		It("reads a file", func() {
			file := filepath.Join(GinkgoT().TempDir(), "hello.txt")
			Expect(os.WriteFile(file, []byte("hi"), 0o600)).To(Succeed())
			Expect(tb.Dispatch(mustParse("/cat " + file))).To(HaveSuffix("hi"))
		})
	})

	It("lists a directory", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "x"), []byte("12"), 0o600)).To(Succeed())
		Expect(tb.Dispatch(mustParse("/ls " + dir))).To(ContainSubstring("[FILE] x (2 bytes)"))
	})

	It("reports system information without failing", func() {
		out := tb.Dispatch(mustParse("/sysinfo"))
		Expect(out).To(HavePrefix("System information:"))
		Expect(out).To(ContainSubstring("OS:           " + runtime.GOOS))
		Expect(out).To(ContainSubstring("Architecture: " + runtime.GOARCH))
		Expect(out).To(ContainSubstring("Go runtime:   " + runtime.Version()))
		for _, line := range strings.Split(out, "\n")[1:] {
			_, value, ok := strings.Cut(line, ":")
			Expect(ok).To(BeTrue())
			Expect(strings.TrimSpace(value)).NotTo(BeEmpty())
		}
	})

	It("reports disk space or an explicit unsupported notice", func() {
		out := tb.Dispatch(mustParse("/disk"))
		if runtime.GOOS == "windows" {
			Expect(out).To(ContainSubstring("Total:"))
		} else {
			Expect(out).To(Equal("Disk space check is unsupported on this platform (" + runtime.GOOS + ")."))
		}
	})
})

var _ = Describe("DiskUsage", func() {
	It("renders human readable sizes", func() {
		d := tools.DiskUsage{Path: `C:\`, Total: 100_000_000_000, Free: 25_000_000_000}
		out := d.String()
		Expect(out).To(ContainSubstring(`Disk C:\:`))
		Expect(out).To(ContainSubstring("Total: 100 GB"))
		Expect(out).To(ContainSubstring("Used:  75 GB (75.0%)"))
		Expect(out).To(ContainSubstring("Free:  25 GB"))
	})
})

var _ = Describe("Describe", func() {
	It("renders unknown errors generically", func() {
		Expect(tools.Describe(os.ErrClosed)).To(HavePrefix("Error: "))
	})
})
