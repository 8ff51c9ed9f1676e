package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sparrow/pkg/logger"
)

// decodeLine parses a single JSON log line.
func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

// brokenWriter fails every write.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

var _ = Describe("New", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes key=value text by default", func() {
		logger.New(logger.WithWriter(buf)).Info("turn complete", "turns", 3)

		Expect(buf.String()).To(ContainSubstring("msg=\"turn complete\""))
		Expect(buf.String()).To(ContainSubstring("turns=3"))
	})

	It("drops debug records unless debug is on", func() {
		logger.New(logger.WithWriter(buf)).Debug("sanitized input")
		Expect(buf.String()).To(BeEmpty())

		logger.New(logger.WithWriter(buf), logger.WithDebug(true)).Debug("sanitized input")
		Expect(buf.String()).To(ContainSubstring("sanitized input"))
	})

	It("writes one JSON object per record", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatJSON))
		l.Warn("signature missing, auto-corrected", "session", "s-1")

		parsed := decodeLine(buf)
		Expect(parsed["level"]).To(Equal("WARN"))
		Expect(parsed["msg"]).To(Equal("signature missing, auto-corrected"))
		Expect(parsed["session"]).To(Equal("s-1"))
		Expect(parsed).NotTo(HaveKey(slog.SourceKey))
	})

	It("reports the caller when asked", func() {
		l := logger.New(
			logger.WithWriter(buf),
			logger.WithFormat(logger.FormatJSON),
			logger.WithSource(true),
		)
		l.Info("with source")

		Expect(decodeLine(buf)).To(HaveKey(slog.SourceKey))
	})

	It("renders the pretty format at the chosen level", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatPretty))
		l.Debug("quiet")
		l.Warn("primary model unavailable", "fallback", "qwen2.5:0.5b")

		Expect(buf.String()).NotTo(ContainSubstring("quiet"))
		Expect(buf.String()).To(ContainSubstring("primary model unavailable"))
		Expect(buf.String()).To(ContainSubstring("qwen2.5:0.5b"))
	})

	It("nests grouped attributes", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatJSON))
		l.WithGroup("tool").Info("ran", "name", "calc")

		group, ok := decodeLine(buf)["tool"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(group["name"]).To(Equal("calc"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level and safe to derive from", func() {
		l := logger.Nop()
		Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		Expect(func() {
			l.With("session", "s-1").WithGroup("g").Error("ignored")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("sends every record to each logger", func() {
		var text, js bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithFormat(logger.FormatJSON)),
		)
		l.Info("broadcast")

		Expect(text.String()).To(ContainSubstring("broadcast"))
		Expect(decodeLine(&js)["msg"]).To(Equal("broadcast"))
	})

	It("respects each logger's own level", func() {
		var quiet, verbose bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&quiet)),
			logger.New(logger.WithWriter(&verbose), logger.WithDebug(true)),
		)
		l.Debug("details")

		Expect(quiet.String()).To(BeEmpty())
		Expect(verbose.String()).To(ContainSubstring("details"))
	})

	It("carries With attributes to every logger", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithFormat(logger.FormatJSON)),
			logger.New(logger.WithWriter(&b), logger.WithFormat(logger.FormatJSON)),
		).With("session", "s-2")
		l.Info("started")

		Expect(decodeLine(&a)["session"]).To(Equal("s-2"))
		Expect(decodeLine(&b)["session"]).To(Equal("s-2"))
	})

	It("keeps delivering after one logger fails", func() {
		var ok bytes.Buffer
		broken := logger.New(logger.WithWriter(brokenWriter{}), logger.WithFormat(logger.FormatJSON))
		healthy := logger.New(logger.WithWriter(&ok), logger.WithFormat(logger.FormatJSON))

		h := logger.Multi(broken, healthy).Handler()
		err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))

		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(decodeLine(&ok)["msg"]).To(Equal("still here"))
	})

	It("skips nil loggers", func() {
		var buf bytes.Buffer
		logger.Multi(nil, logger.New(logger.WithWriter(&buf))).Info("one")
		Expect(buf.String()).To(ContainSubstring("one"))
	})
})
