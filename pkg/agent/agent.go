// Package agent owns one persona-locked conversation: every message is
// sanitized, sent to a gateway, checked for the signature marker and appended
// to the transcript.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/sparrow/pkg/gateway"
	"github.com/papercomputeco/sparrow/pkg/logger"
	"github.com/papercomputeco/sparrow/pkg/sanitize"
	"github.com/papercomputeco/sparrow/pkg/signature"
	"github.com/papercomputeco/sparrow/pkg/storage"
)

const (
	timeoutText     = "[TIMEOUT] Request took too long. Try a simpler question."
	errorTextPrefix = "[ERROR] Failed to process: "
	resetText       = "Memory cleared. Ready for new conversation."
	greetingText    = "Online. Running on local hardware. How can I help?"
	farewellText    = "Goodbye, Architect."
	interruptedText = "Interrupted. Goodbye."
)

// Config holds the per-agent settings.
type Config struct {
	// Model is the model name passed to the gateway.
	Model string

	// Signature is the persona marker. Empty means signature.Default.
	Signature string

	// Timeout bounds one generation. Zero means gateway.DefaultTimeout.
	Timeout time.Duration

	// Sanitizer filters inbound text. Nil means the default rule set.
	Sanitizer *sanitize.Sanitizer
}

// Agent is a single conversation. It is not safe for concurrent use.
type Agent struct {
	model     string
	marker    string
	timeout   time.Duration
	sanitizer *sanitize.Sanitizer
	generator gateway.Generator

	sessionID string
	recorder  storage.Driver
	logger    *slog.Logger
	now       func() time.Time

	transcript []Turn
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = l
	}
}

// WithRecorder mirrors every turn to d.
func WithRecorder(d storage.Driver) Option {
	return func(a *Agent) {
		a.recorder = d
	}
}

// WithSessionID sets the session ID used for recorded turns. The default is
// a random UUID.
func WithSessionID(id string) Option {
	return func(a *Agent) {
		a.sessionID = id
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

// New creates an Agent that generates with g.
func New(cfg Config, g gateway.Generator, opts ...Option) *Agent {
	a := &Agent{
		model:     cfg.Model,
		marker:    cfg.Signature,
		timeout:   cfg.Timeout,
		sanitizer: cfg.Sanitizer,
		generator: g,
		logger:    logger.Nop(),
		now:       time.Now,
	}
	if a.marker == "" {
		a.marker = signature.Default
	}
	if a.sanitizer == nil {
		a.sanitizer = sanitize.New()
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.sessionID == "" {
		a.sessionID = uuid.NewString()
	}
	a.logger = a.logger.With("session", a.sessionID)

	return a
}

// Chat runs one turn and returns the assistant text, which always starts with
// the signature marker. Gateway failures become marker-prefixed error text
// and are recorded like any other turn.
func (a *Agent) Chat(ctx context.Context, message string) string {
	clean := a.sanitizer.Sanitize(message)
	if clean != message {
		a.logger.Debug("input sanitized",
			"rules", a.sanitizer.Matches(message),
		)
	}

	start := a.now()
	resp := a.generator.Generate(ctx, a.model, clean, a.timeout)

	var text string
	switch resp.Kind {
	case gateway.KindOK:
		text = resp.Text
	case gateway.KindTimeout:
		a.logger.Warn("generation timed out",
			"model", a.model,
			"timeout", a.timeout,
		)
		text = signature.Prefix(a.marker, timeoutText)
	default:
		a.logger.Error("generation failed",
			"model", a.model,
			"error", resp.Err,
		)
		text = signature.Prefix(a.marker, errorTextPrefix+resp.Message())
	}

	valid, text := signature.Validate(a.marker, text)
	if !valid {
		a.logger.Warn("signature missing, auto-corrected",
			"model", a.model,
		)
	}

	turn := Turn{
		User:      clean,
		Assistant: text,
		CreatedAt: a.now(),
	}
	a.transcript = append(a.transcript, turn)

	a.logger.Debug("turn complete",
		"kind", resp.Kind.String(),
		"duration", turn.CreatedAt.Sub(start),
		"turns", len(a.transcript),
	)

	a.record(ctx, turn, !valid)

	return text
}

func (a *Agent) record(ctx context.Context, turn Turn, corrected bool) {
	if a.recorder == nil {
		return
	}

	rec := &storage.Record{
		SessionID: a.sessionID,
		User:      turn.User,
		Assistant: turn.Assistant,
		Corrected: corrected,
		CreatedAt: turn.CreatedAt,
	}
	// Record even when ctx was canceled mid-turn.
	if err := a.recorder.Append(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.Error("failed to record turn",
			"error", err,
		)
	}
}

// Reset empties the transcript and returns the confirmation text.
func (a *Agent) Reset() string {
	a.transcript = nil
	a.logger.Debug("transcript reset")
	return signature.Prefix(a.marker, resetText)
}

// Transcript returns a copy of the turns so far.
func (a *Agent) Transcript() []Turn {
	out := make([]Turn, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Len is the number of turns in the transcript.
func (a *Agent) Len() int {
	return len(a.transcript)
}

// SessionID identifies the agent's recorded turns.
func (a *Agent) SessionID() string {
	return a.sessionID
}

// Model is the model the agent generates with.
func (a *Agent) Model() string {
	return a.model
}

// Signature is the agent's persona marker.
func (a *Agent) Signature() string {
	return a.marker
}

// Greeting is shown when a chat session starts.
func (a *Agent) Greeting() string {
	return signature.Prefix(a.marker, greetingText)
}

// Farewell is shown when the user exits.
func (a *Agent) Farewell() string {
	return signature.Prefix(a.marker, farewellText)
}

// Interrupted is shown when the session is interrupted.
func (a *Agent) Interrupted() string {
	return signature.Prefix(a.marker, interruptedText)
}
