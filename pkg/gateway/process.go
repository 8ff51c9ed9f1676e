package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/papercomputeco/sparrow/pkg/logger"
)

const (
	// DefaultCommand is the inference CLI.
	DefaultCommand = "ollama"

	probeTimeout = 10 * time.Second

	// waitDelay bounds how long a killed process may keep its pipes open.
	waitDelay = 2 * time.Second
)

// ProcessGateway runs "<command> run <model> <prompt>" and captures stdout.
type ProcessGateway struct {
	command string
	logger  *slog.Logger
}

// ProcessOption configures a ProcessGateway.
type ProcessOption func(*ProcessGateway)

// WithProcessLogger sets the logger used for debug output.
func WithProcessLogger(l *slog.Logger) ProcessOption {
	return func(g *ProcessGateway) {
		g.logger = l
	}
}

// NewProcessGateway returns a gateway invoking command, DefaultCommand when
// empty.
func NewProcessGateway(command string, opts ...ProcessOption) *ProcessGateway {
	if command == "" {
		command = DefaultCommand
	}
	g := &ProcessGateway{
		command: command,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate invokes the runtime once. Stdout, trimmed, is the completion.
func (g *ProcessGateway) Generate(ctx context.Context, model, prompt string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, effectiveTimeout(timeout))
	defer cancel()

	start := time.Now()
	stdout, err := g.run(ctx, prompt, "run", model)
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		g.logger.Debug("generation timed out",
			"command", g.command,
			"model", model,
			"elapsed", elapsed,
		)
		return Timeout()
	}
	if err != nil {
		g.logger.Debug("generation failed",
			"command", g.command,
			"model", model,
			"error", err,
		)
		return Failure(err)
	}

	g.logger.Debug("generation complete",
		"command", g.command,
		"model", model,
		"elapsed", elapsed,
		"bytes", len(stdout),
	)
	return OK(strings.TrimSpace(stdout))
}

// Available runs "<command> show <model>" and reports whether it succeeded.
func (g *ProcessGateway) Available(ctx context.Context, model string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := g.run(ctx, "", "show", model)
	if err != nil {
		g.logger.Debug("model unavailable", "model", model, "error", err)
		return false
	}
	return true
}

// run executes the command with stdin as its input. Prompts go through stdin
// so a leading dash is never read as a flag.
func (g *ProcessGateway) run(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.command, args...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText == "" {
			return "", fmt.Errorf("%s %s: %w", g.command, args[0], err)
		}
		return "", fmt.Errorf("%s %s: %w: %s", g.command, args[0], err, errText)
	}
	return stdout.String(), nil
}
