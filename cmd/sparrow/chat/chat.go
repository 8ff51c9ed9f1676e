// Package chatcmder provides the chat command: an interactive, persona-locked
// session with a locally hosted model.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/sparrow/pkg/agent"
	"github.com/papercomputeco/sparrow/pkg/cliui"
	"github.com/papercomputeco/sparrow/pkg/config"
	"github.com/papercomputeco/sparrow/pkg/dotdir"
	"github.com/papercomputeco/sparrow/pkg/gateway"
	"github.com/papercomputeco/sparrow/pkg/logger"
	"github.com/papercomputeco/sparrow/pkg/storage/sqlite"
	"github.com/papercomputeco/sparrow/pkg/tools"
)

// chatFlags are the registry flags chat binds into the viper chain.
var chatFlags = []string{
	config.FlagBackend,
	config.FlagCommand,
	config.FlagUpstream,
	config.FlagModel,
	config.FlagFallback,
	config.FlagTimeout,
	config.FlagSignature,
	config.FlagListLimit,
	config.FlagReadLimit,
	config.FlagSQLite,
	config.FlagLogFile,
}

type chatCommander struct {
	configDir string
	debug     bool
	message   string
	markdown  bool

	// flag targets; the effective values come from cfg
	backend    string
	command    string
	upstream   string
	model      string
	fallback   string
	signature  string
	sqlitePath string
	logFile    string
	timeout    uint
	listLimit  uint
	readLimit  uint

	cfg *config.Config

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive session with the local model.

Every message is sanitized before it reaches the model, and every response is
checked for the persona signature, which is added when missing. Lines starting
with "/" run local tools instead of the model; type /help to list them.

Type "reset" to clear the conversation and "exit" (or Ctrl+D) to quit.

The primary model is used when the runtime has it, otherwise the fallback.
When storage.sqlite_path is set, every turn is also written to that database
and can be reviewed with "sparrow history".

Examples:
  sparrow chat
  sparrow chat --model llama3.2 --fallback ""
  sparrow chat --backend http --upstream http://localhost:11434
  sparrow chat -M "what is the capital of France?"`

const chatShortDesc string = "Interactive persona-locked chat with a local model"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, chatFlags)
			cmder.cfg = config.FromViper(v)

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagCommand, &cmder.command)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagFallback, &cmder.fallback)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagSignature, &cmder.signature)
	config.AddUintFlag(cmd, config.Flags, config.FlagListLimit, &cmder.listLimit)
	config.AddUintFlag(cmd, config.Flags, config.FlagReadLimit, &cmder.readLimit)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)

	cmd.Flags().StringVarP(&cmder.message, "message", "M", "", "Send a single message (or /command) and exit")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render responses as markdown")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	gw, prober, err := c.newGateway()
	if err != nil {
		return err
	}

	model := c.resolveModel(ctx, prober)

	opts := []agent.Option{agent.WithLogger(c.logger)}
	if path := c.cfg.Storage.SQLitePath; path != "" {
		recorder, err := sqlite.NewSQLiteDriver(path)
		if err != nil {
			return fmt.Errorf("opening audit storage: %w", err)
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				c.logger.Error("failed to close storage", "error", err)
			}
		}()
		opts = append(opts, agent.WithRecorder(recorder))
	}

	a := agent.New(agent.Config{
		Model:     model,
		Signature: c.cfg.Persona.Signature,
		Timeout:   c.cfg.Timeout(),
	}, gw, opts...)

	if c.cfg.Storage.SQLitePath != "" {
		state := &dotdir.SessionState{
			ID:        a.SessionID(),
			Model:     model,
			StartedAt: time.Now(),
		}
		if err := dotdir.NewManager().SaveSessionState(state, c.configDir); err != nil {
			c.logger.Warn("failed to save session state", "error", err)
		}
	}

	r := &repl{
		agent: a,
		toolbox: tools.New(
			tools.WithListLimit(int(c.cfg.Tools.ListLimit)),
			tools.WithReadLimit(int(c.cfg.Tools.ReadLimit)),
		),
		in:  c.in,
		out: c.out,
	}
	if c.markdown {
		r.render = c.renderMarkdown
	}
	if c.interactive() {
		r.think = func(fn func()) { cliui.Spin(c.out, "Thinking...", fn) }
	}

	if c.message != "" {
		r.handle(ctx, c.message)
		return nil
	}

	fmt.Fprintln(c.out, cliui.Banner("SPARROW - Mini Local Agent",
		"Model: "+model,
		"Type 'exit' to quit, 'reset' to clear memory, /help for tools",
	))
	fmt.Fprintln(c.out)

	return r.run(ctx)
}

// setupLogger logs pretty to stderr and, with logging.file set, JSON to that
// file as well. The returned func closes the file.
func (c *chatCommander) setupLogger() (func(), error) {
	pretty := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(logger.FormatPretty),
		logger.WithWriter(c.errOut),
	)

	if c.cfg.Logging.File == "" {
		c.logger = pretty
		return func() {}, nil
	}

	f, err := os.OpenFile(c.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(logger.FormatJSON),
		logger.WithSource(c.debug),
		logger.WithWriter(f),
	)
	c.logger = logger.Multi(pretty, file)

	return func() { _ = f.Close() }, nil
}

func (c *chatCommander) newGateway() (gateway.Generator, gateway.Prober, error) {
	switch c.cfg.Model.Backend {
	case config.BackendProcess:
		g := gateway.NewProcessGateway(c.cfg.Model.Command,
			gateway.WithProcessLogger(c.logger),
		)
		return g, g, nil

	case config.BackendHTTP:
		g := gateway.NewHTTPGateway(c.cfg.Model.Upstream,
			gateway.WithHTTPLogger(c.logger),
		)
		return g, g, nil

	default:
		return nil, nil, fmt.Errorf("unknown model backend %q (expected %s or %s)",
			c.cfg.Model.Backend, config.BackendProcess, config.BackendHTTP)
	}
}

// resolveModel picks the primary model when the runtime has it, otherwise the
// fallback. It never fails; an unreachable runtime surfaces on the first turn.
func (c *chatCommander) resolveModel(ctx context.Context, p gateway.Prober) string {
	primary, fallback := c.cfg.Model.Primary, c.cfg.Model.Fallback

	var model string
	resolve := func() error {
		model = gateway.Resolve(ctx, p, primary, fallback)
		if model != primary {
			return fmt.Errorf("%s unavailable, using %s", primary, model)
		}
		return nil
	}

	var err error
	if c.interactive() && c.message == "" {
		err = cliui.Step(c.out, "Resolving model", resolve)
	} else {
		err = resolve()
	}
	if err != nil {
		c.logger.Warn("primary model unavailable",
			"primary", primary,
			"fallback", model,
		)
	}

	return model
}

func (c *chatCommander) renderMarkdown(text string) string {
	rendered, err := cliui.RenderReply(c.cfg.Persona.Signature, text)
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
		return text
	}
	return rendered
}

// interactive reports whether output goes to a terminal.
func (c *chatCommander) interactive() bool {
	f, ok := c.out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
