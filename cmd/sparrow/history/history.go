// Package historycmder provides the history command for reviewing chat
// turns recorded in the SQLite audit store.
package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/sparrow/pkg/cliui"
	"github.com/papercomputeco/sparrow/pkg/config"
	"github.com/papercomputeco/sparrow/pkg/dotdir"
	"github.com/papercomputeco/sparrow/pkg/storage"
	"github.com/papercomputeco/sparrow/pkg/storage/sqlite"
	"github.com/papercomputeco/sparrow/pkg/utils"
)

// previewLen caps the message preview in the session listing.
const previewLen = 60

type historyCommander struct {
	configDir  string
	sqlitePath string
	list       bool
	full       bool
}

const historyLongDesc string = `Show recorded chat turns.

Turns are recorded only when storage.sqlite_path (or --sqlite) is set while
chatting. Without an argument the most recent session is shown; pass a
session ID to show another one, or --list to list all sessions.

Resetting a chat clears the model's memory but never the recorded history.

Examples:
  sparrow history
  sparrow history --list
  sparrow history 5f0c7a52-3d7e-4c1e-9a0e-2f1b8f6d2c11`

const historyShortDesc string = "Show recorded chat turns"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagSQLite})
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var sessionID string
			if len(args) == 1 {
				sessionID = args[0]
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), sessionID)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().BoolVarP(&cmder.list, "list", "l", false, "List all recorded sessions")
	cmd.Flags().BoolVar(&cmder.full, "full", false, "Print whole messages instead of previews in --list")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, w io.Writer, sessionID string) error {
	if c.sqlitePath == "" {
		return errors.New("no audit database configured; set storage.sqlite_path or pass --sqlite")
	}

	driver, err := sqlite.NewSQLiteDriver(c.sqlitePath)
	if err != nil {
		return fmt.Errorf("opening audit storage: %w", err)
	}
	defer driver.Close()

	if c.list {
		return c.listSessions(ctx, w, driver)
	}

	if sessionID == "" {
		state, err := dotdir.NewManager().LoadSessionState(c.configDir)
		if err != nil {
			return err
		}
		if state == nil {
			return errors.New("no recent session; pass a session ID or use --list")
		}
		sessionID = state.ID
	}

	return c.showSession(ctx, w, driver, sessionID)
}

func (c *historyCommander) listSessions(ctx context.Context, w io.Writer, driver storage.Driver) error {
	sessions, err := driver.Sessions(ctx)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No sessions recorded."))
		return nil
	}

	fmt.Fprintln(w)
	for _, s := range sessions {
		records, err := driver.List(ctx, s.ID)
		if err != nil {
			return err
		}

		first := utils.OneLine(records[0].User)
		if !c.full {
			first = utils.Truncate(first, previewLen)
		}

		fmt.Fprintf(w, "  %s  %s  %s\n      %s\n",
			cliui.NameStyle.Render(s.ID),
			cliui.ValueStyle.Render(fmt.Sprintf("%d turns", s.Turns)),
			cliui.DimStyle.Render(humanize.Time(s.StartedAt)),
			first,
		)
	}
	fmt.Fprintln(w)

	return nil
}

func (c *historyCommander) showSession(ctx context.Context, w io.Writer, driver storage.Driver, sessionID string) error {
	records, err := driver.List(ctx, sessionID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\n  %s %s\n\n",
		cliui.KeyStyle.Render("Session:"),
		cliui.NameStyle.Render(sessionID),
	)

	for _, r := range records {
		meta := fmt.Sprintf("#%d  %s", r.Seq, r.CreatedAt.Format("2006-01-02 15:04:05"))
		if r.Corrected {
			meta += "  signature corrected"
		}

		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render(meta))
		fmt.Fprintf(w, "  %s%s\n", cliui.UserPrompt, r.User)
		fmt.Fprintf(w, "  %s\n\n", r.Assistant)
	}

	return nil
}
