// Package toolcmder provides the tool command, which runs a single local tool
// without starting a model session.
package toolcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sparrow/pkg/config"
	"github.com/papercomputeco/sparrow/pkg/tools"
)

type toolCommander struct {
	listLimit uint
	readLimit uint
}

const toolLongDesc string = `Run a single local tool and print its output.

The tools are the same ones available as /commands inside "sparrow chat".
Everything after the tool name is passed as its argument.

Examples:
  sparrow tool help
  sparrow tool ls ./src
  sparrow tool cat README.md
  sparrow tool calc "(2 + 3) * 4"
  sparrow tool time`

const toolShortDesc string = "Run a local tool without the model"

func NewToolCmd() *cobra.Command {
	cmder := &toolCommander{}

	cmd := &cobra.Command{
		Use:   "tool <name> [argument...]",
		Short: toolShortDesc,
		Long:  toolLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListLimit,
				config.FlagReadLimit,
			})

			cfg := config.FromViper(v)
			cmder.listLimit = cfg.Tools.ListLimit
			cmder.readLimit = cfg.Tools.ReadLimit
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			names := make([]string, 0, len(tools.Kinds()))
			for _, k := range tools.Kinds() {
				names = append(names, k.Name())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
	}

	config.AddUintFlag(cmd, config.Flags, config.FlagListLimit, &cmder.listLimit)
	config.AddUintFlag(cmd, config.Flags, config.FlagReadLimit, &cmder.readLimit)

	return cmd
}

func (c *toolCommander) run(cmd *cobra.Command, args []string) error {
	line := tools.Prefix + strings.Join(args, " ")
	parsed, _ := tools.Parse(line)

	tb := tools.New(
		tools.WithListLimit(int(c.listLimit)),
		tools.WithReadLimit(int(c.readLimit)),
	)

	out, err := tb.Run(parsed)
	if err != nil {
		return errors.New(tools.Describe(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
