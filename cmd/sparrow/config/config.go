// Package configcmder provides the config command for managing persistent
// sparrow configuration stored in the .sparrow/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent sparrow configuration.

Configuration is stored as config.toml in the .sparrow/ directory and provides
default values for command flags. CLI flags and SPARROW_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  model.backend, model.command, model.upstream,
  model.primary, model.fallback, model.timeout_seconds,
  persona.signature, tools.list_limit, tools.read_limit,
  storage.sqlite_path, logging.file, logging.json

Use subcommands to get, set, or list configuration values:
  sparrow config set <key> <value>    Set a configuration value
  sparrow config get <key>            Get a configuration value
  sparrow config list                 List all configuration values

Examples:
  sparrow config set model.primary llama3.2
  sparrow config set storage.sqlite_path ~/.sparrow/sparrow.db
  sparrow config get persona.signature
  sparrow config list`

const configShortDesc string = "Manage persistent sparrow configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// validKeysCompletion completes the first argument with config keys.
func validKeysCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return configKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
