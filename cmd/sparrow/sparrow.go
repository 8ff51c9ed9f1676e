// Package sparrowcmder
package sparrowcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/sparrow/cmd/sparrow/chat"
	configcmder "github.com/papercomputeco/sparrow/cmd/sparrow/config"
	historycmder "github.com/papercomputeco/sparrow/cmd/sparrow/history"
	toolcmder "github.com/papercomputeco/sparrow/cmd/sparrow/tool"
	versioncmder "github.com/papercomputeco/sparrow/cmd/version"
)

const sparrowLongDesc string = `Sparrow is a persona-locked agent for locally hosted models.

Messages are sanitized against prompt-injection phrasings before they reach
the model, and every response carries the persona signature.

Commands:
  sparrow chat       Start an interactive session
  sparrow tool       Run a local tool without the model
  sparrow history    Show recorded chat turns
  sparrow config     Manage persistent configuration`

const sparrowShortDesc string = "Sparrow - persona-locked local agent"

func NewSparrowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "sparrow",
		Short:        sparrowShortDesc,
		Long:         sparrowLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .sparrow/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(toolcmder.NewToolCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
