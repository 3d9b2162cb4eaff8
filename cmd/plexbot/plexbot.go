// Package plexbotcmder
package plexbotcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/plexbot/cmd/plexbot/chat"
	configcmder "github.com/papercomputeco/plexbot/cmd/plexbot/config"
	servecmder "github.com/papercomputeco/plexbot/cmd/plexbot/serve"
	versioncmder "github.com/papercomputeco/plexbot/cmd/version"
)

const plexbotLongDesc string = `plexbot is a chat front end for the Perplexity API.

Chat using:
  plexbot serve      Serve the browser chat
  plexbot chat       Chat in the terminal

Configure using:
  plexbot config set perplexity.api_key <key>`

const plexbotShortDesc string = "plexbot - Perplexity chat"

func NewPlexbotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "plexbot",
		Short:        plexbotShortDesc,
		Long:         plexbotLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.plexbot or ~/.plexbot)")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
