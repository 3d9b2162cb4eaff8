// Package configcmder provides the config command for managing persistent
// plexbot configuration stored in the .plexbot/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/plexbot/pkg/cliui"
	"github.com/papercomputeco/plexbot/pkg/config"
)

const configLongDesc string = `Manage persistent plexbot configuration.

Configuration is stored as config.toml in the .plexbot/ directory and provides
default values for command flags. CLI flags and PLEXBOT_ environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  perplexity.api_key, perplexity.endpoint, perplexity.model,
  perplexity.response_format, perplexity.timeout, perplexity.stream,
  chat.models, chat.model_select, chat.markdown,
  web.listen,
  tap.sqlite_path, tap.kafka_brokers, tap.kafka_topic, tap.workers

Use subcommands to get, set, or list configuration values:
  plexbot config set <key> <value>    Set a configuration value
  plexbot config get <key>            Get a configuration value
  plexbot config list                 List all configuration values

Examples:
  plexbot config set perplexity.api_key pplx-...
  plexbot config set chat.models sonar,sonar-pro,sonar-reasoning
  plexbot config get perplexity.model
  plexbot config list`

const configShortDesc string = "Manage persistent plexbot configuration"

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

func validateKey(key string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return nil
}

// displayValue masks secret values.
func displayValue(key, value string) string {
	if config.IsSecretKey(key) {
		return cliui.MaskSecret(value)
	}
	return value
}

func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
