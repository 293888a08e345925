// Package configcmder provides the config command for managing persistent
// nexus configuration stored in the .nexus/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yash3561/Nexus/pkg/config"
)

const configLongDesc string = `Manage persistent nexus configuration.

Configuration is stored as config.toml in the .nexus/ directory. Values
resolve with the precedence: flags, NEXUS_* environment variables (and vendor
names such as GOOGLE_API_KEY, TAVILY_API_KEY, NEWS_API_KEY, ELEVENLABS_API_KEY
and CONFLUENT_BOOTSTRAP_SERVERS), config.toml, then built-in defaults.

Keys use dotted notation matching the TOML section structure, for example
api.listen, storage.provider, memory.window, llm.provider, llm.model,
search.api_key, realtime.city, tts.voice_id and eventbus.brokers.

Use subcommands to get, set, or list configuration values:
  nexus config set <key> <value>    Set a configuration value
  nexus config get <key>            Get a configuration value
  nexus config list                 List all configuration values

Examples:
  nexus config set llm.provider openai
  nexus config set memory.window 40
  nexus config get llm.model
  nexus config list`

const configShortDesc string = "Manage persistent nexus configuration"

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

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// mask hides all but the last four characters of a secret.
func mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}

func display(key, value string) string {
	if config.IsSecretKey(key) {
		return mask(value)
	}
	return value
}
