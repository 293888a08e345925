// Package nexuscmder is the root of the nexus command tree.
package nexuscmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/Yash3561/Nexus/cmd/nexus/chat"
	configcmder "github.com/Yash3561/Nexus/cmd/nexus/config"
	initcmder "github.com/Yash3561/Nexus/cmd/nexus/init"
	producercmder "github.com/Yash3561/Nexus/cmd/nexus/producer"
	servecmder "github.com/Yash3561/Nexus/cmd/nexus/serve"
	versioncmder "github.com/Yash3561/Nexus/cmd/version"
)

const nexusLongDesc string = `Nexus is a conversational assistant backend with memory, real-time
awareness and web search.

Run services using:
  nexus serve        Run the API server and real-time feed consumer
  nexus producer     Publish weather, news and alerts to the event bus
  nexus chat         Talk to a running server from the terminal`

const nexusShortDesc string = "Nexus - conversational assistant backend"

func NewNexusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "nexus",
		Short:        nexusShortDesc,
		Long:         nexusLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .nexus/ directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(producercmder.NewProducerCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
