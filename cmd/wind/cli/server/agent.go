package server

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwantia/wind/internal/agent"
	config "github.com/mwantia/wind/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the wind HTTP server",
		Long: `Start the wind HTTP server.

Serves the public blog routes, the RSS feed, local media and the admin API
used to upload gallery archives and manage posts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			if address, _ := cmd.Flags().GetString("address"); address != "" {
				cfg.HTTP.Address = address
			}

			return agent.NewAgent(cfg).Serve(cmd.Context())
		},
	}

	cmd.Flags().String("address", "", "override the listen address (http.address)")

	return cmd
}
