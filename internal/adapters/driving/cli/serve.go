package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/socrates/internal/core/domain"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the HTTP API",
	GroupID: "server",
	Long: `Serve the GitHub sync workflows over HTTP.

Callers pass their GitHub token per request as
"Authorization: Bearer <token>". The listen address defaults to
server.addr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" && settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			addr = s.Server.Addr
		}
	}
	if addr == "" {
		addr = domain.DefaultAppSettings().Server.Addr
	}

	server := httpapi.NewServer(addr, &httpapi.Services{
		Sync:     projectSync,
		Projects: projectService,
	})
	fmt.Fprintf(cmd.OutOrStdout(), "Socrates API listening on %s\n", addr)
	return server.Run(cmd.Context())
}
