package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "MCP server commands",
	GroupID: "server",
	Long:    `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can run the
GitHub sync checks and read project sync status.

Tools: github_check_token, github_check_repo_access,
github_validate_file_sizes, github_detect_conflicts, github_project_status.

By default the server communicates over stdio. Use --port to serve the
streamable HTTP transport instead.

Tools that talk to GitHub use the token passed in the call, falling back
to --token or $GITHUB_TOKEN.

Examples:
  # Stdio mode
  socrates mcp serve

  # HTTP mode
  socrates mcp serve --port 8081`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "P", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	token := tokenFlag
	if token == "" {
		token = os.Getenv(TokenEnv)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Handler:  syncHandler,
		Projects: projectService,
		Sync:     projectSync,
		Token:    token,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
