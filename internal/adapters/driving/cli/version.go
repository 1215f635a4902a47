package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		if jsonOutput {
			printJSON(cmd.OutOrStdout(), map[string]string{ //nolint:errcheck // best effort
				"version": version,
				"go":      runtime.Version(),
			})
			return
		}
		cmd.Printf("socrates version %s (%s)\n", version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
