// Package cli is the cobra command tree for the socrates binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
	"github.com/custodia-labs/socrates/internal/logger"
)

// TokenEnv is read when --token is not given.
const TokenEnv = "GITHUB_TOKEN"

var version = "dev"

// Global flags.
var (
	verbose     bool
	jsonOutput  bool
	projectFlag string
	tokenFlag   string
)

// Services wired by main.
var (
	syncHandler     driving.GitHubSyncHandler
	projectSync     driving.ProjectSyncService
	projectService  driving.ProjectService
	settingsService driving.SettingsService
)

// Services holds the driving ports the commands call.
type Services struct {
	Handler  driving.GitHubSyncHandler
	Sync     driving.ProjectSyncService
	Projects driving.ProjectService
	Settings driving.SettingsService
}

// SetServices injects the driving ports.
func SetServices(s *Services) {
	syncHandler = s.Handler
	projectSync = s.Sync
	projectService = s.Projects
	settingsService = s.Settings
}

// SetVersion sets the version reported by "socrates version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "socrates",
	Short: "Sync tutoring projects with GitHub",
	Long: `Socrates keeps tutoring projects in sync with GitHub repositories.

Import a repository as a project, pull remote changes, push local edits
(merging remote work and resolving conflicts), and run the individual
checks behind those workflows: token validity, repository access, file
sizes and merge conflicts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project ID (defaults to the current project)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "GitHub token (defaults to $"+TokenEnv+")")

	rootCmd.AddGroup(
		&cobra.Group{ID: "github", Title: "GitHub Sync:"},
		&cobra.Group{ID: "local", Title: "Projects and Settings:"},
		&cobra.Group{ID: "server", Title: "Servers:"},
	)
}

// Execute runs the command tree. Errors are printed with their classified
// message before being returned.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		PrintError(rootCmd.ErrOrStderr(), err.Error())
	}
	return err
}

// resolveToken returns --token, then $GITHUB_TOKEN, then prompts on a terminal.
func resolveToken(cmd *cobra.Command) (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	if tok := os.Getenv(TokenEnv); tok != "" {
		return tok, nil
	}
	if stdinIsTerminal() {
		cmd.PrintErr("GitHub token: ")
		tok := readPassword()
		cmd.PrintErrln()
		if tok != "" {
			return tok, nil
		}
	}
	return "", errNoToken
}

var errNoToken = fmt.Errorf("%w: pass --token or set %s", domain.ErrTokenRequired, TokenEnv)

// resolveProject returns the explicit argument, --project or the current project.
func resolveProject(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if projectFlag != "" {
		return projectFlag, nil
	}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err == nil && settings.CurrentProject != "" {
			return settings.CurrentProject, nil
		}
	}
	return "", errors.New("no project selected: pass a project ID, --project, or run 'socrates project use <id>'")
}
