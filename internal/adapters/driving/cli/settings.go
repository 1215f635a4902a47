package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Manage application settings",
	GroupID: "local",
	Long: `View and change sync behaviour: size limits, retries, timeouts and the
large file and conflict strategies.

Settings are stored in ~/.socrates/config.toml ($SOCRATES_CONFIG_DIR
overrides the directory). GitHub tokens are never stored.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting. Values are validated before they are saved.

Keys:
  sync.max_file_size        size limit per file, e.g. 100MB
  sync.max_retries          retries after the first attempt
  sync.timeout_per_attempt  e.g. 5m
  sync.backoff_base         first retry delay, doubled per retry, e.g. 1s
  sync.large_file_strategy  exclude, fail or warn
  sync.conflict_strategy    ours, theirs or manual
  sync.ignore_patterns      comma-separated globs, e.g. "**/*.log,build/**"
  sync.default_branch       branch for new repositories
  github.base_url           GitHub Enterprise API URL
  server.addr               HTTP listen address
  project.current           default project ID`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

var errSettingsNotConfigured = errors.New("settings service not configured")

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, settings)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")

	PrintSection(w, "Sync")
	s := settings.Sync
	PrintLabelValue(w, "Max file size", formatBytes(s.MaxFileSize))
	PrintLabelValue(w, "Max retries", fmt.Sprint(s.MaxRetries))
	PrintLabelValue(w, "Timeout per attempt", s.TimeoutPerAttempt.String())
	PrintLabelValue(w, "Backoff base", s.BackoffBase.String())
	PrintLabelValue(w, "Large file strategy", string(s.LargeFileStrategy))
	PrintLabelValue(w, "Conflict strategy", string(s.ConflictStrategy))
	PrintLabelValue(w, "Ignore patterns", orNone(strings.Join(s.IgnorePatterns, ", ")))
	PrintLabelValue(w, "Default branch", s.DefaultBranch)

	PrintSection(w, "GitHub")
	PrintLabelValue(w, "API base URL", orDefault(settings.GitHub.BaseURL, "https://api.github.com/"))
	PrintLabelValue(w, "Token", tokenSource())

	PrintSection(w, "Server")
	PrintLabelValue(w, "Address", settings.Server.Addr)

	PrintSection(w, "Project")
	PrintLabelValue(w, "Current", orNone(settings.CurrentProject))
	cmd.Println()

	if err := s.Validate(); err != nil {
		PrintWarning(w, err.Error())
		cmd.Println("Run 'socrates settings set <key> <value>' to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidStrategy) {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", key, value))
	if key == "sync.max_file_size" || key == "sync.max_retries" || key == "sync.timeout_per_attempt" ||
		key == "sync.backoff_base" || key == "github.base_url" {
		cmd.Println("Takes effect on the next command.")
	}
	return nil
}

// tokenSource describes where a token would come from, never the token itself.
func tokenSource() string {
	switch {
	case tokenFlag != "":
		return maskToken(tokenFlag) + " (--token)"
	case os.Getenv(TokenEnv) != "":
		return maskToken(os.Getenv(TokenEnv)) + " ($" + TokenEnv + ")"
	default:
		return "(not set)"
	}
}

func orNone(s string) string {
	return orDefault(s, "(none)")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
