package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

var githubCmd = &cobra.Command{
	Use:     "github",
	Short:   "Synchronise projects with GitHub",
	GroupID: "github",
	Long: `Import, pull, push and sync projects against GitHub repositories.

The token is taken from --token or $GITHUB_TOKEN and is used for the
command only; it is never written to disk.`,
}

var githubImportCmd = &cobra.Command{
	Use:   "import <repository> [name]",
	Short: "Import a repository as a new project",
	Long: `Clone a repository and store its files as a new project.

The repository may be given as owner/name or as an HTTPS or SSH URL.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGitHubImport,
}

var githubPullCmd = &cobra.Command{
	Use:   "pull [project-id]",
	Short: "Replace project files with the remote branch",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGitHubPull,
}

var githubPushCmd = &cobra.Command{
	Use:   "push [project-id]",
	Short: "Commit and push project files",
	Long: `Commit the stored project files and push them to the linked repository.

Remote commits made since the last sync are merged first. Conflicts are
resolved with sync.conflict_strategy; anything left unresolved aborts the
push. Use --create to create the repository for an unlinked project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGitHubPush,
}

var githubSyncCmd = &cobra.Command{
	Use:   "sync [project-id]",
	Short: "Push project files and refresh them from the merged result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGitHubSync,
}

var githubStatusCmd = &cobra.Command{
	Use:   "status [project-id]",
	Short: "Show a project's repository and last sync",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGitHubStatus,
}

func init() {
	githubImportCmd.Flags().String("branch", "", "Branch to import (default: the repository's default branch)")
	githubPushCmd.Flags().StringP("message", "m", "", "Commit message")
	githubPushCmd.Flags().Bool("create", false, "Create the repository if the project is not linked")
	githubPushCmd.Flags().String("repo-name", "", "Name for a created repository (default: derived from the project name)")
	githubPushCmd.Flags().Bool("private", false, "Make a created repository private")
	githubSyncCmd.Flags().StringP("message", "m", "", "Commit message")

	githubCmd.AddCommand(githubImportCmd)
	githubCmd.AddCommand(githubPullCmd)
	githubCmd.AddCommand(githubPushCmd)
	githubCmd.AddCommand(githubSyncCmd)
	githubCmd.AddCommand(githubStatusCmd)
	rootCmd.AddCommand(githubCmd)
}

var errSyncNotConfigured = errors.New("sync service not configured")

func runGitHubImport(cmd *cobra.Command, args []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}

	req := driving.ImportRequest{URL: args[0]}
	if len(args) > 1 {
		req.Name = args[1]
	}
	if req.Branch, err = cmd.Flags().GetString("branch"); err != nil {
		return fmt.Errorf("getting branch flag: %w", err)
	}

	if !jsonOutput {
		cmd.Printf("Importing %s...\n", req.URL)
	}
	report, err := projectSync.Import(cmd.Context(), token, req)
	if err != nil {
		return classify(fmt.Errorf("import failed: %w", err))
	}
	return printReport(cmd.OutOrStdout(), report)
}

func runGitHubPull(cmd *cobra.Command, args []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}

	report, err := projectSync.Pull(cmd.Context(), token, projectID)
	if err != nil {
		return classify(fmt.Errorf("pull failed: %w", err))
	}
	return printReport(cmd.OutOrStdout(), report)
}

func runGitHubPush(cmd *cobra.Command, args []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}

	// Flags are defined in init; lookups cannot fail.
	flags := cmd.Flags()
	message, _ := flags.GetString("message")
	create, _ := flags.GetBool("create")
	repoName, _ := flags.GetString("repo-name")
	private, _ := flags.GetBool("private")

	report, err := projectSync.Push(cmd.Context(), token, projectID, driving.PushRequest{
		Message:  message,
		Create:   create,
		RepoName: repoName,
		Private:  private,
	})
	if err != nil {
		return classify(fmt.Errorf("push failed: %w", err))
	}
	return printReport(cmd.OutOrStdout(), report)
}

func runGitHubSync(cmd *cobra.Command, args []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}
	message, _ := cmd.Flags().GetString("message") //nolint:errcheck // flag is defined in init

	report, err := projectSync.Sync(cmd.Context(), token, projectID, message)
	if err != nil {
		return classify(fmt.Errorf("sync failed: %w", err))
	}
	return printReport(cmd.OutOrStdout(), report)
}

func runGitHubStatus(cmd *cobra.Command, args []string) error {
	if projectSync == nil {
		return errSyncNotConfigured
	}
	projectID, err := resolveProject(args)
	if err != nil {
		return err
	}

	status, err := projectSync.Status(cmd.Context(), projectID)
	if err != nil {
		return classify(err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, status)
	}

	PrintSection(w, status.Name)
	PrintLabelValue(w, "Project", status.ProjectID)
	if !status.Linked {
		PrintLabelValue(w, "Repository", "(not linked)")
	} else {
		PrintLabelValue(w, "Repository", status.Repository)
		PrintLabelValue(w, "Branch", status.Branch)
	}
	PrintLabelValue(w, "Files", fmt.Sprint(status.FileCount))
	if len(status.ExcludedPaths) > 0 {
		PrintLabelValue(w, "Remote only", strings.Join(status.ExcludedPaths, ", "))
	}
	if status.LastCommitSHA != "" {
		PrintLabelValue(w, "Last commit", shortSHA(status.LastCommitSHA))
	}
	if status.LastSyncAt != nil {
		PrintLabelValue(w, "Last sync", fmt.Sprintf("%s (%s)",
			status.LastSyncAt.Local().Format("2006-01-02 15:04:05"), status.LastSyncStatus))
	} else {
		PrintLabelValue(w, "Last sync", "never")
	}
	if status.LastSyncError != "" {
		PrintLabelValue(w, "Last error", strings.TrimSpace(status.LastSyncError))
	}
	return nil
}
