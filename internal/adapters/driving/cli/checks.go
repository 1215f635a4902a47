package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

var checkTokenCmd = &cobra.Command{
	Use:   "check-token",
	Short: "Check that the GitHub token authenticates",
	Args:  cobra.NoArgs,
	RunE:  runCheckToken,
}

var checkAccessCmd = &cobra.Command{
	Use:   "check-access <repository>",
	Short: "Check that the token can reach a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckAccess,
}

var checkFilesCmd = &cobra.Command{
	Use:   "check-files <path>...",
	Short: "Check files against the per-file size limit",
	Long: `Check local files against GitHub's per-file size limit.

Without --strategy the files are only reported. With a strategy the
outcome shows what a push would do: exclude drops oversized files, fail
rejects the whole set, warn keeps everything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheckFiles,
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts <working-copy>",
	Short: "List or resolve merge conflicts in a git working copy",
	Long: `List unmerged paths in a local git working copy.

With --resolve ours or theirs, each text conflict is resolved by taking
that side and staging the result. Binary files and paths missing the
chosen side are left for manual resolution.`,
	Args: cobra.ExactArgs(1),
	RunE: runConflicts,
}

func init() {
	checkFilesCmd.Flags().String("max-size", "", "Size limit, e.g. 100MB (default: sync.max_file_size)")
	checkFilesCmd.Flags().String("strategy", "", "Apply a large file strategy: exclude, fail or warn")
	conflictsCmd.Flags().String("resolve", "", "Resolve with a strategy: ours, theirs or manual")

	githubCmd.AddCommand(checkTokenCmd)
	githubCmd.AddCommand(checkAccessCmd)
	githubCmd.AddCommand(checkFilesCmd)
	githubCmd.AddCommand(conflictsCmd)
}

var errHandlerNotConfigured = errors.New("github sync handler not configured")

func runCheckToken(cmd *cobra.Command, _ []string) error {
	if syncHandler == nil {
		return errHandlerNotConfigured
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}

	valid := syncHandler.CheckTokenValidity(cmd.Context(), token)
	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(w, map[string]bool{"valid": valid}); err != nil {
			return err
		}
	} else if valid {
		PrintSuccess(w, "GitHub token is valid")
	}
	if !valid {
		return classify(domain.ErrTokenExpired)
	}
	return nil
}

func runCheckAccess(cmd *cobra.Command, args []string) error {
	if syncHandler == nil {
		return errHandlerNotConfigured
	}
	ref, err := domain.ParseRepositoryRef(args[0])
	if err != nil {
		return err
	}
	token, err := resolveToken(cmd)
	if err != nil {
		return classify(err)
	}

	ok, reason := syncHandler.CheckRepoAccess(cmd.Context(), ref, token)
	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := printJSON(w, map[string]any{
			"repository": ref.FullName(),
			"accessible": ok,
			"reason":     reason,
		}); err != nil {
			return err
		}
	} else if ok {
		PrintSuccess(w, fmt.Sprintf("%s is accessible: %s", ref.FullName(), reason))
	}
	if !ok {
		return fmt.Errorf("cannot access %s: %s", ref.FullName(), reason)
	}
	return nil
}

func runCheckFiles(cmd *cobra.Command, args []string) error {
	if syncHandler == nil {
		return errHandlerNotConfigured
	}

	var limit int64
	if raw, _ := cmd.Flags().GetString("max-size"); raw != "" {
		n, err := humanize.ParseBytes(raw)
		if err != nil {
			return fmt.Errorf("%w: --max-size %q: %v", domain.ErrInvalidInput, raw, err)
		}
		limit = int64(n)
	}

	rawStrategy, _ := cmd.Flags().GetString("strategy")
	w := cmd.OutOrStdout()
	if rawStrategy == "" {
		report := syncHandler.ValidateFileSizes(args, limit)
		if jsonOutput {
			return printJSON(w, report)
		}
		printSizeReport(w, report)
		if !report.AllValid {
			return fmt.Errorf("%d of %d files are invalid", len(report.InvalidFiles), report.TotalFiles)
		}
		return nil
	}

	strategy, err := domain.ParseLargeFileStrategy(rawStrategy)
	if err != nil {
		return err
	}
	result, err := syncHandler.HandleLargeFiles(args, strategy, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		if err := printJSON(w, result); err != nil {
			return err
		}
	} else {
		printSizeReport(w, result.Report)
		printLargeFileResult(w, result)
	}
	if result.Status == domain.StatusFailed {
		return classify(domain.ErrFilesTooLarge)
	}
	return nil
}

func printSizeReport(w io.Writer, report domain.FileSizeReport) {
	PrintSection(w, fmt.Sprintf("File sizes (limit %s)", formatBytes(report.Limit)))
	for _, e := range report.Entries {
		switch {
		case e.Error != "":
			PrintError(w, fmt.Sprintf("%s: %s", e.Path, e.Error))
		case e.ExceedsLimit:
			PrintWarning(w, fmt.Sprintf("%s (%s)", e.Path, formatBytes(e.Size)))
		default:
			PrintSuccess(w, fmt.Sprintf("%s (%s)", e.Path, formatBytes(e.Size)))
		}
	}
	fmt.Fprintln(w, report.Summary)
}

func printLargeFileResult(w io.Writer, result domain.LargeFileResult) {
	PrintLabelValue(w, "Strategy", string(result.Strategy))
	PrintLabelValue(w, "Status", string(result.Status))
	if len(result.ExcludedFiles) > 0 {
		PrintLabelValue(w, "Excluded", fmt.Sprint(len(result.ExcludedFiles)))
		PrintList(w, result.ExcludedFiles)
	}
	if result.Strategy == domain.LargeFileWarn && len(result.OversizedFiles) > 0 {
		PrintLabelValue(w, "Oversized (kept)", fmt.Sprint(len(result.OversizedFiles)))
		PrintList(w, result.OversizedFiles)
	}
}

func runConflicts(cmd *cobra.Command, args []string) error {
	if syncHandler == nil {
		return errHandlerNotConfigured
	}
	dir := args[0]
	w := cmd.OutOrStdout()

	rawStrategy, _ := cmd.Flags().GetString("resolve")
	if rawStrategy == "" {
		conflicts, err := syncHandler.DetectMergeConflicts(cmd.Context(), dir)
		if err != nil {
			return err
		}
		if jsonOutput {
			if conflicts == nil {
				conflicts = []string{}
			}
			return printJSON(w, map[string]any{"conflicts": conflicts, "count": len(conflicts)})
		}
		if len(conflicts) == 0 {
			PrintSuccess(w, "No merge conflicts")
			return nil
		}
		PrintWarning(w, fmt.Sprintf("%d conflicted files", len(conflicts)))
		PrintList(w, conflicts)
		return nil
	}

	strategy, err := domain.ParseConflictStrategy(rawStrategy)
	if err != nil {
		return err
	}
	res, err := syncHandler.HandleMergeConflicts(cmd.Context(), dir, nil, strategy)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(w, res)
	}

	if res.Status == domain.StatusSuccess {
		PrintSuccess(w, fmt.Sprintf("Resolved %d files with %s", len(res.Resolved), res.Strategy))
	} else {
		PrintWarning(w, fmt.Sprintf("Resolved %d files, %d need manual resolution",
			len(res.Resolved), len(res.ManualRequired)))
	}
	PrintList(w, res.Resolved)
	if len(res.ManualRequired) > 0 {
		PrintLabelValue(w, "Manual", "")
		PrintList(w, res.ManualRequired)
	}
	return nil
}
