package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header.
func PrintSection(w io.Writer, title string) {
	fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
}

// PrintSuccess prints a success message with a checkmark.
func PrintSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintWarning prints a warning message.
func PrintWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	_, _ = errorColor.Fprintf(w, "✗ %s\n", msg)
}

// PrintLabelValue prints an indented label-value pair.
func PrintLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	fmt.Fprintln(w, value)
}

// PrintList prints indented list items, dimmed.
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		_, _ = dimColor.Fprintf(w, "    - %s\n", item)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// classifiedError pairs a user-facing explanation with its cause.
type classifiedError struct {
	hint string
	err  error
}

func (e *classifiedError) Error() string {
	return e.hint + "\n  cause: " + e.err.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

// classify attaches the user-facing explanation for err's kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	hint := describeError(err)
	if hint == "" {
		return err
	}
	return &classifiedError{hint: hint, err: err}
}

// describeError returns a distinct message per error kind, or "" when the
// error needs no explanation beyond itself.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenRequired):
		return "No GitHub token. Pass --token or set " + TokenEnv + "."
	case errors.Is(err, domain.ErrTokenExpired):
		return "Your GitHub token is expired or invalid. Create a new token and pass it with --token or " + TokenEnv + "."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "Permission denied. The token cannot access this repository; check its repo scope or ask for collaborator access."
	case errors.Is(err, domain.ErrRepositoryNotFound):
		return "Repository not found. Check the owner and name, or grant the token access if it is private."
	case errors.Is(err, domain.ErrNetworkSyncFailed):
		return "Could not reach GitHub and retries are exhausted. Check your connection and try again."
	case errors.Is(err, domain.ErrConflictResolutionFailed):
		return "Merge conflicts need manual resolution. Set sync.conflict_strategy to ours or theirs, or resolve them on GitHub and pull."
	case errors.Is(err, domain.ErrFilesTooLarge):
		return "Some files exceed the size limit and sync.large_file_strategy is fail. Remove them or switch to exclude."
	case errors.Is(err, domain.ErrProjectNotLinked):
		return "This project is not linked to a repository. Push with --create to create one."
	case errors.Is(err, domain.ErrNotFound):
		return "Project not found. Run 'socrates project list' to see project IDs."
	default:
		return ""
	}
}

// printReport renders a workflow report.
func printReport(w io.Writer, report *domain.SyncReport) error {
	if jsonOutput {
		return printJSON(w, report)
	}

	title := fmt.Sprintf("%s %s (%s)", titleCase(string(report.Operation)), report.Repository, report.Branch)
	switch report.Status {
	case domain.StatusSuccess:
		PrintSuccess(w, title)
	default:
		PrintWarning(w, title+": "+string(report.Status))
	}

	if report.ProjectID != "" {
		PrintLabelValue(w, "Project", report.ProjectID)
	}
	if report.CommitSHA != "" {
		PrintLabelValue(w, "Commit", shortSHA(report.CommitSHA))
	}
	if report.FilesPulled > 0 {
		PrintLabelValue(w, "Files pulled", fmt.Sprint(report.FilesPulled))
	}
	if report.FilesPushed > 0 {
		PrintLabelValue(w, "Files pushed", fmt.Sprint(report.FilesPushed))
	}
	if report.NothingToCommit {
		PrintLabelValue(w, "Changes", "nothing to commit")
	}
	if report.RepositoryCreated {
		PrintLabelValue(w, "Repository", "created")
	}
	if report.Attempts > 1 {
		PrintLabelValue(w, "Attempts", fmt.Sprint(report.Attempts))
	}
	if len(report.ExcludedFiles) > 0 {
		PrintLabelValue(w, "Excluded (too large)", fmt.Sprint(len(report.ExcludedFiles)))
		PrintList(w, report.ExcludedFiles)
	}
	if len(report.OversizedFiles) > len(report.ExcludedFiles) {
		PrintLabelValue(w, "Oversized (kept)", fmt.Sprint(len(report.OversizedFiles)))
		PrintList(w, report.OversizedFiles)
	}
	if c := report.Conflicts; c != nil {
		PrintLabelValue(w, "Conflicts resolved", fmt.Sprintf("%d (%s)", len(c.Resolved), c.Strategy))
		PrintList(w, c.Resolved)
		if len(c.ManualRequired) > 0 {
			PrintLabelValue(w, "Manual resolution required", fmt.Sprint(len(c.ManualRequired)))
			PrintList(w, c.ManualRequired)
		}
	}
	if report.Message != "" {
		PrintLabelValue(w, "Note", report.Message)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func formatBytes(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}
