package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Manage local projects",
	GroupID: "local",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name> <directory>",
	Short: "Create an unlinked project from a local directory",
	Long: `Create a project from the files under a local directory.

The project is not linked to GitHub until it is pushed with
'socrates github push --create'. The .git directory is skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runProjectCreate,
}

var projectUseCmd = &cobra.Command{
	Use:   "use <project-id>",
	Short: "Set the project commands act on by default",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUse,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <project-id>",
	Short: "Delete a project and its stored files",
	Long:  `Delete a project from local storage. The GitHub repository is not touched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRemove,
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	rootCmd.AddCommand(projectCmd)
}

var errProjectsNotConfigured = errors.New("project service not configured")

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errProjectsNotConfigured
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if projects == nil {
			projects = []domain.Project{}
		}
		return printJSON(w, projects)
	}
	if len(projects) == 0 {
		cmd.Println("No projects. Import one with 'socrates github import <repository>'.")
		return nil
	}

	current := ""
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			current = s.CurrentProject
		}
	}

	PrintSection(w, "Projects")
	for i := range projects {
		p := &projects[i]
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		repo := "(not linked)"
		if p.IsLinked() {
			repo = p.Repository + "@" + p.Branch
		}
		status := string(p.LastSyncStatus)
		if status == "" {
			status = "never synced"
		}
		fmt.Fprintf(w, "%s %s  %-20s %-30s %s\n", marker, p.ID, p.Name, repo, status)
	}
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errProjectsNotConfigured
	}

	files, err := readProjectDir(args[1])
	if err != nil {
		return err
	}
	project, err := projectService.Create(cmd.Context(), args[0], files)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), project)
	}
	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created project %s (%s) with %d files", project.Name, project.ID, len(files)))
	return nil
}

func runProjectUse(cmd *cobra.Command, args []string) error {
	if projectService == nil || settingsService == nil {
		return errProjectsNotConfigured
	}

	project, err := projectService.Get(cmd.Context(), args[0])
	if err != nil {
		return classify(err)
	}
	if err := settingsService.SetCurrentProject(project.ID); err != nil {
		return fmt.Errorf("failed to set current project: %w", err)
	}
	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Using project %s (%s)", project.Name, project.ID))
	return nil
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errProjectsNotConfigured
	}

	if err := projectService.Remove(cmd.Context(), args[0]); err != nil {
		return classify(err)
	}
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.CurrentProject == args[0] {
			if err := settingsService.SetCurrentProject(""); err != nil {
				return fmt.Errorf("failed to clear current project: %w", err)
			}
		}
	}
	PrintSuccess(cmd.OutOrStdout(), "Removed project "+args[0])
	return nil
}

// readProjectDir loads regular files under dir, skipping .git.
func readProjectDir(dir string) ([]domain.ProjectFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	var files []domain.ProjectFile
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, domain.ProjectFile{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	return files, nil
}
