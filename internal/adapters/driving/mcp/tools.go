package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// TokenInput is the input schema for github_check_token.
type TokenInput struct {
	Token string `json:"token,omitempty" jsonschema:"GitHub token; defaults to the server's GITHUB_TOKEN"`
}

// TokenOutput is the output schema for github_check_token.
type TokenOutput struct {
	Valid bool `json:"valid"`
}

// RepoAccessInput is the input schema for github_check_repo_access.
type RepoAccessInput struct {
	Repository string `json:"repository" jsonschema:"owner/name or a GitHub repository URL"`
	Token      string `json:"token,omitempty" jsonschema:"GitHub token; defaults to the server's GITHUB_TOKEN"`
}

// RepoAccessOutput is the output schema for github_check_repo_access.
type RepoAccessOutput struct {
	Repository string `json:"repository"`
	Accessible bool   `json:"accessible"`
	Reason     string `json:"reason"`
}

// FileSizesInput is the input schema for github_validate_file_sizes.
type FileSizesInput struct {
	Paths    []string `json:"paths" jsonschema:"local file paths to check"`
	MaxBytes int64    `json:"max_bytes,omitempty" jsonschema:"inclusive size limit in bytes (default: configured limit)"`
}

// FileSizeOutput is one checked path.
type FileSizeOutput struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ExceedsLimit bool   `json:"exceeds_limit"`
	Error        string `json:"error,omitempty"`
}

// FileSizesOutput is the output schema for github_validate_file_sizes.
type FileSizesOutput struct {
	AllValid     bool             `json:"all_valid"`
	InvalidFiles []string         `json:"invalid_files"`
	Files        []FileSizeOutput `json:"files"`
	Limit        int64            `json:"limit"`
	Summary      string           `json:"summary"`
}

// ConflictsInput is the input schema for github_detect_conflicts.
type ConflictsInput struct {
	RepoPath string `json:"repo_path" jsonschema:"path to a local git working copy"`
}

// ConflictsOutput is the output schema for github_detect_conflicts.
type ConflictsOutput struct {
	Conflicts []string `json:"conflicts"`
	Count     int      `json:"count"`
}

// ProjectStatusInput is the input schema for github_project_status.
type ProjectStatusInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project ID"`
}

// ProjectStatusOutput is the output schema for github_project_status.
type ProjectStatusOutput struct {
	ProjectID      string   `json:"project_id"`
	Name           string   `json:"name"`
	Linked         bool     `json:"linked"`
	Repository     string   `json:"repository,omitempty"`
	Branch         string   `json:"branch,omitempty"`
	LastCommitSHA  string   `json:"last_commit_sha,omitempty"`
	LastSyncAt     string   `json:"last_sync_at,omitempty"`
	LastSyncStatus string   `json:"last_sync_status,omitempty"`
	LastSyncError  string   `json:"last_sync_error,omitempty"`
	ExcludedPaths  []string `json:"excluded_paths,omitempty"`
	FileCount      int      `json:"file_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "github_check_token",
		Description: "Check whether a GitHub token authenticates",
	}, s.handleCheckToken)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "github_check_repo_access",
		Description: "Check whether a GitHub repository is reachable with a token",
	}, s.handleCheckRepoAccess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "github_validate_file_sizes",
		Description: "Check local files against the GitHub per-file size limit",
	}, s.handleValidateFileSizes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "github_detect_conflicts",
		Description: "List unmerged paths in a local git working copy",
	}, s.handleDetectConflicts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "github_project_status",
		Description: "Show a project's GitHub linkage and last sync result",
	}, s.handleProjectStatus)
}

func (s *Server) handleCheckToken(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TokenInput,
) (*mcp.CallToolResult, TokenOutput, error) {
	token, err := s.ports.token(input.Token)
	if err != nil {
		return nil, TokenOutput{}, err
	}
	return nil, TokenOutput{Valid: s.ports.Handler.CheckTokenValidity(ctx, token)}, nil
}

func (s *Server) handleCheckRepoAccess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RepoAccessInput,
) (*mcp.CallToolResult, RepoAccessOutput, error) {
	ref, err := domain.ParseRepositoryRef(input.Repository)
	if err != nil {
		return nil, RepoAccessOutput{}, err
	}
	token, err := s.ports.token(input.Token)
	if err != nil {
		return nil, RepoAccessOutput{}, err
	}

	ok, reason := s.ports.Handler.CheckRepoAccess(ctx, ref, token)
	return nil, RepoAccessOutput{
		Repository: ref.FullName(),
		Accessible: ok,
		Reason:     reason,
	}, nil
}

func (s *Server) handleValidateFileSizes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FileSizesInput,
) (*mcp.CallToolResult, FileSizesOutput, error) {
	report := s.ports.Handler.ValidateFileSizes(input.Paths, input.MaxBytes)

	output := FileSizesOutput{
		AllValid:     report.AllValid,
		InvalidFiles: report.InvalidFiles,
		Files:        make([]FileSizeOutput, len(report.Entries)),
		Limit:        report.Limit,
		Summary:      report.Summary,
	}
	for i, e := range report.Entries {
		output.Files[i] = FileSizeOutput(e)
	}
	return nil, output, nil
}

func (s *Server) handleDetectConflicts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConflictsInput,
) (*mcp.CallToolResult, ConflictsOutput, error) {
	conflicts, err := s.ports.Handler.DetectMergeConflicts(ctx, input.RepoPath)
	if err != nil {
		return nil, ConflictsOutput{}, err
	}
	if conflicts == nil {
		conflicts = []string{}
	}
	return nil, ConflictsOutput{Conflicts: conflicts, Count: len(conflicts)}, nil
}

func (s *Server) handleProjectStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProjectStatusInput,
) (*mcp.CallToolResult, ProjectStatusOutput, error) {
	if s.ports.Sync == nil {
		return nil, ProjectStatusOutput{}, ErrProjectsUnavailable
	}

	status, err := s.ports.Sync.Status(ctx, input.ProjectID)
	if err != nil {
		return nil, ProjectStatusOutput{}, err
	}
	return nil, projectStatusOutput(status), nil
}

func projectStatusOutput(st *domain.ProjectSyncStatus) ProjectStatusOutput {
	out := ProjectStatusOutput{
		ProjectID:      st.ProjectID,
		Name:           st.Name,
		Linked:         st.Linked,
		Repository:     st.Repository,
		Branch:         st.Branch,
		LastCommitSHA:  st.LastCommitSHA,
		LastSyncStatus: string(st.LastSyncStatus),
		LastSyncError:  st.LastSyncError,
		ExcludedPaths:  st.ExcludedPaths,
		FileCount:      st.FileCount,
	}
	if st.LastSyncAt != nil {
		out.LastSyncAt = st.LastSyncAt.UTC().Format(time.RFC3339)
	}
	return out
}
