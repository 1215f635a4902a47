package services

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// Ensure GitHubSyncHandler implements the interface.
var _ driving.GitHubSyncHandler = (*GitHubSyncHandler)(nil)

// GitHubSyncHandler composes the sync leaf components. Each method
// delegates to exactly one of them.
type GitHubSyncHandler struct {
	tokens    *TokenValidator
	access    *RepoAccessChecker
	sizes     *FileSizeValidator
	conflicts *ConflictResolver
	retry     *RetryCoordinator
}

// NewGitHubSyncHandler wires the leaf components from their collaborators.
func NewGitHubSyncHandler(api driven.GitHubAPI, git driven.GitRunner, settings domain.SyncSettings) *GitHubSyncHandler {
	return NewGitHubSyncHandlerFrom(
		NewTokenValidator(api),
		NewRepoAccessChecker(api),
		NewFileSizeValidator(settings.MaxFileSize),
		NewConflictResolver(git),
		NewRetryCoordinator(settings),
	)
}

// NewGitHubSyncHandlerFrom builds a handler from existing components.
func NewGitHubSyncHandlerFrom(
	tokens *TokenValidator,
	access *RepoAccessChecker,
	sizes *FileSizeValidator,
	conflicts *ConflictResolver,
	retry *RetryCoordinator,
) *GitHubSyncHandler {
	return &GitHubSyncHandler{
		tokens:    tokens,
		access:    access,
		sizes:     sizes,
		conflicts: conflicts,
		retry:     retry,
	}
}

// Tokens returns the token validator.
func (h *GitHubSyncHandler) Tokens() *TokenValidator { return h.tokens }

// Access returns the repository access checker.
func (h *GitHubSyncHandler) Access() *RepoAccessChecker { return h.access }

// Sizes returns the file size validator.
func (h *GitHubSyncHandler) Sizes() *FileSizeValidator { return h.sizes }

// Conflicts returns the conflict resolver.
func (h *GitHubSyncHandler) Conflicts() *ConflictResolver { return h.conflicts }

// Retry returns the retry coordinator.
func (h *GitHubSyncHandler) Retry() *RetryCoordinator { return h.retry }

func (h *GitHubSyncHandler) CheckTokenValidity(ctx context.Context, token string) bool {
	return h.tokens.CheckTokenValidity(ctx, token)
}

func (h *GitHubSyncHandler) CheckRepoAccess(ctx context.Context, ref domain.RepositoryRef, token string) (bool, string) {
	return h.access.CheckRepoAccess(ctx, ref, token)
}

func (h *GitHubSyncHandler) ValidateFileSizes(paths []string, maxBytes int64) domain.FileSizeReport {
	return h.sizes.ValidateFileSizes(paths, maxBytes)
}

func (h *GitHubSyncHandler) HandleLargeFiles(
	paths []string, strategy domain.LargeFileStrategy, maxBytes int64,
) (domain.LargeFileResult, error) {
	return h.sizes.HandleLargeFiles(paths, strategy, maxBytes)
}

func (h *GitHubSyncHandler) DetectMergeConflicts(ctx context.Context, repoPath string) ([]string, error) {
	return h.conflicts.DetectMergeConflicts(ctx, repoPath)
}

func (h *GitHubSyncHandler) HandleMergeConflicts(
	ctx context.Context, repoPath string, conflicts []string, strategy domain.ConflictStrategy,
) (domain.ConflictResolution, error) {
	return h.conflicts.HandleMergeConflicts(ctx, repoPath, conflicts, strategy)
}

func (h *GitHubSyncHandler) SyncWithRetryAndResume(
	ctx context.Context, ref domain.RepositoryRef, fn driving.SyncFunc, opts driving.RetryOptions,
) domain.RetryOutcome {
	return h.retry.SyncWithRetryAndResume(ctx, ref, fn, opts)
}
