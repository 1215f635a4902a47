package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// SyncFunc is one synchronisation attempt against a repository.
// It must honour ctx; the coordinator abandons it when the attempt deadline passes.
type SyncFunc func(ctx context.Context, ref domain.RepositoryRef) (*domain.SyncReport, error)

// RetryOptions configures SyncWithRetryAndResume. Zero values fall back to
// the configured sync settings.
type RetryOptions struct {
	MaxRetries        int
	TimeoutPerAttempt time.Duration
	BackoffBase       time.Duration
}

// GitHubSyncHandler is the facade over the GitHub sync leaf components.
// Every method delegates to exactly one component.
type GitHubSyncHandler interface {
	// CheckTokenValidity reports whether the token authenticates against GitHub.
	// Any non-2xx response or transport failure yields false.
	CheckTokenValidity(ctx context.Context, token string) bool

	// CheckRepoAccess reports whether the token holder can reach the repository
	// and a reason distinguishing not found, forbidden and network errors.
	CheckRepoAccess(ctx context.Context, ref domain.RepositoryRef, token string) (bool, string)

	// ValidateFileSizes checks paths against maxBytes (<= 0 uses the configured limit).
	ValidateFileSizes(paths []string, maxBytes int64) domain.FileSizeReport

	// HandleLargeFiles applies an explicitly chosen large-file strategy.
	HandleLargeFiles(paths []string, strategy domain.LargeFileStrategy, maxBytes int64) (domain.LargeFileResult, error)

	// DetectMergeConflicts lists unmerged paths in a working copy.
	DetectMergeConflicts(ctx context.Context, repoPath string) ([]string, error)

	// HandleMergeConflicts resolves conflicts with the given strategy.
	// A nil conflicts slice means detect them first.
	HandleMergeConflicts(
		ctx context.Context, repoPath string, conflicts []string, strategy domain.ConflictStrategy,
	) (domain.ConflictResolution, error)

	// SyncWithRetryAndResume runs fn with bounded retries, exponential backoff
	// and a per-attempt timeout.
	SyncWithRetryAndResume(
		ctx context.Context, ref domain.RepositoryRef, fn SyncFunc, opts RetryOptions,
	) domain.RetryOutcome
}
