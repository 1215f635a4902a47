package driving

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// ImportRequest describes a repository to import as a new project.
type ImportRequest struct {
	// URL is a repository URL or "owner/name".
	URL string

	// Name overrides the project name (defaults to the repository name).
	Name string

	// Branch overrides the remote default branch.
	Branch string
}

// PushRequest describes a push of stored project files.
type PushRequest struct {
	// Message is the commit message.
	Message string

	// Create creates the repository when the project is not yet linked.
	Create bool

	// RepoName names the created repository (defaults to the project name).
	RepoName string

	// Private makes a created repository private.
	Private bool
}

// ProjectSyncService runs the pull/resolve/push workflows for projects.
// Tokens are supplied per call and never stored.
type ProjectSyncService interface {
	// Import clones a repository into a new project.
	Import(ctx context.Context, token string, req ImportRequest) (*domain.SyncReport, error)

	// Pull replaces stored project files with the remote branch contents.
	Pull(ctx context.Context, token, projectID string) (*domain.SyncReport, error)

	// Push commits stored project files and pushes them, merging remote changes.
	Push(ctx context.Context, token, projectID string, req PushRequest) (*domain.SyncReport, error)

	// Sync pushes local changes and then refreshes stored files from the merged tree.
	Sync(ctx context.Context, token, projectID, message string) (*domain.SyncReport, error)

	// Status returns the project's linkage and last sync state.
	Status(ctx context.Context, projectID string) (*domain.ProjectSyncStatus, error)
}

// ProjectService manages projects.
type ProjectService interface {
	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// Create stores a new unlinked project with the given files.
	Create(ctx context.Context, name string, files []domain.ProjectFile) (*domain.Project, error)

	// Remove deletes a project and its files.
	Remove(ctx context.Context, id string) error
}
