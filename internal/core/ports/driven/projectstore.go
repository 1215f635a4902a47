package driven

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// ProjectStore persists projects and their repository linkage.
type ProjectStore interface {
	// Save stores or updates a project.
	Save(ctx context.Context, project domain.Project) error

	// Get retrieves a project by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all projects ordered by name.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a project and its files.
	Delete(ctx context.Context, id string) error
}

// ProjectFileStore persists project file contents.
type ProjectFileStore interface {
	// List returns all files of a project ordered by path.
	List(ctx context.Context, projectID string) ([]domain.ProjectFile, error)

	// Replace atomically replaces the project's file set.
	Replace(ctx context.Context, projectID string, files []domain.ProjectFile) error

	// Count returns the number of stored files.
	Count(ctx context.Context, projectID string) (int, error)
}
