package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages stored projects.
type ProjectService struct {
	projects driven.ProjectStore
	files    driven.ProjectFileStore
	now      func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(projects driven.ProjectStore, files driven.ProjectFileStore) *ProjectService {
	return &ProjectService{projects: projects, files: files, now: time.Now}
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: project ID is required", domain.ErrInvalidInput)
	}
	return s.projects.Get(ctx, id)
}

// Create stores a new unlinked project.
func (s *ProjectService) Create(ctx context.Context, name string, files []domain.ProjectFile) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	now := s.now()
	cleaned := make([]domain.ProjectFile, 0, len(files))
	for _, f := range files {
		rel, err := cleanRelPath(f.Path)
		if err != nil {
			return nil, err
		}
		f.Path = rel
		if f.UpdatedAt.IsZero() {
			f.UpdatedAt = now
		}
		cleaned = append(cleaned, f)
	}

	project := domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	if err := s.files.Replace(ctx, project.ID, cleaned); err != nil {
		return nil, fmt.Errorf("store project files: %w", err)
	}
	return &project, nil
}

// Remove deletes a project and its files.
func (s *ProjectService) Remove(ctx context.Context, id string) error {
	if _, err := s.projects.Get(ctx, id); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}
