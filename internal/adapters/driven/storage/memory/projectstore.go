package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
)

// Ensure ProjectStore implements both project interfaces.
var (
	_ driven.ProjectStore     = (*ProjectStore)(nil)
	_ driven.ProjectFileStore = (*ProjectFileStore)(nil)
)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
// Deleting a project also drops its files from the paired ProjectFileStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	files    *ProjectFileStore
}

// ProjectFileStore is an in-memory implementation of driven.ProjectFileStore.
type ProjectFileStore struct {
	mu       sync.RWMutex
	projects *ProjectStore
	files    map[string][]domain.ProjectFile
}

// NewProjectStores creates a paired project and file store.
func NewProjectStores() (*ProjectStore, *ProjectFileStore) {
	ps := &ProjectStore{projects: make(map[string]domain.Project)}
	fs := &ProjectFileStore{files: make(map[string][]domain.ProjectFile), projects: ps}
	ps.files = fs
	return ps, fs
}

// Save stores or updates a project.
func (s *ProjectStore) Save(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.projects[project.ID]; ok && project.CreatedAt.IsZero() {
		project.CreatedAt = existing.CreatedAt
	}
	project.ExcludedPaths = slices.Clone(project.ExcludedPaths)
	s.projects[project.ID] = project
	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	project.ExcludedPaths = slices.Clone(project.ExcludedPaths)
	return &project, nil
}

// List returns all projects ordered by name.
func (s *ProjectStore) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a project and its files.
func (s *ProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.projects, id)
	s.mu.Unlock()

	s.files.mu.Lock()
	delete(s.files.files, id)
	s.files.mu.Unlock()
	return nil
}

func (s *ProjectStore) exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.projects[id]
	return ok
}

// List returns the project's files ordered by path.
func (s *ProjectFileStore) List(_ context.Context, projectID string) ([]domain.ProjectFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFiles(s.files[projectID]), nil
}

// Replace replaces the project's file set.
func (s *ProjectFileStore) Replace(_ context.Context, projectID string, files []domain.ProjectFile) error {
	if !s.projects.exists(projectID) {
		return domain.ErrNotFound
	}
	cp := cloneFiles(files)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Path < cp[j].Path })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[projectID] = cp
	return nil
}

// Count returns the number of stored files.
func (s *ProjectFileStore) Count(_ context.Context, projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files[projectID]), nil
}

func cloneFiles(files []domain.ProjectFile) []domain.ProjectFile {
	out := make([]domain.ProjectFile, len(files))
	for i, f := range files {
		f.Content = append([]byte{}, f.Content...)
		out[i] = f
	}
	return out
}
