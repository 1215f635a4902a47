package mcp

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// mockHandler is a mock implementation of driving.GitHubSyncHandler.
type mockHandler struct {
	tokenValid  bool
	accessOK    bool
	reason      string
	sizeReport  domain.FileSizeReport
	conflicts   []string
	err         error
	lastToken   string
	lastRef     domain.RepositoryRef
	lastMaxSize int64
}

func (m *mockHandler) CheckTokenValidity(_ context.Context, token string) bool {
	m.lastToken = token
	return m.tokenValid
}

func (m *mockHandler) CheckRepoAccess(_ context.Context, ref domain.RepositoryRef, token string) (bool, string) {
	m.lastRef = ref
	m.lastToken = token
	return m.accessOK, m.reason
}

func (m *mockHandler) ValidateFileSizes(_ []string, maxBytes int64) domain.FileSizeReport {
	m.lastMaxSize = maxBytes
	return m.sizeReport
}

func (m *mockHandler) HandleLargeFiles(
	_ []string, strategy domain.LargeFileStrategy, _ int64,
) (domain.LargeFileResult, error) {
	return domain.LargeFileResult{Strategy: strategy}, m.err
}

func (m *mockHandler) DetectMergeConflicts(_ context.Context, _ string) ([]string, error) {
	return m.conflicts, m.err
}

func (m *mockHandler) HandleMergeConflicts(
	_ context.Context, _ string, _ []string, strategy domain.ConflictStrategy,
) (domain.ConflictResolution, error) {
	return domain.ConflictResolution{Strategy: strategy}, m.err
}

func (m *mockHandler) SyncWithRetryAndResume(
	_ context.Context, _ domain.RepositoryRef, _ driving.SyncFunc, _ driving.RetryOptions,
) domain.RetryOutcome {
	return domain.RetryOutcome{}
}

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	err      error
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.err
}

func (m *mockProjectService) Get(_ context.Context, id string) (*domain.Project, error) {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectService) Create(_ context.Context, name string, _ []domain.ProjectFile) (*domain.Project, error) {
	return &domain.Project{ID: "new", Name: name}, m.err
}

func (m *mockProjectService) Remove(_ context.Context, _ string) error {
	return m.err
}

// mockSyncService is a mock implementation of driving.ProjectSyncService.
type mockSyncService struct {
	status *domain.ProjectSyncStatus
	err    error
}

func (m *mockSyncService) Import(_ context.Context, _ string, _ driving.ImportRequest) (*domain.SyncReport, error) {
	return nil, m.err
}

func (m *mockSyncService) Pull(_ context.Context, _, _ string) (*domain.SyncReport, error) {
	return nil, m.err
}

func (m *mockSyncService) Push(_ context.Context, _, _ string, _ driving.PushRequest) (*domain.SyncReport, error) {
	return nil, m.err
}

func (m *mockSyncService) Sync(_ context.Context, _, _, _ string) (*domain.SyncReport, error) {
	return nil, m.err
}

func (m *mockSyncService) Status(_ context.Context, projectID string) (*domain.ProjectSyncStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status == nil || m.status.ProjectID != projectID {
		return nil, domain.ErrNotFound
	}
	return m.status, nil
}
