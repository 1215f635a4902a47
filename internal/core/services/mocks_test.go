package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
)

// statusError is an API failure carrying an HTTP status.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("github: HTTP %d", e.code)
}

func (e *statusError) HTTPStatus() int {
	return e.code
}

// mockGitHubAPI is an in-memory GitHubAPI.
type mockGitHubAPI struct {
	mu sync.Mutex

	login     string
	userErr   error
	repos     map[string]*domain.RepositoryInfo
	repoErr   error
	createErr error

	userCalls int
	tokens    []string
	created   []driven.CreateRepositoryRequest
}

func newMockGitHubAPI() *mockGitHubAPI {
	return &mockGitHubAPI{
		login: "octocat",
		repos: make(map[string]*domain.RepositoryInfo),
	}
}

func (m *mockGitHubAPI) addRepo(fullName string, canPush bool) domain.RepositoryRef {
	ref, err := domain.ParseRepositoryRef(fullName)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[ref.FullName()] = &domain.RepositoryInfo{Ref: ref, DefaultBranch: "main", CanPush: canPush}
	return ref
}

func (m *mockGitHubAPI) AuthenticatedUser(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userCalls++
	m.tokens = append(m.tokens, token)
	if m.userErr != nil {
		return "", m.userErr
	}
	return m.login, nil
}

func (m *mockGitHubAPI) GetRepository(_ context.Context, token string, ref domain.RepositoryRef) (*domain.RepositoryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if m.repoErr != nil {
		return nil, m.repoErr
	}
	info, ok := m.repos[ref.FullName()]
	if !ok {
		return nil, &statusError{code: 404}
	}
	cp := *info
	return &cp, nil
}

func (m *mockGitHubAPI) CreateRepository(
	_ context.Context, token string, req driven.CreateRepositoryRequest,
) (*domain.RepositoryInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	m.created = append(m.created, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	info := &domain.RepositoryInfo{
		Ref:           domain.RepositoryRef{Host: domain.DefaultGitHubHost, Owner: m.login, Name: req.Name},
		DefaultBranch: "main",
		Private:       req.Private,
		CanPush:       true,
	}
	m.repos[info.Ref.FullName()] = info
	cp := *info
	return &cp, nil
}

// mockGitRunner records commands and fails every one with err.
type mockGitRunner struct {
	mu    sync.Mutex
	err   error
	calls [][]string
}

func (m *mockGitRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, args)
	return "", m.err
}

func (m *mockGitRunner) RunWithToken(ctx context.Context, dir, _ string, args ...string) (string, error) {
	return m.Run(ctx, dir, args...)
}

func testSyncSettings() domain.SyncSettings {
	s := domain.DefaultSyncSettings()
	s.MaxRetries = 0
	s.BackoffBase = 0
	return s
}
