package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

func newTestServer(t *testing.T, p *Ports) *Server {
	t.Helper()
	s, err := NewServer(p)
	require.NoError(t, err)
	return s
}

func TestServer_handleCheckToken(t *testing.T) {
	ctx := context.Background()

	t.Run("uses server token when omitted", func(t *testing.T) {
		h := &mockHandler{tokenValid: true}
		s := newTestServer(t, &Ports{Handler: h, Token: "ghp_env"})

		_, out, err := s.handleCheckToken(ctx, nil, TokenInput{})

		require.NoError(t, err)
		assert.True(t, out.Valid)
		assert.Equal(t, "ghp_env", h.lastToken)
	})

	t.Run("invalid token is not an error", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}})

		_, out, err := s.handleCheckToken(ctx, nil, TokenInput{Token: "bad"})

		require.NoError(t, err)
		assert.False(t, out.Valid)
	})

	t.Run("missing token", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}})

		_, _, err := s.handleCheckToken(ctx, nil, TokenInput{})

		assert.ErrorIs(t, err, ErrTokenRequired)
	})
}

func TestServer_handleCheckRepoAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("parses repository URL", func(t *testing.T) {
		h := &mockHandler{accessOK: false, reason: "repository not found"}
		s := newTestServer(t, &Ports{Handler: h})

		_, out, err := s.handleCheckRepoAccess(ctx, nil, RepoAccessInput{
			Repository: "https://github.com/octocat/hello.git",
			Token:      "tok",
		})

		require.NoError(t, err)
		assert.Equal(t, "octocat/hello", out.Repository)
		assert.False(t, out.Accessible)
		assert.Equal(t, "repository not found", out.Reason)
		assert.Equal(t, "octocat", h.lastRef.Owner)
	})

	t.Run("invalid repository", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}})

		_, _, err := s.handleCheckRepoAccess(ctx, nil, RepoAccessInput{Repository: "nope", Token: "tok"})

		assert.ErrorIs(t, err, domain.ErrInvalidRepositoryRef)
	})
}

func TestServer_handleValidateFileSizes(t *testing.T) {
	h := &mockHandler{sizeReport: domain.FileSizeReport{
		Entries: []domain.FileSizeEntry{
			{Path: "a.txt", Size: 10},
			{Path: "big.bin", Size: 200, ExceedsLimit: true},
		},
		InvalidFiles: []string{"big.bin"},
		Limit:        100,
		Summary:      "1 of 2 files invalid",
	}}
	s := newTestServer(t, &Ports{Handler: h})

	_, out, err := s.handleValidateFileSizes(context.Background(), nil, FileSizesInput{
		Paths:    []string{"a.txt", "big.bin"},
		MaxBytes: 100,
	})

	require.NoError(t, err)
	assert.False(t, out.AllValid)
	assert.Equal(t, []string{"big.bin"}, out.InvalidFiles)
	require.Len(t, out.Files, 2)
	assert.True(t, out.Files[1].ExceedsLimit)
	assert.Equal(t, int64(100), h.lastMaxSize)
}

func TestServer_handleDetectConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns conflicts", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{conflicts: []string{"a.go", "b.go"}}})

		_, out, err := s.handleDetectConflicts(ctx, nil, ConflictsInput{RepoPath: "/tmp/repo"})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Count)
	})

	t.Run("none is an empty list", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}})

		_, out, err := s.handleDetectConflicts(ctx, nil, ConflictsInput{RepoPath: "/tmp/repo"})

		require.NoError(t, err)
		assert.NotNil(t, out.Conflicts)
		assert.Zero(t, out.Count)
	})

	t.Run("propagates error", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{err: errors.New("not a repository")}})

		_, _, err := s.handleDetectConflicts(ctx, nil, ConflictsInput{RepoPath: "/nope"})

		assert.ErrorContains(t, err, "not a repository")
	})
}

func TestServer_handleProjectStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns status", func(t *testing.T) {
		sync := &mockSyncService{status: &domain.ProjectSyncStatus{
			ProjectID:      "p1",
			Name:           "essay",
			Linked:         true,
			Repository:     "octocat/essay",
			LastSyncAt:     &at,
			LastSyncStatus: domain.StatusPartial,
			FileCount:      4,
		}}
		s := newTestServer(t, &Ports{Handler: &mockHandler{}, Sync: sync})

		_, out, err := s.handleProjectStatus(ctx, nil, ProjectStatusInput{ProjectID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, "octocat/essay", out.Repository)
		assert.Equal(t, "partial", out.LastSyncStatus)
		assert.Equal(t, "2026-03-01T12:00:00Z", out.LastSyncAt)
		assert.Equal(t, 4, out.FileCount)
	})

	t.Run("unknown project", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}, Sync: &mockSyncService{}})

		_, _, err := s.handleProjectStatus(ctx, nil, ProjectStatusInput{ProjectID: "missing"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("without project storage", func(t *testing.T) {
		s := newTestServer(t, &Ports{Handler: &mockHandler{}})

		_, _, err := s.handleProjectStatus(ctx, nil, ProjectStatusInput{ProjectID: "p1"})

		assert.ErrorIs(t, err, ErrProjectsUnavailable)
	})
}
