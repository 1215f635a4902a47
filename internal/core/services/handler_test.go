package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

func TestGitHubSyncHandler_Delegates(t *testing.T) {
	ctx := context.Background()
	api := newMockGitHubAPI()
	ref := api.addRepo("octocat/essay", true)
	settings := testSyncSettings()
	settings.MaxFileSize = 100

	h := NewGitHubSyncHandler(api, &mockGitRunner{}, settings)

	assert.True(t, h.CheckTokenValidity(ctx, "ghp_valid"))

	ok, reason := h.CheckRepoAccess(ctx, ref, "ghp_valid")
	assert.True(t, ok)
	assert.Equal(t, ReasonOK, reason)

	dir := t.TempDir()
	big := sparseFile(t, dir, "big.bin", 101)
	report := h.ValidateFileSizes([]string{big}, 0)
	assert.Equal(t, int64(100), report.Limit)
	assert.False(t, report.AllValid)

	result, err := h.HandleLargeFiles([]string{big}, domain.LargeFileExclude, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{big}, result.ExcludedFiles)

	outcome := h.SyncWithRetryAndResume(ctx, ref,
		func(context.Context, domain.RepositoryRef) (*domain.SyncReport, error) {
			return &domain.SyncReport{Status: domain.StatusSuccess}, nil
		}, driving.RetryOptions{})
	assert.True(t, outcome.Succeeded())
}

func TestGitHubSyncHandler_ComponentsAreShared(t *testing.T) {
	h := NewGitHubSyncHandler(newMockGitHubAPI(), &mockGitRunner{}, testSyncSettings())

	assert.Same(t, h.Tokens(), h.Tokens())
	assert.NotNil(t, h.Access())
	assert.NotNil(t, h.Sizes())
	assert.NotNil(t, h.Conflicts())
	assert.NotNil(t, h.Retry())
}

func TestGitHubSyncHandler_ImplementsPort(t *testing.T) {
	var _ driving.GitHubSyncHandler = NewGitHubSyncHandler(newMockGitHubAPI(), &mockGitRunner{}, testSyncSettings())
}
