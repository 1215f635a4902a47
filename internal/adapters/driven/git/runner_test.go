package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

func requireGit(t *testing.T) *Runner {
	t.Helper()
	r := NewRunner()
	if !r.Available() {
		t.Skip("git not available")
	}
	return r
}

// fakeGit writes a shell script that prints its arguments to stderr and exits 1.
func fakeGit(t *testing.T, body string) *Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "git")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return NewRunner().WithBinary(path)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   domain.SyncErrorKind
	}{
		{"auth", "remote: Invalid username or password.\nfatal: Authentication failed for 'https://github.com/a/b.git/'", domain.KindTokenExpired},
		{"no prompt", "fatal: could not read Username for 'https://github.com': terminal prompts disabled", domain.KindTokenExpired},
		{"permission", "remote: Permission to a/b.git denied to octocat.", domain.KindPermissionDenied},
		{"403", "fatal: unable to access 'https://github.com/a/b.git/': The requested URL returned error: 403", domain.KindPermissionDenied},
		{"not found", "remote: Repository not found.\nfatal: repository 'https://github.com/a/b.git/' not found", domain.KindRepositoryNotFound},
		{"dns", "fatal: unable to access 'https://github.com/a/b.git/': Could not resolve host: github.com", domain.KindNetworkSyncFailed},
		{"hung up", "fatal: the remote end hung up unexpectedly", domain.KindNetworkSyncFailed},
		{"early eof", "fatal: early EOF", domain.KindNetworkSyncFailed},
		{"5xx", "fatal: unable to access 'x': The requested URL returned error: 502", domain.KindNetworkSyncFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(&CommandError{Args: []string{"clone"}, ExitCode: 128, Stderr: tt.stderr})
			kind, ok := domain.KindOf(err)
			require.True(t, ok, "expected a classified error, got %v", err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestClassify_Unrecognised(t *testing.T) {
	tests := []string{
		"fatal: Remote branch main not found in upstream origin",
		"error: pathspec 'x' did not match any file(s) known to git",
		"fatal: not a git repository (or any of the parent directories): .git",
		"",
	}
	for _, stderr := range tests {
		err := Classify(&CommandError{Args: []string{"checkout"}, ExitCode: 1, Stderr: stderr})
		_, ok := domain.KindOf(err)
		assert.False(t, ok, stderr)

		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
	}
}

func TestCommandError_Message(t *testing.T) {
	err := &CommandError{Args: []string{"push", "origin"}, ExitCode: 1, Stderr: "rejected"}
	assert.Equal(t, "git push: exit 1: rejected", err.Error())

	inner := errors.New("exec: not found")
	err = &CommandError{Args: []string{"status"}, ExitCode: -1, Err: inner}
	assert.Equal(t, "git status: exec: not found", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestRunWithToken_RedactsToken(t *testing.T) {
	r := fakeGit(t, `echo "args: $*" >&2; exit 1`)
	const token = "ghp_supersecret123"

	_, err := r.RunWithToken(context.Background(), t.TempDir(), token, "ls-remote", "origin")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), redacted)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, []string{"ls-remote", "origin"}, cmdErr.Args)
	assert.Equal(t, 1, cmdErr.ExitCode)
}

func TestRunWithToken_ClassifiesStderr(t *testing.T) {
	r := fakeGit(t, `echo "remote: Repository not found." >&2; exit 128`)

	_, err := r.RunWithToken(context.Background(), t.TempDir(), "tok", "clone", "x")
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestRun_DeadlineIsNetworkError(t *testing.T) {
	r := fakeGit(t, `exec sleep 5`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, t.TempDir(), "fetch")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkSyncFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, domain.IsRetryable(err))
}

func TestRun_CancelledContext(t *testing.T) {
	r := fakeGit(t, `exec sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, t.TempDir(), "fetch")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RealGit(t *testing.T) {
	r := requireGit(t)
	dir := t.TempDir()
	ctx := context.Background()

	_, err := r.Run(ctx, dir, "init", "--quiet")
	require.NoError(t, err)

	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestRun_NotARepository(t *testing.T) {
	r := requireGit(t)

	_, err := r.Run(context.Background(), t.TempDir(), "diff", "--name-only", "--diff-filter=U")
	require.Error(t, err)
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
}
