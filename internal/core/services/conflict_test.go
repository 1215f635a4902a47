package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitrunner "github.com/custodia-labs/socrates/internal/adapters/driven/git"
	"github.com/custodia-labs/socrates/internal/core/domain"
)

func requireGit(t *testing.T) *gitrunner.Runner {
	t.Helper()
	r := gitrunner.NewRunner()
	if !r.Available() {
		t.Skip("git not installed")
	}
	return r
}

func gitIn(t *testing.T, r *gitrunner.Runner, dir string, args ...string) string {
	t.Helper()
	full := append([]string{
		"-c", "user.name=Test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false",
	}, args...)
	out, err := r.Run(context.Background(), dir, full...)
	require.NoError(t, err, "git %v", args)
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

// conflictedRepo returns a working copy mid-merge where every named file
// was changed on both sides.
func conflictedRepo(t *testing.T, r *gitrunner.Runner, files map[string][2]string) string {
	t.Helper()
	dir := t.TempDir()
	gitIn(t, r, dir, "init", "--quiet")
	gitIn(t, r, dir, "symbolic-ref", "HEAD", "refs/heads/main")

	writeFile(t, dir, "README.md", "shared\n")
	for name := range files {
		writeFile(t, dir, name, "base\n")
	}
	gitIn(t, r, dir, "add", "--all")
	gitIn(t, r, dir, "commit", "--quiet", "-m", "base")

	gitIn(t, r, dir, "checkout", "--quiet", "-b", "remote")
	for name, sides := range files {
		writeFile(t, dir, name, sides[1])
	}
	gitIn(t, r, dir, "commit", "--quiet", "-am", "theirs")

	gitIn(t, r, dir, "checkout", "--quiet", "main")
	for name, sides := range files {
		writeFile(t, dir, name, sides[0])
	}
	gitIn(t, r, dir, "commit", "--quiet", "-am", "ours")

	_, err := r.Run(context.Background(), dir,
		"-c", "user.name=Test", "-c", "user.email=test@example.com", "merge", "--no-edit", "remote")
	require.Error(t, err, "merge should conflict")
	return dir
}

func TestDetectMergeConflicts(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{
		"essay.md":       {"ours\n", "theirs\n"},
		"notes/day1.txt": {"mine\n", "yours\n"},
	})
	resolver := NewConflictResolver(r)

	conflicts, err := resolver.DetectMergeConflicts(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"essay.md", "notes/day1.txt"}, conflicts)

	again, err := resolver.DetectMergeConflicts(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, conflicts, again)
}

func TestDetectMergeConflicts_CleanRepo(t *testing.T) {
	r := requireGit(t)
	dir := t.TempDir()
	gitIn(t, r, dir, "init", "--quiet")

	conflicts, err := NewConflictResolver(r).DetectMergeConflicts(context.Background(), dir)

	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.NotNil(t, conflicts)
}

func TestDetectMergeConflicts_MissingDir(t *testing.T) {
	_, err := NewConflictResolver(&mockGitRunner{}).DetectMergeConflicts(
		context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestHandleMergeConflicts_Ours(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{"essay.md": {"ours\n", "theirs\n"}})
	resolver := NewConflictResolver(r)

	res, err := resolver.HandleMergeConflicts(context.Background(), dir, nil, domain.ConflictOurs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, []string{"essay.md"}, res.Resolved)
	assert.Empty(t, res.ManualRequired)
	assert.Equal(t, "ours\n", readFile(t, dir, "essay.md"))

	remaining, err := resolver.DetectMergeConflicts(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestHandleMergeConflicts_Theirs(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{"essay.md": {"ours\n", "theirs\n"}})

	res, err := NewConflictResolver(r).HandleMergeConflicts(
		context.Background(), dir, []string{"essay.md"}, domain.ConflictTheirs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Equal(t, "theirs\n", readFile(t, dir, "essay.md"))
}

func TestHandleMergeConflicts_Idempotent(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{"essay.md": {"ours\n", "theirs\n"}})
	resolver := NewConflictResolver(r)

	_, err := resolver.HandleMergeConflicts(context.Background(), dir, nil, domain.ConflictOurs)
	require.NoError(t, err)

	res, err := resolver.HandleMergeConflicts(context.Background(), dir, nil, domain.ConflictOurs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, res.Status)
	assert.Empty(t, res.Resolved)
	assert.Empty(t, res.ManualRequired)
}

func TestHandleMergeConflicts_Manual(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{"essay.md": {"ours\n", "theirs\n"}})
	before := readFile(t, dir, "essay.md")

	res, err := NewConflictResolver(r).HandleMergeConflicts(context.Background(), dir, nil, domain.ConflictManual)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, res.Status)
	assert.Empty(t, res.Resolved)
	assert.Equal(t, []string{"essay.md"}, res.ManualRequired)
	assert.Equal(t, before, readFile(t, dir, "essay.md"))
}

func TestHandleMergeConflicts_BinaryLeftForManual(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{
		"essay.md":  {"ours\n", "theirs\n"},
		"image.bin": {"our\x00bytes", "their\x00bytes"},
	})

	res, err := NewConflictResolver(r).HandleMergeConflicts(context.Background(), dir, nil, domain.ConflictOurs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, res.Status)
	assert.Equal(t, []string{"essay.md"}, res.Resolved)
	assert.Equal(t, []string{"image.bin"}, res.ManualRequired)
}

func TestHandleMergeConflicts_UnlistedConflictsStayManual(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{
		"a.txt": {"ours a\n", "theirs a\n"},
		"b.txt": {"ours b\n", "theirs b\n"},
	})
	resolver := NewConflictResolver(r)

	res, err := resolver.HandleMergeConflicts(context.Background(), dir, []string{"a.txt"}, domain.ConflictOurs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, res.Status)
	assert.Equal(t, []string{"a.txt"}, res.Resolved)
	assert.Equal(t, []string{"b.txt"}, res.ManualRequired)

	remaining, err := resolver.DetectMergeConflicts(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, remaining)
}

func TestHandleMergeConflicts_EmptyListStillChecked(t *testing.T) {
	r := requireGit(t)
	dir := conflictedRepo(t, r, map[string][2]string{"essay.md": {"ours\n", "theirs\n"}})

	res, err := NewConflictResolver(r).HandleMergeConflicts(context.Background(), dir, []string{}, domain.ConflictTheirs)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartial, res.Status)
	assert.Empty(t, res.Resolved)
	assert.Equal(t, []string{"essay.md"}, res.ManualRequired)
}

func TestReconcile(t *testing.T) {
	resolved, manual := reconcile(
		[]string{"a.txt", "b.txt"},
		[]string{"d.bin"},
		[]string{"b.txt", "c.txt", "d.bin"},
	)

	assert.Equal(t, []string{"a.txt"}, resolved)
	assert.Equal(t, []string{"b.txt", "c.txt", "d.bin"}, manual)
}

func TestHandleMergeConflicts_InvalidStrategy(t *testing.T) {
	_, err := NewConflictResolver(&mockGitRunner{}).HandleMergeConflicts(
		context.Background(), t.TempDir(), nil, domain.ConflictStrategy("rebase"))

	assert.ErrorIs(t, err, domain.ErrInvalidStrategy)
}

func TestSplitNul(t *testing.T) {
	assert.Equal(t, []string{"a.txt", "b.txt"}, splitNul("b.txt\x00a.txt\x00b.txt\x00"))
	assert.Equal(t, []string{}, splitNul(""))
}
