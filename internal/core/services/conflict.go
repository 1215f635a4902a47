package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/logger"
)

// binarySniffLen matches git's own heuristic: a NUL in the first 8000 bytes means binary.
const binarySniffLen = 8000

// Index stages of an unmerged entry.
const (
	stageOurs   = "2"
	stageTheirs = "3"
)

// ConflictResolver detects and resolves unmerged paths in a working copy.
// The working copy is the source of truth; nothing is cached between calls.
// Resolution is best effort: rename/delete and binary conflicts are left for
// manual resolution.
type ConflictResolver struct {
	git driven.GitRunner
}

// NewConflictResolver creates a conflict resolver.
func NewConflictResolver(git driven.GitRunner) *ConflictResolver {
	return &ConflictResolver{git: git}
}

// DetectMergeConflicts returns the sorted unmerged paths. It is read-only.
func (r *ConflictResolver) DetectMergeConflicts(ctx context.Context, repoPath string) ([]string, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, fmt.Errorf("working copy %s: %w", repoPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working copy %s: %w: not a directory", repoPath, domain.ErrInvalidInput)
	}

	out, err := r.git.Run(ctx, repoPath, "diff", "--name-only", "--diff-filter=U", "-z")
	if err != nil {
		return nil, fmt.Errorf("detect conflicts: %w", err)
	}
	return splitNul(out), nil
}

// HandleMergeConflicts resolves conflicts with strategy. A nil conflicts
// slice is detected first. The working copy is checked again afterwards:
// every path still unmerged is reported as manual, including paths the
// caller did not list, so success always means no unmerged paths remain.
func (r *ConflictResolver) HandleMergeConflicts(
	ctx context.Context, repoPath string, conflicts []string, strategy domain.ConflictStrategy,
) (domain.ConflictResolution, error) {
	if !strategy.IsValid() {
		return domain.ConflictResolution{}, fmt.Errorf("%w: conflict strategy %q", domain.ErrInvalidStrategy, strategy)
	}

	if conflicts == nil {
		detected, err := r.DetectMergeConflicts(ctx, repoPath)
		if err != nil {
			return domain.ConflictResolution{}, err
		}
		conflicts = detected
	}

	res := domain.ConflictResolution{
		Strategy:       strategy,
		Resolved:       []string{},
		ManualRequired: []string{},
	}

	for _, path := range conflicts {
		if strategy == domain.ConflictManual {
			res.ManualRequired = append(res.ManualRequired, path)
			continue
		}
		if err := r.resolveFile(ctx, repoPath, path, strategy); err != nil {
			logger.Warn("conflict %s left for manual resolution: %v", path, err)
			res.ManualRequired = append(res.ManualRequired, path)
			continue
		}
		res.Resolved = append(res.Resolved, path)
	}

	remaining, err := r.DetectMergeConflicts(ctx, repoPath)
	if err != nil {
		return domain.ConflictResolution{}, fmt.Errorf("verify resolution: %w", err)
	}
	res.Resolved, res.ManualRequired = reconcile(res.Resolved, res.ManualRequired, remaining)

	res.Status = domain.StatusSuccess
	if len(res.ManualRequired) > 0 {
		res.Status = domain.StatusPartial
	}
	return res, nil
}

// resolveFile takes one side of a conflicted file and stages it.
func (r *ConflictResolver) resolveFile(
	ctx context.Context, repoPath, path string, strategy domain.ConflictStrategy,
) error {
	stages, err := r.stages(ctx, repoPath, path)
	if err != nil {
		return err
	}
	want := stageOurs
	if strategy == domain.ConflictTheirs {
		want = stageTheirs
	}
	if !stages[want] {
		return fmt.Errorf("%s side is missing (rename/delete conflict)", strategy)
	}

	binary, err := isBinaryFile(filepath.Join(repoPath, filepath.FromSlash(path)))
	if err != nil {
		return err
	}
	if binary {
		return fmt.Errorf("binary file")
	}

	if _, err := r.git.Run(ctx, repoPath, "checkout", "--"+string(strategy), "--", path); err != nil {
		return fmt.Errorf("checkout --%s: %w", strategy, err)
	}
	if _, err := r.git.Run(ctx, repoPath, "add", "--", path); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	return nil
}

// stages returns which index stages exist for an unmerged path.
func (r *ConflictResolver) stages(ctx context.Context, repoPath, path string) (map[string]bool, error) {
	out, err := r.git.Run(ctx, repoPath, "ls-files", "-u", "-z", "--", path)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	stages := make(map[string]bool, 3)
	for _, rec := range splitNul(out) {
		// "<mode> <object> <stage>\t<path>"
		meta, _, ok := strings.Cut(rec, "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) == 3 {
			stages[fields[2]] = true
		}
	}
	return stages, nil
}

// reconcile moves any "resolved" path that is still unmerged to manual and
// adds unmerged paths nobody asked about.
func reconcile(resolved, manual, remaining []string) ([]string, []string) {
	still := make(map[string]bool, len(remaining))
	for _, p := range remaining {
		still[p] = true
	}
	kept := make([]string, 0, len(resolved))
	for _, p := range resolved {
		if still[p] {
			manual = append(manual, p)
			continue
		}
		kept = append(kept, p)
	}

	listed := make(map[string]bool, len(manual))
	for _, p := range manual {
		listed[p] = true
	}
	for _, p := range remaining {
		if !listed[p] {
			manual = append(manual, p)
			listed[p] = true
		}
	}
	sort.Strings(manual)
	return kept, manual
}

func isBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// splitNul splits NUL-separated git output into a sorted, deduplicated list.
func splitNul(out string) []string {
	seen := make(map[string]bool)
	paths := []string{}
	for _, p := range strings.Split(out, "\x00") {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
