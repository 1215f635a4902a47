package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
	"github.com/custodia-labs/socrates/internal/logger"
)

// Ensure ProjectSyncService implements the interface.
var _ driving.ProjectSyncService = (*ProjectSyncService)(nil)

// Identity used for commits made on behalf of a project.
const (
	commitAuthorName  = "Socrates"
	commitAuthorEmail = "socrates@users.noreply.github.com"
)

// DefaultCommitMessage is used when a push is requested without a message.
const DefaultCommitMessage = "Update from Socrates"

// ProjectSyncService runs the pull, resolve and push workflows for stored
// projects. Every run works in a fresh temporary working copy that is
// removed when the run ends.
type ProjectSyncService struct {
	handler  *GitHubSyncHandler
	api      driven.GitHubAPI
	git      driven.GitRunner
	projects driven.ProjectStore
	files    driven.ProjectFileStore
	settings domain.SyncSettings
	workRoot string
	now      func() time.Time
}

// NewProjectSyncService creates a project sync service.
func NewProjectSyncService(
	handler *GitHubSyncHandler,
	api driven.GitHubAPI,
	git driven.GitRunner,
	projects driven.ProjectStore,
	files driven.ProjectFileStore,
	settings domain.SyncSettings,
) *ProjectSyncService {
	return &ProjectSyncService{
		handler:  handler,
		api:      api,
		git:      git,
		projects: projects,
		files:    files,
		settings: settings,
		now:      time.Now,
	}
}

// WithWorkRoot places temporary working copies under dir instead of the
// system temp directory.
func (s *ProjectSyncService) WithWorkRoot(dir string) *ProjectSyncService {
	s.workRoot = dir
	return s
}

// snapshot is what a successful attempt leaves for the stored project.
type snapshot struct {
	// files is the file set to store after a pull or sync.
	files []domain.ProjectFile

	// remoteOnly are remote paths kept out of storage for their size.
	remoteOnly []string

	// dropped are remote paths newly kept out of storage in this run.
	dropped []string

	// synced is the commit whose tree matches the stored files after a push.
	synced string
}

// attemptResults maps each attempt's report to its snapshot. Abandoned
// attempts may still finish, so only the report the coordinator returns
// is looked up.
type attemptResults struct {
	mu   sync.Mutex
	byID map[*domain.SyncReport]*snapshot
}

func newAttemptResults() *attemptResults {
	return &attemptResults{byID: make(map[*domain.SyncReport]*snapshot)}
}

func (r *attemptResults) put(report *domain.SyncReport, snap *snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[report] = snap
}

func (r *attemptResults) get(report *domain.SyncReport) *snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[report]
}

// Import clones a repository into a new project.
func (s *ProjectSyncService) Import(ctx context.Context, token string, req driving.ImportRequest) (*domain.SyncReport, error) {
	logger.Section("Import")

	ref, err := domain.ParseRepositoryRef(req.URL)
	if err != nil {
		return nil, err
	}
	if err := s.handler.Tokens().RequireValidToken(ctx, token); err != nil {
		return nil, err
	}
	info, err := s.handler.Access().RequireRepoAccess(ctx, ref, token, false)
	if err != nil {
		return nil, err
	}

	branch := firstNonEmpty(req.Branch, info.DefaultBranch, s.settings.DefaultBranch)
	results := newAttemptResults()
	outcome := s.handler.SyncWithRetryAndResume(ctx, ref, func(actx context.Context, ref domain.RepositoryRef) (*domain.SyncReport, error) {
		return s.fetch(actx, token, ref, branch, domain.OperationImport, results)
	}, driving.RetryOptions{})
	if !outcome.Succeeded() {
		return nil, outcome.LastError
	}

	report := outcome.Payload
	snap := results.get(report)
	now := s.now()
	project := domain.Project{
		ID:             uuid.NewString(),
		Name:           firstNonEmpty(req.Name, ref.Name),
		Repository:     ref.FullName(),
		Branch:         branch,
		LastCommitSHA:  report.CommitSHA,
		LastSyncAt:     now,
		LastSyncStatus: report.Status,
		ExcludedPaths:  snap.remoteOnly,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	if err := s.files.Replace(ctx, project.ID, snap.files); err != nil {
		return nil, fmt.Errorf("store project files: %w", err)
	}

	report.ProjectID = project.ID
	report.CompletedAt = now
	logger.Info("imported %s as project %s (%d files)", ref, project.ID, report.FilesPulled)
	return report, nil
}

// Pull replaces the stored project files with the remote branch contents.
func (s *ProjectSyncService) Pull(ctx context.Context, token, projectID string) (*domain.SyncReport, error) {
	logger.Section("Pull")

	project, ref, err := s.linkedProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.handler.Tokens().RequireValidToken(ctx, token); err != nil {
		return nil, s.recordFailure(ctx, project, err)
	}
	if _, err := s.handler.Access().RequireRepoAccess(ctx, ref, token, false); err != nil {
		return nil, s.recordFailure(ctx, project, err)
	}

	branch := firstNonEmpty(project.Branch, s.settings.DefaultBranch)
	results := newAttemptResults()
	outcome := s.handler.SyncWithRetryAndResume(ctx, ref, func(actx context.Context, ref domain.RepositoryRef) (*domain.SyncReport, error) {
		return s.fetch(actx, token, ref, branch, domain.OperationPull, results)
	}, driving.RetryOptions{})
	if !outcome.Succeeded() {
		return nil, s.recordFailure(ctx, project, outcome.LastError)
	}

	report := outcome.Payload
	snap := results.get(report)
	if err := s.files.Replace(ctx, project.ID, snap.files); err != nil {
		return nil, s.recordFailure(ctx, project, fmt.Errorf("store project files: %w", err))
	}
	project.Branch = branch
	project.LastCommitSHA = report.CommitSHA
	project.ExcludedPaths = snap.remoteOnly
	report.ProjectID = project.ID
	return report, s.recordSuccess(ctx, project, report)
}

// Push commits the stored files and pushes them. Remote changes made since
// the last sync are merged and conflicts resolved with the configured
// strategy. When the repository is created in this run and the push then
// fails, the result is partial rather than an error.
func (s *ProjectSyncService) Push(
	ctx context.Context, token, projectID string, req driving.PushRequest,
) (*domain.SyncReport, error) {
	logger.Section("Push")
	return s.push(ctx, token, projectID, req, domain.OperationPush)
}

// Sync pushes local changes and then refreshes the stored files from the
// merged tree. Files held back for their size keep their stored content.
func (s *ProjectSyncService) Sync(ctx context.Context, token, projectID, message string) (*domain.SyncReport, error) {
	logger.Section("Sync")
	return s.push(ctx, token, projectID, driving.PushRequest{Message: message}, domain.OperationSync)
}

// Status returns the project's linkage and last sync state.
func (s *ProjectSyncService) Status(ctx context.Context, projectID string) (*domain.ProjectSyncStatus, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	count, err := s.files.Count(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("count project files: %w", err)
	}

	status := &domain.ProjectSyncStatus{
		ProjectID:      project.ID,
		Name:           project.Name,
		Linked:         project.IsLinked(),
		Repository:     project.Repository,
		Branch:         project.Branch,
		LastCommitSHA:  project.LastCommitSHA,
		LastSyncStatus: project.LastSyncStatus,
		LastSyncError:  project.LastSyncError,
		ExcludedPaths:  project.ExcludedPaths,
		FileCount:      count,
	}
	if !project.LastSyncAt.IsZero() {
		t := project.LastSyncAt
		status.LastSyncAt = &t
	}
	return status, nil
}

func (s *ProjectSyncService) push(
	ctx context.Context, token, projectID string, req driving.PushRequest, op domain.SyncOperation,
) (*domain.SyncReport, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.handler.Tokens().RequireValidToken(ctx, token); err != nil {
		return nil, s.recordFailure(ctx, project, err)
	}

	created := false
	if !project.IsLinked() {
		if !req.Create {
			return nil, domain.ErrProjectNotLinked
		}
		info, err := s.api.CreateRepository(ctx, token, driven.CreateRepositoryRequest{
			Name:        firstNonEmpty(req.RepoName, repoSlug(project.Name)),
			Description: fmt.Sprintf("Socrates project %s", project.Name),
			Private:     req.Private,
		})
		if err != nil {
			return nil, s.recordFailure(ctx, project, fmt.Errorf("create repository: %w", err))
		}
		created = true
		project.Repository = info.Ref.FullName()
		project.Branch = firstNonEmpty(info.DefaultBranch, s.settings.DefaultBranch)
		project.UpdatedAt = s.now()
		if err := s.projects.Save(ctx, *project); err != nil {
			return nil, fmt.Errorf("link project: %w", err)
		}
		logger.Info("created repository %s", project.Repository)
	}

	ref, err := project.RepositoryRef()
	if err != nil {
		return nil, err
	}
	if !created {
		if _, err := s.handler.Access().RequireRepoAccess(ctx, ref, token, true); err != nil {
			return nil, s.recordFailure(ctx, project, err)
		}
	}

	stored, err := s.files.List(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}

	job := pushJob{
		token:      token,
		branch:     firstNonEmpty(project.Branch, s.settings.DefaultBranch),
		base:       project.LastCommitSHA,
		message:    firstNonEmpty(req.Message, DefaultCommitMessage),
		files:      stored,
		remoteOnly: remoteOnlyPaths(project.ExcludedPaths, stored),
		op:         op,
	}
	results := newAttemptResults()
	outcome := s.handler.SyncWithRetryAndResume(ctx, ref, func(actx context.Context, ref domain.RepositoryRef) (*domain.SyncReport, error) {
		return s.pushAttempt(actx, ref, job, results)
	}, driving.RetryOptions{})

	if !outcome.Succeeded() {
		if !created {
			return nil, s.recordFailure(ctx, project, outcome.LastError)
		}
		report := &domain.SyncReport{
			Operation:         op,
			ProjectID:         project.ID,
			Repository:        ref.FullName(),
			Branch:            job.branch,
			Status:            domain.StatusPartial,
			RepositoryCreated: true,
			Attempts:          outcome.Attempts,
			Message:           fmt.Sprintf("repository created but push failed: %v", outcome.LastError),
		}
		project.LastSyncError = outcome.LastError.Error()
		return report, s.recordSuccess(ctx, project, report)
	}

	report := outcome.Payload
	snap := results.get(report)
	report.ProjectID = project.ID
	report.RepositoryCreated = created
	project.Branch = job.branch
	project.LastSyncError = ""
	if op == domain.OperationSync {
		if err := s.files.Replace(ctx, project.ID, snap.files); err != nil {
			return nil, s.recordFailure(ctx, project, fmt.Errorf("store merged files: %w", err))
		}
		report.FilesPulled = len(snap.files)
		if len(snap.dropped) > 0 {
			report.ExcludedFiles = unionPaths(report.ExcludedFiles, snap.dropped)
			report.Status = domain.StatusPartial
		}
		project.LastCommitSHA = report.CommitSHA
		project.ExcludedPaths = snap.remoteOnly
	} else {
		// Remote changes merged by a plain push are not stored yet, so the
		// next push must start from the commit that matches storage.
		project.LastCommitSHA = snap.synced
		project.ExcludedPaths = job.remoteOnly
	}
	if err := s.recordSuccess(ctx, project, report); err != nil {
		return nil, err
	}
	return report, nil
}

// pushJob is the immutable input of one push attempt.
type pushJob struct {
	token      string
	branch     string
	base       string
	message    string
	files      []domain.ProjectFile
	remoteOnly []string
	op         domain.SyncOperation
}

// pushAttempt runs one complete push in a fresh working copy.
func (s *ProjectSyncService) pushAttempt(
	ctx context.Context, ref domain.RepositoryRef, job pushJob, results *attemptResults,
) (*domain.SyncReport, error) {
	dir, cleanup, err := s.workdir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if _, err := s.git.Run(ctx, dir, "init", "--quiet"); err != nil {
		return nil, err
	}
	if _, err := s.git.Run(ctx, dir, "remote", "add", "origin", ref.CloneURL()); err != nil {
		return nil, err
	}

	remoteHead, err := s.remoteHead(ctx, dir, job.token, job.branch)
	if err != nil {
		return nil, err
	}

	base := ""
	if remoteHead != "" {
		if _, err := s.git.RunWithToken(ctx, dir, job.token, "fetch", "--quiet", "origin", job.branch); err != nil {
			return nil, err
		}
		base = remoteHead
		if job.base != "" && s.hasCommit(ctx, dir, job.base) {
			base = job.base
		}
		if _, err := s.git.Run(ctx, dir, "checkout", "--quiet", "-B", job.branch, base); err != nil {
			return nil, err
		}
	} else if _, err := s.git.Run(ctx, dir, "symbolic-ref", "HEAD", "refs/heads/"+job.branch); err != nil {
		return nil, err
	}

	if err := clearWorkTree(dir); err != nil {
		return nil, err
	}
	paths, err := writeFiles(dir, job.files)
	if err != nil {
		return nil, err
	}

	sizes, err := s.handler.Sizes().WithBaseDir(dir).HandleLargeFiles(paths, s.settings.LargeFileStrategy, s.settings.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if sizes.Status == domain.StatusFailed {
		return nil, fmt.Errorf("%w: %s", domain.ErrFilesTooLarge, strings.Join(sizes.OversizedFiles, ", "))
	}
	for _, p := range sizes.ExcludedFiles {
		logger.Warn("excluding %s: over the size limit", p)
		if err := s.holdBack(ctx, dir, base, p); err != nil {
			return nil, err
		}
	}
	for _, p := range job.remoteOnly {
		if err := s.holdBack(ctx, dir, base, p); err != nil {
			return nil, err
		}
	}

	if _, err := s.git.Run(ctx, dir, "add", "--all"); err != nil {
		return nil, err
	}
	changes, err := s.git.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	committed := false
	synced := base
	if changes != "" {
		if _, err := s.gitCommit(ctx, dir, "commit", "--quiet", "-m", job.message); err != nil {
			return nil, err
		}
		committed = true
		if synced, err = s.git.Run(ctx, dir, "rev-parse", "HEAD"); err != nil {
			return nil, err
		}
	}

	report := &domain.SyncReport{
		Operation:       job.op,
		Repository:      ref.FullName(),
		Branch:          job.branch,
		Status:          domain.StatusSuccess,
		FilesPushed:     len(sizes.ValidFiles),
		ExcludedFiles:   sizes.ExcludedFiles,
		OversizedFiles:  sizes.OversizedFiles,
		NothingToCommit: !committed,
	}
	if len(sizes.ExcludedFiles) > 0 {
		report.Status = domain.StatusPartial
	}

	if !committed && remoteHead == "" {
		snap, err := s.storedSnapshot(dir, job, sizes.ExcludedFiles)
		if err != nil {
			return nil, err
		}
		report.Message = "nothing to push"
		report.CompletedAt = s.now()
		results.put(report, snap)
		return report, nil
	}

	if remoteHead != "" && base != remoteHead {
		resolution, err := s.merge(ctx, dir, remoteHead)
		if err != nil {
			return nil, err
		}
		report.Conflicts = resolution
	}

	head, err := s.git.Run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	if head != remoteHead {
		if _, err := s.git.RunWithToken(ctx, dir, job.token, "push", "--quiet", "origin", "HEAD:refs/heads/"+job.branch); err != nil {
			return nil, err
		}
	} else {
		report.Message = "remote already up to date"
	}

	snap, err := s.storedSnapshot(dir, job, sizes.ExcludedFiles)
	if err != nil {
		return nil, err
	}
	snap.synced = synced

	report.CommitSHA = head
	report.CompletedAt = s.now()
	results.put(report, snap)
	return report, nil
}

// holdBack keeps path out of the commit. The base version is restored when
// the base tracks the path, otherwise the working file is removed.
func (s *ProjectSyncService) holdBack(ctx context.Context, dir, base, path string) error {
	if base != "" {
		if _, err := s.git.Run(ctx, dir, "cat-file", "-e", base+":"+path); err == nil {
			if _, err := s.git.Run(ctx, dir, "checkout", base, "--", path); err != nil {
				return fmt.Errorf("keep remote %s: %w", path, err)
			}
			return nil
		}
	}
	if err := os.Remove(filepath.Join(dir, filepath.FromSlash(path))); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("exclude %s: %w", path, err)
	}
	return nil
}

// storedSnapshot builds the file set to store from the merged working copy.
// Files held back from the push keep their stored content. Remote-only files
// and incoming remote files over the size limit stay out of storage.
func (s *ProjectSyncService) storedSnapshot(dir string, job pushJob, heldBack []string) (*snapshot, error) {
	merged, err := s.collect(dir)
	if err != nil {
		return nil, err
	}

	held := pathSet(heldBack)
	remoteOnly := pathSet(job.remoteOnly)
	stored := make(map[string]bool, len(job.files))
	for _, f := range job.files {
		stored[f.Path] = true
	}

	present := make(map[string]bool, len(merged))
	var incoming []string
	for _, f := range merged {
		present[f.Path] = true
		if !held[f.Path] && !remoteOnly[f.Path] && !stored[f.Path] {
			incoming = append(incoming, f.Path)
		}
	}

	var dropped []string
	if len(incoming) > 0 && s.settings.LargeFileStrategy != domain.LargeFileWarn {
		sizes := s.handler.Sizes().WithBaseDir(dir).ValidateFileSizes(incoming, s.settings.MaxFileSize)
		for _, e := range sizes.Entries {
			if e.ExceedsLimit {
				dropped = append(dropped, e.Path)
				remoteOnly[e.Path] = true
			}
		}
	}

	files := make([]domain.ProjectFile, 0, len(merged)+len(heldBack))
	for _, f := range merged {
		if !held[f.Path] && !remoteOnly[f.Path] {
			files = append(files, f)
		}
	}
	for _, f := range job.files {
		if held[f.Path] {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var keep []string
	for p := range remoteOnly {
		if present[p] {
			keep = append(keep, p)
		}
	}
	sort.Strings(keep)
	return &snapshot{files: files, remoteOnly: keep, dropped: dropped}, nil
}

// merge merges the fetched remote head into HEAD and resolves conflicts
// with the configured strategy. Unresolved conflicts abort the merge.
func (s *ProjectSyncService) merge(ctx context.Context, dir, remoteHead string) (*domain.ConflictResolution, error) {
	_, mergeErr := s.gitCommit(ctx, dir, "merge", "--no-edit", remoteHead)
	if mergeErr == nil {
		return nil, nil
	}

	conflicts, err := s.handler.DetectMergeConflicts(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, fmt.Errorf("merge remote changes: %w", mergeErr)
	}
	logger.Info("%d conflicting files, resolving with %q", len(conflicts), s.settings.ConflictStrategy)

	resolution, err := s.handler.HandleMergeConflicts(ctx, dir, conflicts, s.settings.ConflictStrategy)
	if err != nil {
		return nil, err
	}
	if len(resolution.ManualRequired) > 0 {
		if _, err := s.git.Run(ctx, dir, "merge", "--abort"); err != nil {
			logger.Warn("merge --abort: %v", err)
		}
		return nil, domain.NewSyncError(domain.KindConflictResolutionFailed,
			fmt.Sprintf("conflicts need manual resolution: %s", strings.Join(resolution.ManualRequired, ", ")), nil)
	}

	if _, err := s.gitCommit(ctx, dir, "commit", "--quiet", "--no-edit"); err != nil {
		return nil, err
	}
	return &resolution, nil
}

// fetch clones branch and collects its files under the configured strategy.
func (s *ProjectSyncService) fetch(
	ctx context.Context, token string, ref domain.RepositoryRef, branch string,
	op domain.SyncOperation, results *attemptResults,
) (*domain.SyncReport, error) {
	dir, cleanup, err := s.workdir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if _, err := s.git.RunWithToken(ctx, dir, token,
		"clone", "--quiet", "--depth", "1", "--single-branch", "--branch", branch, "--", ref.CloneURL(), "."); err != nil {
		return nil, err
	}
	head, err := s.git.Run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}

	all, err := s.collect(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(all))
	for i, f := range all {
		paths[i] = f.Path
	}

	sizes, err := s.handler.Sizes().WithBaseDir(dir).HandleLargeFiles(paths, s.settings.LargeFileStrategy, s.settings.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if sizes.Status == domain.StatusFailed {
		return nil, fmt.Errorf("%w: %s", domain.ErrFilesTooLarge, strings.Join(sizes.OversizedFiles, ", "))
	}

	excluded := make(map[string]bool, len(sizes.ExcludedFiles))
	for _, p := range sizes.ExcludedFiles {
		excluded[p] = true
	}
	kept := make([]domain.ProjectFile, 0, len(all))
	for _, f := range all {
		if !excluded[f.Path] {
			kept = append(kept, f)
		}
	}

	report := &domain.SyncReport{
		Operation:      op,
		Repository:     ref.FullName(),
		Branch:         branch,
		CommitSHA:      head,
		Status:         sizes.Status,
		FilesPulled:    len(kept),
		ExcludedFiles:  sizes.ExcludedFiles,
		OversizedFiles: sizes.OversizedFiles,
		CompletedAt:    s.now(),
	}
	results.put(report, &snapshot{files: kept, remoteOnly: sizes.ExcludedFiles, synced: head})
	return report, nil
}

// collect reads every regular file below dir that is not ignored.
func (s *ProjectSyncService) collect(dir string) ([]domain.ProjectFile, error) {
	var files []domain.ProjectFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || s.ignored(rel) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		files = append(files, domain.ProjectFile{Path: rel, Content: content, UpdatedAt: s.now()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *ProjectSyncService) ignored(rel string) bool {
	for _, pattern := range s.settings.IgnorePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *ProjectSyncService) remoteHead(ctx context.Context, dir, token, branch string) (string, error) {
	out, err := s.git.RunWithToken(ctx, dir, token, "ls-remote", "--heads", "origin", "refs/heads/"+branch)
	if err != nil {
		return "", err
	}
	sha, _, _ := strings.Cut(out, "\t")
	return strings.TrimSpace(sha), nil
}

func (s *ProjectSyncService) hasCommit(ctx context.Context, dir, sha string) bool {
	_, err := s.git.Run(ctx, dir, "cat-file", "-e", sha+"^{commit}")
	return err == nil
}

// gitCommit runs a committing git command with the project identity.
func (s *ProjectSyncService) gitCommit(ctx context.Context, dir string, args ...string) (string, error) {
	full := append([]string{
		"-c", "user.name=" + commitAuthorName,
		"-c", "user.email=" + commitAuthorEmail,
		"-c", "commit.gpgsign=false",
	}, args...)
	return s.git.Run(ctx, dir, full...)
}

func (s *ProjectSyncService) workdir() (string, func(), error) {
	dir, err := os.MkdirTemp(s.workRoot, "socrates-sync-*")
	if err != nil {
		return "", nil, fmt.Errorf("create working copy: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("remove working copy %s: %v", dir, err)
		}
	}, nil
}

func (s *ProjectSyncService) linkedProject(ctx context.Context, id string) (*domain.Project, domain.RepositoryRef, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, domain.RepositoryRef{}, err
	}
	ref, err := project.RepositoryRef()
	if err != nil {
		return nil, domain.RepositoryRef{}, err
	}
	return project, ref, nil
}

func (s *ProjectSyncService) recordSuccess(ctx context.Context, project *domain.Project, report *domain.SyncReport) error {
	now := s.now()
	project.LastSyncAt = now
	project.LastSyncStatus = report.Status
	if report.Status == domain.StatusSuccess {
		project.LastSyncError = ""
	}
	project.UpdatedAt = now
	if report.CompletedAt.IsZero() {
		report.CompletedAt = now
	}
	if err := s.projects.Save(ctx, *project); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// recordFailure stores the failure on the project and returns cause.
func (s *ProjectSyncService) recordFailure(ctx context.Context, project *domain.Project, cause error) error {
	now := s.now()
	project.LastSyncAt = now
	project.LastSyncStatus = domain.StatusFailed
	project.LastSyncError = cause.Error()
	project.UpdatedAt = now
	if err := s.projects.Save(ctx, *project); err != nil {
		logger.Warn("record sync failure for %s: %v", project.ID, err)
	}
	return cause
}

// remoteOnlyPaths drops recorded remote-only paths the project now stores.
func remoteOnlyPaths(recorded []string, stored []domain.ProjectFile) []string {
	have := make(map[string]bool, len(stored))
	for _, f := range stored {
		have[f.Path] = true
	}
	var out []string
	for _, p := range recorded {
		if !have[p] {
			out = append(out, p)
		}
	}
	return out
}

func pathSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

// unionPaths merges two path lists into one sorted list without duplicates.
func unionPaths(a, b []string) []string {
	set := pathSet(a)
	for _, p := range b {
		set[p] = true
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// clearWorkTree removes everything but .git so deletions are committed.
func clearWorkTree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read working copy: %w", err)
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clear working copy: %w", err)
		}
	}
	return nil
}

// writeFiles materialises stored files below dir and returns their paths.
func writeFiles(dir string, files []domain.ProjectFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := cleanRelPath(f.Path)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

// cleanRelPath rejects paths that escape the working copy or touch .git.
func cleanRelPath(p string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "/") ||
		clean == ".." || strings.HasPrefix(clean, "../") ||
		clean == ".git" || strings.HasPrefix(clean, ".git/") {
		return "", fmt.Errorf("%w: file path %q", domain.ErrInvalidInput, p)
	}
	return clean, nil
}

var slugInvalid = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// repoSlug turns a project name into a valid repository name.
func repoSlug(name string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(strings.TrimSpace(name), "-"), "-.")
	if slug == "" {
		return "socrates-project"
	}
	return slug
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
