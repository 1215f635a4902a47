package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

func init() {
	color.NoColor = true
	stdinIsTerminal = func() bool { return false }
}

// fakeHandler implements driving.GitHubSyncHandler.
type fakeHandler struct {
	tokenValid bool
	accessOK   bool
	reason     string
	report     domain.FileSizeReport
	largeFiles domain.LargeFileResult
	conflicts  []string
	resolution domain.ConflictResolution
	err        error

	lastToken    string
	lastLimit    int64
	lastStrategy string
}

func (f *fakeHandler) CheckTokenValidity(_ context.Context, token string) bool {
	f.lastToken = token
	return f.tokenValid
}

func (f *fakeHandler) CheckRepoAccess(_ context.Context, _ domain.RepositoryRef, token string) (bool, string) {
	f.lastToken = token
	return f.accessOK, f.reason
}

func (f *fakeHandler) ValidateFileSizes(_ []string, maxBytes int64) domain.FileSizeReport {
	f.lastLimit = maxBytes
	return f.report
}

func (f *fakeHandler) HandleLargeFiles(
	_ []string, strategy domain.LargeFileStrategy, maxBytes int64,
) (domain.LargeFileResult, error) {
	f.lastLimit = maxBytes
	f.lastStrategy = string(strategy)
	return f.largeFiles, f.err
}

func (f *fakeHandler) DetectMergeConflicts(_ context.Context, _ string) ([]string, error) {
	return f.conflicts, f.err
}

func (f *fakeHandler) HandleMergeConflicts(
	_ context.Context, _ string, _ []string, strategy domain.ConflictStrategy,
) (domain.ConflictResolution, error) {
	f.lastStrategy = string(strategy)
	return f.resolution, f.err
}

func (f *fakeHandler) SyncWithRetryAndResume(
	_ context.Context, _ domain.RepositoryRef, _ driving.SyncFunc, _ driving.RetryOptions,
) domain.RetryOutcome {
	return domain.RetryOutcome{}
}

// fakeProjectSync implements driving.ProjectSyncService.
type fakeProjectSync struct {
	report *domain.SyncReport
	status *domain.ProjectSyncStatus
	err    error

	token     string
	projectID string
	importReq driving.ImportRequest
	pushReq   driving.PushRequest
	message   string
}

func (f *fakeProjectSync) Import(_ context.Context, token string, req driving.ImportRequest) (*domain.SyncReport, error) {
	f.token, f.importReq = token, req
	return f.report, f.err
}

func (f *fakeProjectSync) Pull(_ context.Context, token, projectID string) (*domain.SyncReport, error) {
	f.token, f.projectID = token, projectID
	return f.report, f.err
}

func (f *fakeProjectSync) Push(
	_ context.Context, token, projectID string, req driving.PushRequest,
) (*domain.SyncReport, error) {
	f.token, f.projectID, f.pushReq = token, projectID, req
	return f.report, f.err
}

func (f *fakeProjectSync) Sync(_ context.Context, token, projectID, message string) (*domain.SyncReport, error) {
	f.token, f.projectID, f.message = token, projectID, message
	return f.report, f.err
}

func (f *fakeProjectSync) Status(_ context.Context, projectID string) (*domain.ProjectSyncStatus, error) {
	f.projectID = projectID
	return f.status, f.err
}

// resetFlags restores every flag in the tree to its default, since cobra
// keeps parsed values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setup installs the given services and restores the previous ones after the test.
func setup(t *testing.T, s *Services) {
	t.Helper()
	old := &Services{Handler: syncHandler, Sync: projectSync, Projects: projectService, Settings: settingsService}
	SetServices(s)
	t.Setenv(TokenEnv, "")
	t.Cleanup(func() {
		SetServices(old)
		resetFlags(rootCmd)
	})
}

// run executes the command tree and returns combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
