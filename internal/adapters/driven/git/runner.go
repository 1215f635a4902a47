// Package git runs the git binary for the sync workflows.
//
// Credentials are passed per command as an HTTP authorization header and
// are never written to remotes, URLs or returned errors. Failures are
// classified into domain sync errors by matching git's stderr, which is
// best effort: unrecognised failures surface as *CommandError.
package git

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.GitRunner = (*Runner)(nil)

const redacted = "[REDACTED]"

// waitDelay bounds how long a killed git may hold its output pipes open.
const waitDelay = 2 * time.Second

// CommandError is a git failure that could not be classified.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	sub := "git"
	if len(e.Args) > 0 {
		sub = "git " + e.Args[0]
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d: %s", sub, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", sub, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Runner executes git subcommands with exec.CommandContext.
type Runner struct {
	binary string
}

// NewRunner creates a runner using "git" from PATH.
func NewRunner() *Runner {
	return &Runner{binary: "git"}
}

// WithBinary overrides the git executable.
func (r *Runner) WithBinary(path string) *Runner {
	r.binary = path
	return r
}

// Available reports whether the git binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// Run executes git with args in dir.
func (r *Runner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	return r.run(ctx, dir, nil, args)
}

// RunWithToken executes git with the token as an HTTP basic auth header.
func (r *Runner) RunWithToken(ctx context.Context, dir, token string, args ...string) (string, error) {
	if token == "" {
		return r.run(ctx, dir, nil, args)
	}
	header := "AUTHORIZATION: basic " + base64.StdEncoding.EncodeToString([]byte("x-access-token:"+token))
	full := append([]string{"-c", "credential.helper=", "-c", "http.extraheader=" + header}, args...)
	return r.run(ctx, dir, []string{token, header}, full)
}

func (r *Runner) run(ctx context.Context, dir string, secrets, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_ASKPASS=",
		"GCM_INTERACTIVE=never",
		"LC_ALL=C",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	visible := redactArgs(args, secrets)
	logger.Debug("git %s (in %s)", strings.Join(visible, " "), dir)

	err := cmd.Run()
	if err == nil {
		return strings.TrimSpace(stdout.String()), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", domain.NewSyncError(domain.KindNetworkSyncFailed,
				fmt.Sprintf("git %s timed out", firstSubcommand(visible)), ctxErr)
		}
		return "", ctxErr
	}

	msg := redact(strings.TrimSpace(stderr.String()), secrets)
	cmdErr := &CommandError{Args: stripConfig(visible), ExitCode: -1, Stderr: msg, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return "", Classify(cmdErr)
}

// Classify maps a git failure to a sync error kind by its stderr.
// Unrecognised failures are returned unchanged.
func Classify(err *CommandError) error {
	s := strings.ToLower(err.Stderr)
	switch {
	case containsAny(s, "authentication failed", "invalid username or password",
		"could not read username", "bad credentials"):
		return domain.NewSyncError(domain.KindTokenExpired, "git authentication failed", err)
	case containsAny(s, "permission to", "permission denied", "the requested url returned error: 403"):
		return domain.NewSyncError(domain.KindPermissionDenied, "git permission denied", err)
	case containsAny(s, "remote branch", "couldn't find remote ref", "pathspec"):
		return err
	case containsAny(s, "repository not found", "not found", "does not appear to be a git repository"):
		return domain.NewSyncError(domain.KindRepositoryNotFound, "git repository not found", err)
	case containsAny(s, "could not resolve host", "timed out", "connection refused", "connection reset",
		"failed to connect", "early eof", "remote end hung up", "rpc failed",
		"unable to access", "the requested url returned error: 5"):
		return domain.NewSyncError(domain.KindNetworkSyncFailed, "git network failure", err)
	default:
		return err
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, redacted)
		}
	}
	return s
}

func redactArgs(args, secrets []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = redact(a, secrets)
	}
	return out
}

// stripConfig drops leading "-c key=value" pairs.
func stripConfig(args []string) []string {
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}
	return args
}

func firstSubcommand(args []string) string {
	if rest := stripConfig(args); len(rest) > 0 {
		return rest[0]
	}
	return ""
}
