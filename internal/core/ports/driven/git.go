package driven

import "context"

// GitRunner executes git subcommands.
//
// A non-zero exit is returned as an error; recognisable failures
// (authentication, permission, missing repository, network) are classified
// into domain sync errors on a best-effort basis.
type GitRunner interface {
	// Run executes git with args in dir and returns trimmed stdout.
	Run(ctx context.Context, dir string, args ...string) (string, error)

	// RunWithToken is Run with the token supplied as an HTTP auth header.
	// The token never appears in URLs, remotes or returned errors.
	RunWithToken(ctx context.Context, dir, token string, args ...string) (string, error)
}
