package driven

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// GitHubAPI is the GitHub REST API as the sync subsystem sees it.
// Every call carries the caller's token; implementations must not cache it.
//
// Errors from non-2xx responses implement StatusCoder. Transport failures
// are returned as domain.KindNetworkSyncFailed sync errors.
type GitHubAPI interface {
	// AuthenticatedUser returns the login of the token's owner (GET /user).
	AuthenticatedUser(ctx context.Context, token string) (string, error)

	// GetRepository fetches repository metadata (GET /repos/{owner}/{repo}).
	GetRepository(ctx context.Context, token string, ref domain.RepositoryRef) (*domain.RepositoryInfo, error)

	// CreateRepository creates a repository for the authenticated user (POST /user/repos).
	CreateRepository(ctx context.Context, token string, req CreateRepositoryRequest) (*domain.RepositoryInfo, error)
}

// CreateRepositoryRequest describes a repository to create.
type CreateRepositoryRequest struct {
	Name        string
	Description string
	Private     bool
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatus() int
}
