package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/logger"
)

// Access check reasons.
const (
	ReasonOK             = "ok"
	ReasonReadOnly       = "ok (read-only)"
	ReasonNotFound       = "repository not found or no access"
	ReasonDenied         = "authentication/permission denied"
	reasonNetworkPrefix  = "network error: "
	reasonUnexpectedCode = "unexpected response: HTTP %d"
)

// accessClass is the classification of one repository metadata request.
type accessClass int

const (
	accessOK accessClass = iota
	accessNotFound
	accessDenied
	accessNetwork
	accessUnexpected
)

// RepoAccessChecker determines whether a credential can reach a repository.
// Negative outcomes are results, not errors.
type RepoAccessChecker struct {
	api driven.GitHubAPI
}

// NewRepoAccessChecker creates a repository access checker.
func NewRepoAccessChecker(api driven.GitHubAPI) *RepoAccessChecker {
	return &RepoAccessChecker{api: api}
}

// CheckRepoAccess reports access and a reason distinguishing not found,
// forbidden and network failures.
func (c *RepoAccessChecker) CheckRepoAccess(ctx context.Context, ref domain.RepositoryRef, token string) (bool, string) {
	info, class, err := c.lookup(ctx, ref, token)
	switch class {
	case accessOK:
		if info != nil && !info.CanPush {
			return true, ReasonReadOnly
		}
		return true, ReasonOK
	case accessNotFound:
		return false, ReasonNotFound
	case accessDenied:
		return false, ReasonDenied
	case accessNetwork:
		return false, reasonNetworkPrefix + errorDetail(err)
	default:
		var sc driven.StatusCoder
		if errors.As(err, &sc) {
			return false, fmt.Sprintf(reasonUnexpectedCode, sc.HTTPStatus())
		}
		return false, reasonNetworkPrefix + errorDetail(err)
	}
}

// RequireRepoAccess is the strict form of CheckRepoAccess. It returns the
// repository metadata, or a classified sync error. When needPush is set a
// read-only credential is reported as permission denied.
func (c *RepoAccessChecker) RequireRepoAccess(
	ctx context.Context, ref domain.RepositoryRef, token string, needPush bool,
) (*domain.RepositoryInfo, error) {
	info, class, err := c.lookup(ctx, ref, token)
	switch class {
	case accessOK:
		if needPush && info != nil && !info.CanPush {
			return nil, domain.NewSyncError(domain.KindPermissionDenied,
				fmt.Sprintf("no push access to %s", ref.FullName()), nil)
		}
		return info, nil
	case accessNotFound:
		return nil, domain.NewSyncError(domain.KindRepositoryNotFound,
			fmt.Sprintf("repository %s not found or no access", ref.FullName()), err)
	case accessDenied:
		return nil, domain.NewSyncError(domain.KindPermissionDenied,
			fmt.Sprintf("access to %s denied", ref.FullName()), err)
	case accessNetwork:
		if _, ok := domain.KindOf(err); ok {
			return nil, err
		}
		return nil, domain.NewSyncError(domain.KindNetworkSyncFailed, "repository access check failed", err)
	default:
		return nil, fmt.Errorf("check access to %s: %w", ref.FullName(), err)
	}
}

func (c *RepoAccessChecker) lookup(
	ctx context.Context, ref domain.RepositoryRef, token string,
) (*domain.RepositoryInfo, accessClass, error) {
	if token == "" {
		return nil, accessDenied, domain.ErrTokenRequired
	}
	info, err := c.api.GetRepository(ctx, token, ref)
	if err == nil {
		return info, accessOK, nil
	}
	logger.Debug("repository lookup %s: %v", ref.FullName(), err)

	var sc driven.StatusCoder
	if errors.As(err, &sc) {
		switch code := sc.HTTPStatus(); {
		case code == http.StatusNotFound:
			return nil, accessNotFound, err
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return nil, accessDenied, err
		case code >= 500:
			return nil, accessNetwork, err
		default:
			return nil, accessUnexpected, err
		}
	}
	return nil, accessNetwork, err
}

func errorDetail(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
