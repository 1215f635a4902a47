package services

import (
	"context"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/logger"
)

// TokenValidator checks credentials against the authenticated-identity endpoint.
// It never retries; retry policy belongs to the RetryCoordinator.
type TokenValidator struct {
	api driven.GitHubAPI
}

// NewTokenValidator creates a token validator.
func NewTokenValidator(api driven.GitHubAPI) *TokenValidator {
	return &TokenValidator{api: api}
}

// CheckTokenValidity returns true only when the identity request succeeds.
func (v *TokenValidator) CheckTokenValidity(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	login, err := v.api.AuthenticatedUser(ctx, token)
	if err != nil {
		logger.Debug("token check failed: %v", err)
		return false
	}
	logger.Debug("token authenticated as %s", login)
	return true
}

// RequireValidToken is CheckTokenValidity for callers that want a hard failure.
// Transport failures are reported as network errors so they stay retryable;
// every other failure is token_expired.
func (v *TokenValidator) RequireValidToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenRequired
	}
	if _, err := v.api.AuthenticatedUser(ctx, token); err != nil {
		if kind, ok := domain.KindOf(err); ok && kind == domain.KindNetworkSyncFailed {
			return err
		}
		return domain.NewSyncError(domain.KindTokenExpired, "github token is expired or invalid", err)
	}
	return nil
}
