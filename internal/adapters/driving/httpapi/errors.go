package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("socrates api error: code=%s, message=%s", e.Code, e.Message)
}

// AbortWithError writes an error body and stops the handler chain.
func AbortWithError(ctx *gin.Context, status int, code string, err error) {
	body := APIError{Code: code, Message: err.Error()}
	if kind, ok := domain.KindOf(err); ok {
		body.Kind = string(kind)
	}
	ctx.Abort()
	ctx.Error(err) //nolint:errcheck
	ctx.PureJSON(status, body)
}

// AbortWithSyncError classifies err and aborts with the matching status.
func AbortWithSyncError(ctx *gin.Context, err error) {
	status, code := StatusFor(err)
	AbortWithError(ctx, status, code, err)
}

// StatusFor maps a workflow error to an HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTokenRequired):
		return http.StatusUnauthorized, CodeTokenRequired
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, CodeTokenExpired
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusUnauthorized, CodePermissionDenied
	case errors.Is(err, domain.ErrRepositoryNotFound):
		return http.StatusNotFound, CodeRepositoryNotFound
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeProjectNotFound
	case errors.Is(err, domain.ErrConflictResolutionFailed):
		return http.StatusConflict, CodeConflicts
	case errors.Is(err, domain.ErrFilesTooLarge):
		return http.StatusRequestEntityTooLarge, CodeFilesTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeSyncTimeout
	case errors.Is(err, domain.ErrNetworkSyncFailed):
		return http.StatusBadGateway, CodeNetworkFailed
	case errors.Is(err, domain.ErrProjectNotLinked):
		return http.StatusBadRequest, CodeProjectNotLinked
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidStrategy),
		errors.Is(err, domain.ErrInvalidRepositoryRef):
		return http.StatusBadRequest, CodeInvalidRequest
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
