package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStrategy indicates an unknown large-file or conflict strategy.
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidRepositoryRef indicates a repository identifier could not be parsed.
	ErrInvalidRepositoryRef = errors.New("invalid repository reference")

	// ErrProjectNotLinked indicates the project has no GitHub repository.
	ErrProjectNotLinked = errors.New("project is not linked to a GitHub repository")

	// ErrTokenRequired indicates no GitHub token was supplied.
	ErrTokenRequired = errors.New("github token required")

	// ErrFilesTooLarge indicates the fail strategy rejected oversized files.
	ErrFilesTooLarge = errors.New("files exceed the size limit")
)

// SyncErrorKind tags a synchronisation failure. Callers branch on the kind
// to choose user-facing messaging and whether to retry.
type SyncErrorKind string

// Sync error kinds.
const (
	KindTokenExpired             SyncErrorKind = "token_expired"
	KindPermissionDenied         SyncErrorKind = "permission_denied"
	KindRepositoryNotFound       SyncErrorKind = "repository_not_found"
	KindNetworkSyncFailed        SyncErrorKind = "network_sync_failed"
	KindConflictResolutionFailed SyncErrorKind = "conflict_resolution_failed"
)

// Sentinels for each kind. errors.Is(err, ErrTokenExpired) is true for any
// *SyncError carrying KindTokenExpired.
var (
	ErrTokenExpired             = &SyncError{Kind: KindTokenExpired, Message: "github token is expired or invalid"}
	ErrPermissionDenied         = &SyncError{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrRepositoryNotFound       = &SyncError{Kind: KindRepositoryNotFound, Message: "repository not found"}
	ErrNetworkSyncFailed        = &SyncError{Kind: KindNetworkSyncFailed, Message: "network synchronisation failed"}
	ErrConflictResolutionFailed = &SyncError{Kind: KindConflictResolutionFailed, Message: "merge conflicts require manual resolution"}
)

// SyncError is a classified synchronisation failure.
type SyncError struct {
	Kind    SyncErrorKind
	Message string
	Err     error
}

// NewSyncError creates a classified error wrapping an optional cause.
func NewSyncError(kind SyncErrorKind, message string, err error) *SyncError {
	return &SyncError{Kind: kind, Message: message, Err: err}
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is matches any other *SyncError with the same kind.
func (e *SyncError) Is(target error) bool {
	var t *SyncError
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// Retryable reports whether waiting and trying again can change the outcome.
func (e *SyncError) Retryable() bool {
	return e.Kind == KindNetworkSyncFailed
}

// KindOf returns the kind of the first *SyncError in err's chain.
func KindOf(err error) (SyncErrorKind, bool) {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsRetryable reports whether err is a transient failure: a network-kind
// sync error or a per-attempt deadline.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if kind, ok := KindOf(err); ok {
		return kind == KindNetworkSyncFailed
	}
	return errors.Is(err, context.DeadlineExceeded)
}
