package domain

import (
	"fmt"
	"time"
)

// DefaultMaxFileSize is GitHub's hard per-file limit (100 MiB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// MaxRetriesLimit is the largest accepted MaxRetries.
const MaxRetriesLimit = 10

// SyncSettings holds GitHub synchronisation behaviour configuration.
type SyncSettings struct {
	// MaxFileSize is the inclusive per-file size limit in bytes.
	MaxFileSize int64

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// TimeoutPerAttempt bounds a single sync attempt.
	TimeoutPerAttempt time.Duration

	// BackoffBase is the first backoff delay; attempt n waits BackoffBase * 2^n.
	BackoffBase time.Duration

	// LargeFileStrategy is applied by project workflows.
	LargeFileStrategy LargeFileStrategy

	// ConflictStrategy is applied when a push has to merge remote changes.
	ConflictStrategy ConflictStrategy

	// IgnorePatterns are doublestar globs skipped when collecting files.
	IgnorePatterns []string

	// DefaultBranch is used for new repositories and when the remote reports none.
	DefaultBranch string
}

// GitHubSettings holds GitHub API configuration.
type GitHubSettings struct {
	// BaseURL is an optional GitHub Enterprise API URL.
	BaseURL string
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Sync   SyncSettings
	GitHub GitHubSettings
	Server ServerSettings

	// CurrentProject is the project CLI commands act on by default.
	CurrentProject string
}

// DefaultSyncSettings returns sync settings with sensible defaults.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		MaxFileSize:       DefaultMaxFileSize,
		MaxRetries:        3,
		TimeoutPerAttempt: 5 * time.Minute,
		BackoffBase:       time.Second,
		LargeFileStrategy: LargeFileExclude,
		ConflictStrategy:  ConflictManual,
		IgnorePatterns:    []string{".git/**", "**/.DS_Store"},
		DefaultBranch:     "main",
	}
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Sync:   DefaultSyncSettings(),
		Server: ServerSettings{Addr: ":8080"},
	}
}

// Validate checks the settings are usable.
func (s SyncSettings) Validate() error {
	if s.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max file size must be positive", ErrInvalidInput)
	}
	if s.MaxRetries < 0 || s.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("%w: max retries must be between 0 and %d", ErrInvalidInput, MaxRetriesLimit)
	}
	if s.TimeoutPerAttempt <= 0 {
		return fmt.Errorf("%w: timeout per attempt must be positive", ErrInvalidInput)
	}
	if s.BackoffBase < 0 {
		return fmt.Errorf("%w: backoff base must not be negative", ErrInvalidInput)
	}
	if !s.LargeFileStrategy.IsValid() {
		return fmt.Errorf("%w: large file strategy %q", ErrInvalidStrategy, s.LargeFileStrategy)
	}
	if !s.ConflictStrategy.IsValid() {
		return fmt.Errorf("%w: conflict strategy %q", ErrInvalidStrategy, s.ConflictStrategy)
	}
	if s.DefaultBranch == "" {
		return fmt.Errorf("%w: default branch is empty", ErrInvalidInput)
	}
	return nil
}
