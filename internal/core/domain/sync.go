package domain

import (
	"fmt"
	"strings"
	"time"
)

// SyncStatus is the overall outcome of a sync step or operation.
type SyncStatus string

// Sync statuses. Partial is distinct from both success and failure and is
// never coerced into either.
const (
	StatusSuccess SyncStatus = "success"
	StatusPartial SyncStatus = "partial"
	StatusFailed  SyncStatus = "failed"
)

// LargeFileStrategy selects how files over the size limit are handled.
type LargeFileStrategy string

// Large file strategies.
const (
	// LargeFileExclude drops oversized files and continues.
	LargeFileExclude LargeFileStrategy = "exclude"

	// LargeFileFail aborts when any file is oversized.
	LargeFileFail LargeFileStrategy = "fail"

	// LargeFileWarn keeps every file and reports the oversized ones.
	LargeFileWarn LargeFileStrategy = "warn"
)

// ParseLargeFileStrategy parses a strategy name.
func ParseLargeFileStrategy(s string) (LargeFileStrategy, error) {
	st := LargeFileStrategy(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: large file strategy %q (want exclude, fail or warn)", ErrInvalidStrategy, s)
	}
	return st, nil
}

// IsValid returns true if the strategy is recognised.
func (s LargeFileStrategy) IsValid() bool {
	switch s {
	case LargeFileExclude, LargeFileFail, LargeFileWarn:
		return true
	default:
		return false
	}
}

// ConflictStrategy selects how unmerged files are resolved.
type ConflictStrategy string

// Conflict strategies.
const (
	ConflictOurs   ConflictStrategy = "ours"
	ConflictTheirs ConflictStrategy = "theirs"
	ConflictManual ConflictStrategy = "manual"
)

// ParseConflictStrategy parses a strategy name.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	st := ConflictStrategy(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: conflict strategy %q (want ours, theirs or manual)", ErrInvalidStrategy, s)
	}
	return st, nil
}

// IsValid returns true if the strategy is recognised.
func (s ConflictStrategy) IsValid() bool {
	switch s {
	case ConflictOurs, ConflictTheirs, ConflictManual:
		return true
	default:
		return false
	}
}

// FileSizeEntry is the size check result for one path.
type FileSizeEntry struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ExceedsLimit bool   `json:"exceeds_limit"`
	Error        string `json:"error,omitempty"`
}

// Invalid reports whether the entry blocks an all-valid result.
func (e FileSizeEntry) Invalid() bool {
	return e.ExceedsLimit || e.Error != ""
}

// FileSizeReport aggregates a size validation run. Created fresh per call.
type FileSizeReport struct {
	Entries        []FileSizeEntry `json:"entries"`
	AllValid       bool            `json:"all_valid"`
	InvalidFiles   []string        `json:"invalid_files"`
	TotalFiles     int             `json:"total_files"`
	TotalBytes     int64           `json:"total_bytes"`
	OversizedCount int             `json:"oversized_count"`
	ErrorCount     int             `json:"error_count"`
	Limit          int64           `json:"limit"`
	Summary        string          `json:"summary"`
}

// LargeFileResult is the outcome of applying a LargeFileStrategy.
type LargeFileResult struct {
	Status         SyncStatus        `json:"status"`
	Strategy       LargeFileStrategy `json:"strategy"`
	ValidFiles     []string          `json:"valid_files"`
	ExcludedFiles  []string          `json:"excluded_files"`
	OversizedFiles []string          `json:"oversized_files"`
	Report         FileSizeReport    `json:"report"`
}

// ConflictResolution is the outcome of resolving unmerged files.
type ConflictResolution struct {
	Status         SyncStatus       `json:"status"`
	Strategy       ConflictStrategy `json:"strategy"`
	Resolved       []string         `json:"resolved"`
	ManualRequired []string         `json:"manual_required"`
}

// SyncOperation names a workflow operation.
type SyncOperation string

// Workflow operations.
const (
	OperationImport SyncOperation = "import"
	OperationPull   SyncOperation = "pull"
	OperationPush   SyncOperation = "push"
	OperationSync   SyncOperation = "sync"
)

// SyncReport is the payload of a successful (or partially successful)
// workflow run.
type SyncReport struct {
	Operation         SyncOperation       `json:"operation"`
	ProjectID         string              `json:"project_id"`
	Repository        string              `json:"repository"`
	Branch            string              `json:"branch"`
	CommitSHA         string              `json:"commit_sha,omitempty"`
	Status            SyncStatus          `json:"status"`
	FilesPulled       int                 `json:"files_pulled"`
	FilesPushed       int                 `json:"files_pushed"`
	ExcludedFiles     []string            `json:"excluded_files,omitempty"`
	OversizedFiles    []string            `json:"oversized_files,omitempty"`
	Conflicts         *ConflictResolution `json:"conflicts,omitempty"`
	RepositoryCreated bool                `json:"repository_created"`
	NothingToCommit   bool                `json:"nothing_to_commit,omitempty"`
	Attempts          int                 `json:"attempts"`
	Message           string              `json:"message,omitempty"`
	CompletedAt       time.Time           `json:"completed_at"`
}

// RetryOutcome is the terminal result of the retry coordinator.
// Attempts never exceeds MaxRetries+1.
type RetryOutcome struct {
	Status    SyncStatus
	Payload   *SyncReport
	LastError error
	Attempts  int
}

// Succeeded reports whether the final attempt returned normally.
func (o RetryOutcome) Succeeded() bool {
	return o.Status == StatusSuccess
}
