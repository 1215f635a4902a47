package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/socrates/internal/core/domain"
)

// FileSizeValidator partitions files by a size limit.
// The limit is inclusive: a file of exactly maxBytes is valid.
type FileSizeValidator struct {
	defaultLimit int64
	baseDir      string
}

// NewFileSizeValidator creates a validator with a default limit.
// A non-positive limit falls back to domain.DefaultMaxFileSize.
func NewFileSizeValidator(defaultLimit int64) *FileSizeValidator {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultMaxFileSize
	}
	return &FileSizeValidator{defaultLimit: defaultLimit}
}

// WithBaseDir returns a copy that resolves relative paths against dir.
// Reported paths keep the caller's spelling.
func (v *FileSizeValidator) WithBaseDir(dir string) *FileSizeValidator {
	cp := *v
	cp.baseDir = dir
	return &cp
}

// DefaultLimit returns the limit used when callers pass maxBytes <= 0.
func (v *FileSizeValidator) DefaultLimit() int64 {
	return v.defaultLimit
}

// ValidateFileSizes stats every path and compares it to maxBytes.
// Files that cannot be stat'ed are invalid, never skipped.
func (v *FileSizeValidator) ValidateFileSizes(paths []string, maxBytes int64) domain.FileSizeReport {
	if maxBytes <= 0 {
		maxBytes = v.defaultLimit
	}

	report := domain.FileSizeReport{
		Entries:      make([]domain.FileSizeEntry, 0, len(paths)),
		InvalidFiles: []string{},
		Limit:        maxBytes,
	}

	for _, p := range paths {
		entry := domain.FileSizeEntry{Path: p}

		info, err := os.Stat(v.resolve(p))
		switch {
		case err != nil:
			entry.Error = statReason(err)
			report.ErrorCount++
		case info.IsDir():
			entry.Error = "is a directory"
			report.ErrorCount++
		default:
			entry.Size = info.Size()
			entry.ExceedsLimit = entry.Size > maxBytes
			report.TotalBytes += entry.Size
			if entry.ExceedsLimit {
				report.OversizedCount++
			}
		}

		if entry.Invalid() {
			report.InvalidFiles = append(report.InvalidFiles, p)
		}
		report.Entries = append(report.Entries, entry)
	}

	report.TotalFiles = len(report.Entries)
	report.AllValid = report.OversizedCount == 0 && report.ErrorCount == 0
	report.Summary = summarise(report)
	return report
}

// HandleLargeFiles applies strategy to the validation of paths.
// Unreadable files are treated like oversized ones: excluded, failing or reported.
func (v *FileSizeValidator) HandleLargeFiles(
	paths []string, strategy domain.LargeFileStrategy, maxBytes int64,
) (domain.LargeFileResult, error) {
	if !strategy.IsValid() {
		return domain.LargeFileResult{}, fmt.Errorf("%w: large file strategy %q", domain.ErrInvalidStrategy, strategy)
	}

	report := v.ValidateFileSizes(paths, maxBytes)
	result := domain.LargeFileResult{
		Strategy:       strategy,
		ValidFiles:     []string{},
		ExcludedFiles:  []string{},
		OversizedFiles: append([]string{}, report.InvalidFiles...),
		Report:         report,
	}

	switch strategy {
	case domain.LargeFileExclude:
		for _, e := range report.Entries {
			if e.Invalid() {
				result.ExcludedFiles = append(result.ExcludedFiles, e.Path)
			} else {
				result.ValidFiles = append(result.ValidFiles, e.Path)
			}
		}
		result.Status = domain.StatusSuccess
		if len(result.ExcludedFiles) > 0 {
			result.Status = domain.StatusPartial
		}
	case domain.LargeFileFail:
		if !report.AllValid {
			result.Status = domain.StatusFailed
			return result, nil
		}
		result.ValidFiles = append(result.ValidFiles, paths...)
		result.Status = domain.StatusSuccess
	case domain.LargeFileWarn:
		result.ValidFiles = append(result.ValidFiles, paths...)
		result.Status = domain.StatusSuccess
	}

	return result, nil
}

func (v *FileSizeValidator) resolve(p string) string {
	if v.baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(v.baseDir, filepath.FromSlash(p))
}

func statReason(err error) string {
	switch {
	case os.IsNotExist(err):
		return "file not found"
	case os.IsPermission(err):
		return "permission denied"
	default:
		return err.Error()
	}
}

func summarise(r domain.FileSizeReport) string {
	s := fmt.Sprintf("%d files, %s total, limit %s",
		r.TotalFiles, humanize.IBytes(uint64(r.TotalBytes)), humanize.IBytes(uint64(r.Limit)))
	if r.OversizedCount > 0 {
		s += fmt.Sprintf(", %d over limit", r.OversizedCount)
	}
	if r.ErrorCount > 0 {
		s += fmt.Sprintf(", %d unreadable", r.ErrorCount)
	}
	return s
}
