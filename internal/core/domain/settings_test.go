package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSyncSettings(t *testing.T) {
	s := DefaultSyncSettings()

	assert.Equal(t, int64(100*1024*1024), s.MaxFileSize)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, 5*time.Minute, s.TimeoutPerAttempt)
	assert.Equal(t, time.Second, s.BackoffBase)
	assert.Equal(t, LargeFileExclude, s.LargeFileStrategy)
	assert.Equal(t, ConflictManual, s.ConflictStrategy)
	assert.Equal(t, "main", s.DefaultBranch)
	assert.NoError(t, s.Validate())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultSyncSettings(), s.Sync)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Empty(t, s.GitHub.BaseURL)
	assert.Empty(t, s.CurrentProject)
}

func TestSyncSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SyncSettings)
		want   error
	}{
		{"zero max file size", func(s *SyncSettings) { s.MaxFileSize = 0 }, ErrInvalidInput},
		{"negative retries", func(s *SyncSettings) { s.MaxRetries = -1 }, ErrInvalidInput},
		{"too many retries", func(s *SyncSettings) { s.MaxRetries = MaxRetriesLimit + 1 }, ErrInvalidInput},
		{"zero timeout", func(s *SyncSettings) { s.TimeoutPerAttempt = 0 }, ErrInvalidInput},
		{"negative backoff", func(s *SyncSettings) { s.BackoffBase = -time.Second }, ErrInvalidInput},
		{"large file strategy", func(s *SyncSettings) { s.LargeFileStrategy = "shrink" }, ErrInvalidStrategy},
		{"conflict strategy", func(s *SyncSettings) { s.ConflictStrategy = "rebase" }, ErrInvalidStrategy},
		{"empty branch", func(s *SyncSettings) { s.DefaultBranch = "" }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSyncSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestSyncSettings_ZeroRetriesIsValid(t *testing.T) {
	s := DefaultSyncSettings()
	s.MaxRetries = 0
	s.BackoffBase = 0

	assert.NoError(t, s.Validate())
}
