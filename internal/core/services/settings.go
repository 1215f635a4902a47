package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyMaxFileSize       = "sync.max_file_size"
	KeyMaxRetries        = "sync.max_retries"
	KeyTimeoutPerAttempt = "sync.timeout_per_attempt"
	KeyBackoffBase       = "sync.backoff_base"
	KeyLargeFileStrategy = "sync.large_file_strategy"
	KeyConflictStrategy  = "sync.conflict_strategy"
	KeyIgnorePatterns    = "sync.ignore_patterns"
	KeyDefaultBranch     = "sync.default_branch"
	KeyGitHubBaseURL     = "github.base_url"
	KeyServerAddr        = "server.addr"
	KeyCurrentProject    = "project.current"
)

var settingKeys = []string{
	KeyMaxFileSize,
	KeyMaxRetries,
	KeyTimeoutPerAttempt,
	KeyBackoffBase,
	KeyLargeFileStrategy,
	KeyConflictStrategy,
	KeyIgnorePatterns,
	KeyDefaultBranch,
	KeyGitHubBaseURL,
	KeyServerAddr,
	KeyCurrentProject,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or malformed values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Sync: domain.SyncSettings{
			MaxFileSize:       s.getInt64(KeyMaxFileSize, defaults.Sync.MaxFileSize),
			MaxRetries:        s.getRetries(defaults.Sync.MaxRetries),
			TimeoutPerAttempt: s.getDuration(KeyTimeoutPerAttempt, defaults.Sync.TimeoutPerAttempt),
			BackoffBase:       s.getDuration(KeyBackoffBase, defaults.Sync.BackoffBase),
			LargeFileStrategy: s.getLargeFileStrategy(defaults.Sync.LargeFileStrategy),
			ConflictStrategy:  s.getConflictStrategy(defaults.Sync.ConflictStrategy),
			IgnorePatterns:    s.getStringSlice(KeyIgnorePatterns, defaults.Sync.IgnorePatterns),
			DefaultBranch:     s.getString(KeyDefaultBranch, defaults.Sync.DefaultBranch),
		},
		GitHub: domain.GitHubSettings{
			BaseURL: s.configStore.GetString(KeyGitHubBaseURL),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(KeyServerAddr, defaults.Server.Addr),
		},
		CurrentProject: s.configStore.GetString(KeyCurrentProject),
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Sync.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyMaxFileSize, settings.Sync.MaxFileSize},
		{KeyMaxRetries, int64(settings.Sync.MaxRetries)},
		{KeyTimeoutPerAttempt, settings.Sync.TimeoutPerAttempt.String()},
		{KeyBackoffBase, settings.Sync.BackoffBase.String()},
		{KeyLargeFileStrategy, string(settings.Sync.LargeFileStrategy)},
		{KeyConflictStrategy, string(settings.Sync.ConflictStrategy)},
		{KeyIgnorePatterns, settings.Sync.IgnorePatterns},
		{KeyDefaultBranch, settings.Sync.DefaultBranch},
		{KeyGitHubBaseURL, settings.GitHub.BaseURL},
		{KeyServerAddr, settings.Server.Addr},
		{KeyCurrentProject, settings.CurrentProject},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set parses value for key, validates the resulting settings and saves them.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	switch key {
	case KeyMaxFileSize:
		n, err := humanize.ParseBytes(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		settings.Sync.MaxFileSize = int64(n)
	case KeyMaxRetries:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		settings.Sync.MaxRetries = n
	case KeyTimeoutPerAttempt, KeyBackoffBase:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		if key == KeyTimeoutPerAttempt {
			settings.Sync.TimeoutPerAttempt = d
		} else {
			settings.Sync.BackoffBase = d
		}
	case KeyLargeFileStrategy:
		st, err := domain.ParseLargeFileStrategy(value)
		if err != nil {
			return err
		}
		settings.Sync.LargeFileStrategy = st
	case KeyConflictStrategy:
		st, err := domain.ParseConflictStrategy(value)
		if err != nil {
			return err
		}
		settings.Sync.ConflictStrategy = st
	case KeyIgnorePatterns:
		settings.Sync.IgnorePatterns = splitList(value)
	case KeyDefaultBranch:
		settings.Sync.DefaultBranch = value
	case KeyGitHubBaseURL:
		settings.GitHub.BaseURL = value
	case KeyServerAddr:
		if value == "" {
			return fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, key)
		}
		settings.Server.Addr = value
	case KeyCurrentProject:
		settings.CurrentProject = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	return s.Save(settings)
}

// SetCurrentProject records the project CLI commands act on by default.
func (s *SettingsService) SetCurrentProject(projectID string) error {
	if err := s.configStore.Set(KeyCurrentProject, projectID); err != nil {
		return fmt.Errorf("save %s: %w", KeyCurrentProject, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Keys returns the settable keys in display order.
func (s *SettingsService) Keys() []string {
	return append([]string(nil), settingKeys...)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return int64(val)
}

// getRetries allows an explicit zero.
func (s *SettingsService) getRetries(defaultVal int) int {
	if _, exists := s.configStore.Get(KeyMaxRetries); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(KeyMaxRetries); val >= 0 && val <= domain.MaxRetriesLimit {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return append([]string(nil), defaultVal...)
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getLargeFileStrategy(defaultVal domain.LargeFileStrategy) domain.LargeFileStrategy {
	st := domain.LargeFileStrategy(s.configStore.GetString(KeyLargeFileStrategy))
	if !st.IsValid() {
		return defaultVal
	}
	return st
}

func (s *SettingsService) getConflictStrategy(defaultVal domain.ConflictStrategy) domain.ConflictStrategy {
	st := domain.ConflictStrategy(s.configStore.GetString(KeyConflictStrategy))
	if !st.IsValid() {
		return defaultVal
	}
	return st
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
