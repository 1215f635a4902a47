package driving

import "github.com/custodia-labs/socrates/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by key, validating the value.
	Set(key, value string) error

	// SetCurrentProject records the project CLI commands act on by default.
	SetCurrentProject(projectID string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns the settable keys in display order.
	Keys() []string
}
