package driven

// ConfigStore is the flat key/value view of the settings file.
// Keys are dotted paths such as "sync.max_file_size"; implementations map
// them onto nested tables and convert types on read.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" when the key is unset or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is unset or not numeric.
	GetInt(key string) int

	// GetBool returns false when the key is unset or not a bool.
	GetBool(key string) bool

	// GetStringSlice returns nil when the key is unset or not a list.
	GetStringSlice(key string) []string

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Save writes every value to storage.
	Save() error

	// Load replaces the in-memory values with the stored ones.
	Load() error

	// Path returns where the values are stored.
	Path() string
}
