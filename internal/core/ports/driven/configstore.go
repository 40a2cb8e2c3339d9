package driven

// ConfigStore holds the persisted settings as flat dot-notation keys such as
// "llm.model" or "retrieval.chunk_size". SettingsService is its only reader.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" for missing or non-string values.
	GetString(key string) string

	// GetInt returns 0 for missing or non-numeric values.
	GetInt(key string) int

	// GetBool returns false for missing or non-bool values.
	GetBool(key string) bool

	// GetStringSlice returns nil for missing or non-list values.
	GetStringSlice(key string) []string

	// Set stores value under key. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save flushes every value to storage.
	Save() error

	// Load replaces the in-memory values with what storage holds.
	Load() error

	// Path identifies the backing file, or ":memory:".
	Path() string
}
