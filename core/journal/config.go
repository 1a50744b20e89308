package journal

// Config holds configuration for the render-pass journal.
type Config struct {
	// Enabled toggles journalling. Requires a database connection.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// RetainEntries caps how many entries list endpoints return.
	RetainEntries int `mapstructure:"retain_entries" default:"500"`
}
