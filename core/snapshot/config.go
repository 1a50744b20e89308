package snapshot

// Config holds configuration for the description snapshot store.
type Config struct {
	// Enabled toggles the snapshot feature.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is the object key prefix snapshots are stored under.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
	// CacheTTLSeconds is the time-to-live for cached snapshot loads.
	// Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
}
