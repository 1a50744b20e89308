// Package config provides configuration management for mapsync.
//
// It utilizes Viper for loading configuration from environment variables,
// config files (config.yaml), and command-line flags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, surface dimensions)
//   - Database: MySQL connection details for the render-pass journal
//   - Storage: S3/MinIO credentials and bucket settings for snapshots
//   - Snapshot: snapshot object naming and cache settings
//   - Journal: journal retention settings
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
