// Package database handles database connections.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration. The connection is optional:
// mapsync runs fine without one, it only loses the render-pass journal.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database connection failed, journal disabled", zap.Error(err))
//	}
package database
