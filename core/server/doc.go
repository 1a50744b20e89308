// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures for server settings, including the pixel
// size of the in-memory surface the inspector feature hosts.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the start command when wiring the inspector feature.
package server
