// Package utils provides common utility functions shared across mapsync.
// It includes type coercion helpers used when normalizing attribute bags
// that arrive from JSON.
package utils
