// Package inspector exposes the reconciliation engine over HTTP.
//
// It owns a long-lived in-memory rendering surface and a coordinator
// bound to it, and lets clients drive the engine remotely:
//
//   - Submit content descriptions and receive the pass summary
//   - Dry-run a description against the current state without applying
//   - Inspect the resulting surface state (entities, camera, indicator)
//   - Read and propose viewport state through the two-way binding
//   - Save, list, restore and delete description snapshots
//   - Browse the render-pass journal
//
// The feature is self-contained: it builds its own surface and host
// hierarchy from the configured dimensions and serializes all render
// passes internally, so handlers can run on any Fiber worker.
package inspector
