// Package content defines the declarative content-description model for
// the map reconciler: the closed set of node variants, the builder
// protocol, and the visitor that buckets a description for
// reconciliation.
//
// # Model
//
// A Description is an immutable value rebuilt from scratch on every
// render pass by invoking the caller's Builder closure exactly once.
// Node variants:
//   - PointAnnotation, PolylineAnnotation, PolygonAnnotation: layer-backed
//     annotations, batched into named groups (one draw layer per group)
//   - ViewAnnotation: backed by an externally-provided view resource,
//     collected in declaration order (z-stacking)
//   - LocationIndicator: singleton configuration, last writer wins
//
// Every annotation carries a stable identity used to match it across
// passes. Missing identities are synthesized from structural position.
// Identities must be unique within a kind; collisions are reported as
// duplicates and the later-seen node wins.
//
// # Equality
//
// Attribute bags support structural equality (with numeric normalization
// so JSON round-trips stay comparable). That is the only contract content
// authors must honor for diffing to be correct.
//
// # Usage
//
//	build := content.Describe(
//	    content.PointAnnotation{ID: "hq", At: content.Coordinate{Lon: 13.4, Lat: 52.5}},
//	    content.LocationIndicator{Visible: true},
//	)
//	buckets := content.Visit(build)
package content
