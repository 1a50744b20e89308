// Package coordinator keeps a long-lived imperative rendering surface
// converged onto successive declarative content descriptions.
//
// # Architecture
//
// The coordinator is invoked once per render pass by the driving
// framework. Each pass:
//
//  1. Invokes the caller's builder exactly once and buckets the fresh
//     description (content.Visit).
//  2. Diffs the buckets against the private tracking table, per content
//     kind independently: identities to add, to remove, and to update
//     (structural comparison; descriptions are rebuilt every pass, so
//     reference comparison would be meaningless).
//  3. Applies every removal across all groups, then every addition, then
//     every update, each phase over groups in lexical order. This bounds
//     transient resource usage on the surface: no two entities ever
//     share a surface-level handle.
//  4. Overwrites viewport and location indicator wholesale; neither is
//     identity-tracked.
//
// The tracking table is committed entry by entry as surface calls
// succeed. That is the central correctness invariant: at all times the
// table equals the entity set actually present on the surface: no
// orphaned surface objects, no untracked ones. A failed surface call
// degrades to a warning diagnostic and leaves only that identity behind
// for the next pass.
//
// # Sub-coordinators
//
// Per-kind reconcilers own their identity tables: layer-backed
// annotations (point/polyline/polygon) and view annotations. The view
// sub-coordinator additionally attaches and detaches the backing view
// resources in lockstep with add/remove and repositions every attached
// resource on every pass. Sub-coordinators receive scoped facades only,
// never the raw surface handle.
//
// # Concurrency
//
// Everything runs synchronously on the goroutine that owns the surface.
// Passes are serialized by the driving framework; there is no mid-pass
// cancellation. Teardown (Close) removes every tracked entity before the
// surface handle is released.
package coordinator
