// Package viewport models the camera state of the map and the two-way
// binding protocol between the upstream state owner and the rendering
// surface.
//
// # Sources
//
// A Source is either Constant (authored once, read-only) or Bound (a
// live get/set pair owned upstream). The Binding built on top exposes
// exactly two operations, making the deferred asynchrony explicit in the
// type signature:
//   - CurrentValue: read the latest externally-committed state
//   - Propose: enqueue a camera transition, non-blocking
//
// # Precedence
//
// The binding never retains its own proposals. If both an upstream
// change (observed through get) and a reconciler proposal happen between
// two render passes, the upstream value wins: CurrentValue always
// re-reads the source. A Bound source's get therefore remains the single
// source of truth at all times.
//
// The package also provides the web-mercator projection used to position
// view-annotation resources over the surface.
package viewport
