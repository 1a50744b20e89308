// Package surface defines the narrow facades the reconciler consumes:
// the rendering surface (camera, annotations, location indicator) and
// the host view hierarchy (attach/detach of view-annotation resources).
//
// The actual renderer (tile fetching, GPU compositing, gesture
// recognition) lives behind these interfaces and is out of scope here.
// All facade calls are synchronous from the caller's point of view and
// queued internally by the surface.
//
// The package ships two implementations:
//   - Memory / MemoryHost: in-process reference implementations used by
//     tests and by the inspector feature
//   - mocks: testify mocks for call-exact assertions
package surface
