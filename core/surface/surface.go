package surface

import (
	"mapsync/core/content"
	"mapsync/core/viewport"
)

// Size is the surface viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnnotationWriter is the scoped annotation facade handed to the
// per-kind sub-coordinators. All calls are synchronous from the caller's
// point of view; the surface queues the actual work internally.
type AnnotationWriter interface {
	// AddAnnotation creates a surface entity for the node under the
	// group's draw layer.
	AddAnnotation(groupKey string, node content.Annotation) error

	// UpdateAnnotation replaces the entity's style attributes in place.
	UpdateAnnotation(groupKey, identity string, attrs content.Attributes) error

	// RemoveAnnotation destroys the entity. The same surface-level handle
	// is never held by two entities simultaneously, so removals are
	// issued before additions within a pass.
	RemoveAnnotation(groupKey, identity string) error
}

// IndicatorApplier overwrites the location indicator wholesale.
// A nil config clears it.
type IndicatorApplier interface {
	SetLocationIndicator(cfg *content.LocationIndicator) error
}

// Surface is the facade over the external, stateful map renderer.
// The reconciliation coordinator exclusively owns one Surface handle for
// its lifetime; sub-coordinators only ever see the scoped sub-facades.
type Surface interface {
	AnnotationWriter
	IndicatorApplier
	viewport.CameraApplier

	// Size returns the current viewport pixel size.
	Size() Size
}

// HostHierarchy is the facade over the hosting view hierarchy, consumed
// only by the view-annotation sub-coordinator.
type HostHierarchy interface {
	AttachChildSurface(resource content.ViewResource) error
	DetachChildSurface(resource content.ViewResource) error
}
