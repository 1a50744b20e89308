package content

import (
	"reflect"

	"mapsync/core/utils"
)

// Kind identifies a content node variant. The set of kinds is closed;
// reconciliation logic switches over it exhaustively.
type Kind string

const (
	// KindPoint is a single-coordinate layer-backed annotation.
	KindPoint Kind = "point"
	// KindPolyline is a multi-coordinate open path annotation.
	KindPolyline Kind = "polyline"
	// KindPolygon is a closed-ring area annotation.
	KindPolygon Kind = "polygon"
	// KindView is an annotation backed by an externally-provided view resource.
	KindView Kind = "view"
	// KindLocationIndicator is the singleton location indicator configuration.
	KindLocationIndicator Kind = "location-indicator"
)

// DefaultGroup is the group key used when an annotation does not name one.
const DefaultGroup = "default"

// ViewAnnotationGroup is the reserved group key view annotations live
// under on the surface. Authors cannot place layer annotations there.
const ViewAnnotationGroup = "view-annotations"

// Coordinate is a geographic position in degrees (WGS84).
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Attributes is the style-attribute bag carried by every annotation
// (fill color, opacity, stroke width and so on). Values must be
// structurally comparable; that is the sole contract required of content
// authors for diffing to be correct.
type Attributes map[string]any

// Equal reports structural equality of two attribute bags.
// Reference comparison is useless here because descriptions are rebuilt
// from scratch on every render pass.
func (a Attributes) Equal(other Attributes) bool {
	if len(a) == 0 && len(other) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Normalized(), other.Normalized())
}

// Normalized returns a copy with all numeric values coerced to float64.
// Descriptions that round-trip through JSON decode numbers as float64;
// without this, a bag built in memory with ints would never compare equal
// to the same bag reloaded from a snapshot.
func (a Attributes) Normalized() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		if f, ok := utils.ToFloat(v); ok {
			out[k] = f
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the bag.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ViewResource is the externally-provided backing resource of a
// ViewAnnotation. The reconciler attaches and detaches it through the
// host hierarchy facade and repositions it on every render pass.
type ViewResource interface {
	// MoveTo positions the resource over the surface, in surface pixels.
	MoveTo(x, y float64)
}

// Node is a variant of the closed content-node set.
// Implementations live in this package only.
type Node interface {
	NodeKind() Kind
}

// Annotation is a layer-backed node tracked by identity across passes.
type Annotation interface {
	Node

	// Identity returns the stable key used to match this node across
	// successive render passes. Empty means "synthesize from structural
	// position" (see Visitor).
	Identity() string

	// GroupKey returns the named bucket this node is batched under.
	// One underlying draw layer exists per group.
	GroupKey() string

	// Attributes returns the style-attribute bag.
	Attributes() Attributes
}

// PointAnnotation is a single symbol anchored at one coordinate.
type PointAnnotation struct {
	ID    string     `json:"id"`
	Group string     `json:"group,omitempty"`
	At    Coordinate `json:"at"`
	Attrs Attributes `json:"attrs,omitempty"`
}

func (p PointAnnotation) NodeKind() Kind         { return KindPoint }
func (p PointAnnotation) Identity() string       { return p.ID }
func (p PointAnnotation) GroupKey() string       { return groupOrDefault(p.Group) }
func (p PointAnnotation) Attributes() Attributes { return p.Attrs }

// PolylineAnnotation is an open path through two or more coordinates.
type PolylineAnnotation struct {
	ID    string       `json:"id"`
	Group string       `json:"group,omitempty"`
	Path  []Coordinate `json:"path"`
	Attrs Attributes   `json:"attrs,omitempty"`
}

func (p PolylineAnnotation) NodeKind() Kind         { return KindPolyline }
func (p PolylineAnnotation) Identity() string       { return p.ID }
func (p PolylineAnnotation) GroupKey() string       { return groupOrDefault(p.Group) }
func (p PolylineAnnotation) Attributes() Attributes { return p.Attrs }

// PolygonAnnotation is an area bounded by one or more rings.
// The first ring is the outer boundary; the rest are holes.
type PolygonAnnotation struct {
	ID    string         `json:"id"`
	Group string         `json:"group,omitempty"`
	Rings [][]Coordinate `json:"rings"`
	Attrs Attributes     `json:"attrs,omitempty"`
}

func (p PolygonAnnotation) NodeKind() Kind         { return KindPolygon }
func (p PolygonAnnotation) Identity() string       { return p.ID }
func (p PolygonAnnotation) GroupKey() string       { return groupOrDefault(p.Group) }
func (p PolygonAnnotation) Attributes() Attributes { return p.Attrs }

// ViewAnnotation anchors an externally-provided view resource at a
// coordinate. Declaration order within a description determines
// z-stacking, so view annotations are collected as an ordered sequence
// rather than grouped.
type ViewAnnotation struct {
	ID     string     `json:"id"`
	Anchor Coordinate `json:"anchor"`
	Attrs  Attributes `json:"attrs,omitempty"`

	// Resource is runtime-only state and never serialized. A nil resource
	// is tolerated (the annotation is still reconciled on the surface but
	// nothing is attached to the host hierarchy).
	Resource ViewResource `json:"-"`
}

func (v ViewAnnotation) NodeKind() Kind         { return KindView }
func (v ViewAnnotation) Identity() string       { return v.ID }
func (v ViewAnnotation) GroupKey() string       { return ViewAnnotationGroup }
func (v ViewAnnotation) Attributes() Attributes { return v.Attrs }

// LocationIndicator configures the surface's location indicator.
// It is singleton state: not identity-tracked, always overwritten
// wholesale on every pass.
type LocationIndicator struct {
	Visible       bool       `json:"visible"`
	ShowsHeading  bool       `json:"shows_heading,omitempty"`
	ShowsAccuracy bool       `json:"shows_accuracy,omitempty"`
	Attrs         Attributes `json:"attrs,omitempty"`
}

func (l LocationIndicator) NodeKind() Kind { return KindLocationIndicator }

func groupOrDefault(g string) string {
	if g == "" {
		return DefaultGroup
	}
	return g
}

// AnnotationGeometryEqual reports whether two annotations agree on
// everything an attribute-only update call leaves untouched: kind,
// group and geometry. When it is false the surface entity must be
// recreated, not updated in place.
func AnnotationGeometryEqual(a, b Annotation) bool {
	if a.NodeKind() != b.NodeKind() || a.GroupKey() != b.GroupKey() {
		return false
	}
	return reflect.DeepEqual(stripAttrs(a), stripAttrs(b))
}

// annotationEqual reports whether two layer-backed annotations are
// structurally identical (geometry, group and attributes).
func annotationEqual(a, b Annotation) bool {
	return AnnotationGeometryEqual(a, b) && a.Attributes().Equal(b.Attributes())
}

// stripAttrs returns a copy of the annotation with its attribute bag
// cleared, so geometry can be compared with DeepEqual while attributes
// go through the normalizing Equal above.
func stripAttrs(a Annotation) Node {
	switch n := a.(type) {
	case PointAnnotation:
		n.Attrs = nil
		return n
	case PolylineAnnotation:
		n.Attrs = nil
		return n
	case PolygonAnnotation:
		n.Attrs = nil
		return n
	case ViewAnnotation:
		n.Attrs = nil
		n.Resource = nil
		return n
	default:
		return a
	}
}

// AnnotationEqual is the structural comparison used by the reconciler to
// decide whether an identity needs an update call.
func AnnotationEqual(a, b Annotation) bool {
	return annotationEqual(a, b)
}
