package content

import (
	"fmt"
	"sort"
)

// AnnotationGroup is a named bucket of layer-backed annotations.
// Nodes keep their declaration order within the group.
type AnnotationGroup struct {
	Name  string
	Nodes []Annotation
}

// Duplicate records a caller error: two nodes of the same kind sharing an
// identity within a single description. The later-seen node wins.
type Duplicate struct {
	Kind     Kind
	Identity string
}

// Buckets is the Visitor's output: disjoint, typed collections ready for
// reconciliation.
type Buckets struct {
	// Groups maps group name to its layer-backed annotation bucket.
	Groups map[string]*AnnotationGroup

	// Views is the ordered sequence of view annotation requests.
	// Order matters for z-stacking.
	Views []ViewAnnotation

	// Location is the single resolved indicator config, or nil when the
	// description declares none. When a description declares more than
	// one, the last writer wins; that is documented behavior, not an
	// error.
	Location *LocationIndicator

	// Duplicates lists identity collisions detected while bucketing,
	// one entry per collision.
	Duplicates []Duplicate
}

// Visit invokes the builder exactly once and classifies the resulting
// description into buckets. It performs no I/O and never touches the
// rendering surface; it is safe to run on any goroutine that owns the
// description, though in practice it runs where reconciliation runs.
func Visit(build Builder) *Buckets {
	return VisitDescription(build())
}

// VisitDescription classifies an already-built description.
func VisitDescription(desc *Description) *Buckets {
	b := &Buckets{Groups: make(map[string]*AnnotationGroup)}

	// Ordered working set per kind so duplicate handling (later wins)
	// and identity synthesis stay deterministic across passes.
	ordered := make([]Annotation, 0, desc.Len())
	index := make(map[Kind]map[string]int)
	ordinal := make(map[Kind]int)

	for _, node := range desc.Nodes() {
		switch n := node.(type) {
		case LocationIndicator:
			// Singleton state, last writer wins.
			cfg := n
			b.Location = &cfg
			continue
		case Annotation:
			kind := n.NodeKind()
			n = withSynthesizedIdentity(n, ordinal[kind])
			ordinal[kind]++

			seen := index[kind]
			if seen == nil {
				seen = make(map[string]int)
				index[kind] = seen
			}
			id := n.Identity()
			if prev, ok := seen[id]; ok {
				b.Duplicates = append(b.Duplicates, Duplicate{Kind: kind, Identity: id})
				ordered[prev] = nil
			}
			seen[id] = len(ordered)
			ordered = append(ordered, n)
		}
	}

	for _, a := range ordered {
		if a == nil {
			continue
		}
		if v, ok := a.(ViewAnnotation); ok {
			b.Views = append(b.Views, v)
			continue
		}
		key := a.GroupKey()
		group := b.Groups[key]
		if group == nil {
			group = &AnnotationGroup{Name: key}
			b.Groups[key] = group
		}
		group.Nodes = append(group.Nodes, a)
	}

	return b
}

// GroupNames returns the group keys in lexical order. Reconciliation
// processes groups in this order so surface layer stacking stays
// reproducible across passes with identical input.
func (b *Buckets) GroupNames() []string {
	names := make([]string, 0, len(b.Groups))
	for name := range b.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withSynthesizedIdentity fills in an identity derived from the node's
// structural position when the author did not assign one. The synthesized
// key is stable as long as the description structure is.
func withSynthesizedIdentity(a Annotation, ordinal int) Annotation {
	if a.Identity() != "" {
		return a
	}
	id := fmt.Sprintf("%s#%d", a.NodeKind(), ordinal)
	switch n := a.(type) {
	case PointAnnotation:
		n.ID = id
		return n
	case PolylineAnnotation:
		n.ID = id
		return n
	case PolygonAnnotation:
		n.ID = id
		return n
	case ViewAnnotation:
		n.ID = id
		return n
	default:
		return a
	}
}
