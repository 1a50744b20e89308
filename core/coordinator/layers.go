package coordinator

import (
	"mapsync/core/content"
	"mapsync/core/surface"
)

// layerCoordinator reconciles the layer-backed annotation kinds (point,
// polyline, polygon). It owns the identity-tracking table for those
// kinds: a map from kind and identity to the last-applied node. The
// table is committed entry by entry as surface calls succeed, so after a
// partial failure it still equals exactly what is present on the
// surface.
type layerCoordinator struct {
	ops     surface.AnnotationWriter
	tracked map[content.Kind]map[string]content.Annotation
}

func newLayerCoordinator(ops surface.AnnotationWriter) *layerCoordinator {
	return &layerCoordinator{
		ops:     ops,
		tracked: make(map[content.Kind]map[string]content.Annotation),
	}
}

// seed marks the bucketed annotations as already applied, without
// touching any surface. Used for dry-run planning.
func (l *layerCoordinator) seed(b *content.Buckets) {
	for _, group := range b.Groups {
		for _, node := range group.Nodes {
			l.track(node)
		}
	}
}

// plan diffs the new buckets against the tracked table, per kind
// independently. A node whose group key or geometry changed is planned
// as a removal plus an addition, never an update: draw layers cannot
// adopt entities from one another, and the update call carries only the
// attribute bag.
func (l *layerCoordinator) plan(b *content.Buckets) Plan {
	desired := make(map[content.Kind]map[string]content.Annotation)
	for _, group := range b.Groups {
		for _, node := range group.Nodes {
			kind := node.NodeKind()
			byID := desired[kind]
			if byID == nil {
				byID = make(map[string]content.Annotation)
				desired[kind] = byID
			}
			byID[node.Identity()] = node
		}
	}

	var p Plan

	for kind, byID := range l.tracked {
		for id, prev := range byID {
			next, present := desired[kind][id]
			if present && content.AnnotationGeometryEqual(prev, next) {
				continue
			}
			p.Removes = append(p.Removes, Action{
				Type:     ActionRemove,
				Kind:     kind,
				Group:    prev.GroupKey(),
				Identity: id,
			})
		}
	}

	for kind, byID := range desired {
		for id, next := range byID {
			prev, present := l.tracked[kind][id]
			switch {
			case !present || !content.AnnotationGeometryEqual(prev, next):
				p.Adds = append(p.Adds, Action{
					Type:     ActionAdd,
					Kind:     kind,
					Group:    next.GroupKey(),
					Identity: id,
					Node:     next,
				})
			case !content.AnnotationEqual(prev, next):
				p.Updates = append(p.Updates, Action{
					Type:     ActionUpdate,
					Kind:     kind,
					Group:    next.GroupKey(),
					Identity: id,
					Node:     next,
				})
			}
		}
	}

	sortActions(p.Removes)
	sortActions(p.Adds)
	sortActions(p.Updates)
	return p
}

// apply executes one phase of the plan. The tracked table is only
// committed for calls that succeeded; failures are reported through the
// callback and the phase continues.
func (l *layerCoordinator) apply(actions []Action, report func(Action, error)) {
	for _, a := range actions {
		var err error
		switch a.Type {
		case ActionRemove:
			err = l.ops.RemoveAnnotation(a.Group, a.Identity)
			if err == nil {
				l.untrack(a.Kind, a.Identity)
			}
		case ActionAdd:
			err = l.ops.AddAnnotation(a.Group, a.Node)
			if err == nil {
				l.track(a.Node)
			}
		case ActionUpdate:
			err = l.ops.UpdateAnnotation(a.Group, a.Identity, a.Node.Attributes())
			if err == nil {
				l.track(a.Node)
			}
		}
		report(a, err)
	}
}

// teardown removes every tracked entity. Entities whose removal call
// fails stay in the table; the caller treats survivors as a fatal
// consistency violation.
func (l *layerCoordinator) teardown(report func(Action, error)) {
	var removes []Action
	for kind, byID := range l.tracked {
		for id, node := range byID {
			removes = append(removes, Action{
				Type:     ActionRemove,
				Kind:     kind,
				Group:    node.GroupKey(),
				Identity: id,
			})
		}
	}
	sortActions(removes)
	l.apply(removes, report)
}

// trackedCount returns the number of identities currently tracked.
func (l *layerCoordinator) trackedCount() int {
	total := 0
	for _, byID := range l.tracked {
		total += len(byID)
	}
	return total
}

func (l *layerCoordinator) track(node content.Annotation) {
	kind := node.NodeKind()
	byID := l.tracked[kind]
	if byID == nil {
		byID = make(map[string]content.Annotation)
		l.tracked[kind] = byID
	}
	byID[node.Identity()] = node
}

func (l *layerCoordinator) untrack(kind content.Kind, identity string) {
	byID := l.tracked[kind]
	delete(byID, identity)
	if len(byID) == 0 {
		delete(l.tracked, kind)
	}
}
