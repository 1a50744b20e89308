package coordinator

import (
	"mapsync/core/content"
	"mapsync/core/surface"
	"mapsync/core/viewport"
)

// ViewAnnotationGroup is the reserved draw-layer group key view
// annotations are batched under on the surface.
const ViewAnnotationGroup = content.ViewAnnotationGroup

type trackedView struct {
	node     content.ViewAnnotation
	attached bool
}

// viewCoordinator reconciles view annotations. Beyond the identity table
// it also owns placement: the externally-provided view resource behind
// each annotation is attached to and detached from the hosting hierarchy
// in lockstep with add/remove (detach always precedes the surface
// removal), and every attached resource is repositioned on every pass.
// Position is never diffed away, because the anchor can move relative to
// the camera even when the node itself is unchanged.
type viewCoordinator struct {
	ops     surface.AnnotationWriter
	host    surface.HostHierarchy
	tracked map[string]trackedView
}

func newViewCoordinator(ops surface.AnnotationWriter, host surface.HostHierarchy) *viewCoordinator {
	return &viewCoordinator{
		ops:     ops,
		host:    host,
		tracked: make(map[string]trackedView),
	}
}

// seed marks the view annotations as already applied, for dry-run
// planning.
func (v *viewCoordinator) seed(views []content.ViewAnnotation) {
	for _, view := range views {
		v.tracked[view.Identity()] = trackedView{node: view}
	}
}

// plan diffs the ordered view-annotation requests against the tracked
// table. Additions keep declaration order: it determines z-stacking. An
// anchor change is planned as a removal plus an addition, because the
// update call carries only the attribute bag.
func (v *viewCoordinator) plan(views []content.ViewAnnotation) Plan {
	desired := make(map[string]content.ViewAnnotation, len(views))
	for _, view := range views {
		desired[view.Identity()] = view
	}

	var p Plan

	for id, entry := range v.tracked {
		if next, present := desired[id]; present && content.AnnotationGeometryEqual(entry.node, next) {
			continue
		}
		p.Removes = append(p.Removes, Action{
			Type:     ActionRemove,
			Kind:     content.KindView,
			Group:    ViewAnnotationGroup,
			Identity: id,
		})
	}
	sortActions(p.Removes)

	for _, view := range views {
		id := view.Identity()
		prev, present := v.tracked[id]
		switch {
		case !present || !content.AnnotationGeometryEqual(prev.node, view):
			p.Adds = append(p.Adds, Action{
				Type:     ActionAdd,
				Kind:     content.KindView,
				Group:    ViewAnnotationGroup,
				Identity: id,
				Node:     view,
			})
		case !content.AnnotationEqual(prev.node, view) || prev.node.Resource != view.Resource:
			p.Updates = append(p.Updates, Action{
				Type:     ActionUpdate,
				Kind:     content.KindView,
				Group:    ViewAnnotationGroup,
				Identity: id,
				Node:     view,
			})
		}
	}

	return p
}

// apply executes one phase of the view plan, keeping resource attachment
// in lockstep with the surface entity set.
func (v *viewCoordinator) apply(actions []Action, report func(Action, error)) {
	for _, a := range actions {
		switch a.Type {
		case ActionRemove:
			report(a, v.remove(a.Identity))
		case ActionAdd:
			report(a, v.add(a.Node.(content.ViewAnnotation)))
		case ActionUpdate:
			report(a, v.update(a.Node.(content.ViewAnnotation)))
		}
	}
}

// remove detaches the backing resource first, then destroys the surface
// entity. A failed detach leaves the identity fully tracked for a retry
// on the next pass.
func (v *viewCoordinator) remove(id string) error {
	entry, ok := v.tracked[id]
	if !ok {
		return nil
	}
	if entry.attached {
		if err := v.host.DetachChildSurface(entry.node.Resource); err != nil {
			return err
		}
		entry.attached = false
		v.tracked[id] = entry
	}
	if err := v.ops.RemoveAnnotation(ViewAnnotationGroup, id); err != nil {
		return err
	}
	delete(v.tracked, id)
	return nil
}

// add creates the surface entity, then attaches the resource. If the
// attach fails the entity is rolled back so the tracked table never
// disagrees with the surface.
func (v *viewCoordinator) add(view content.ViewAnnotation) error {
	if err := v.ops.AddAnnotation(ViewAnnotationGroup, view); err != nil {
		return err
	}
	attached := false
	if view.Resource != nil {
		if err := v.host.AttachChildSurface(view.Resource); err != nil {
			_ = v.ops.RemoveAnnotation(ViewAnnotationGroup, view.Identity())
			return err
		}
		attached = true
	}
	v.tracked[view.Identity()] = trackedView{node: view, attached: attached}
	return nil
}

// update rewrites the entity attributes and swaps the backing resource
// if the author handed in a different one.
func (v *viewCoordinator) update(view content.ViewAnnotation) error {
	id := view.Identity()
	prev := v.tracked[id]

	if err := v.ops.UpdateAnnotation(ViewAnnotationGroup, id, view.Attributes()); err != nil {
		return err
	}

	attached := prev.attached
	if prev.node.Resource != view.Resource {
		if prev.attached {
			if err := v.host.DetachChildSurface(prev.node.Resource); err != nil {
				return err
			}
			attached = false
		}
		if view.Resource != nil {
			if err := v.host.AttachChildSurface(view.Resource); err != nil {
				v.tracked[id] = trackedView{node: view, attached: false}
				return err
			}
			attached = true
		}
	}

	v.tracked[id] = trackedView{node: view, attached: attached}
	return nil
}

// repositionAll moves every attached resource to its projected anchor.
// It runs unconditionally each pass, even for identities the diff left
// untouched.
func (v *viewCoordinator) repositionAll(state viewport.State, size surface.Size) {
	for _, entry := range v.tracked {
		if !entry.attached {
			continue
		}
		x, y := viewport.Project(state, size.Width, size.Height, entry.node.Anchor)
		entry.node.Resource.MoveTo(x, y)
	}
}

// teardown detaches and removes every tracked view annotation.
func (v *viewCoordinator) teardown(report func(Action, error)) {
	var removes []Action
	for id := range v.tracked {
		removes = append(removes, Action{
			Type:     ActionRemove,
			Kind:     content.KindView,
			Group:    ViewAnnotationGroup,
			Identity: id,
		})
	}
	sortActions(removes)
	v.apply(removes, report)
}

func (v *viewCoordinator) trackedCount() int {
	return len(v.tracked)
}
