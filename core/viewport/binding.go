package viewport

// CameraApplier is the scoped camera facade of the rendering surface.
// Calls enqueue a transition and return immediately; completion is
// observed only through a later CurrentValue read, never via callback.
type CameraApplier interface {
	ApplyCameraState(state State, anim *Animation) error
}

// Source is where viewport state is owned upstream. It is either a
// read-only constant or a live two-way binding with a setter.
type Source struct {
	get func() State
	set func(State)
}

// Constant returns a one-way source: the state is authored once and
// never written back. Proposals against a constant source are permitted
// no-ops upstream that only drive the surface.
func Constant(s State) Source {
	return Source{get: func() State { return s }}
}

// Bound returns a two-way source. get must always reflect the latest
// externally-committed value, including changes triggered through set;
// a set followed by a get round-trips, possibly only after the next
// render pass.
func Bound(get func() State, set func(State)) Source {
	return Source{get: get, set: set}
}

// TwoWay reports whether the source carries an external setter.
func (s Source) TwoWay() bool { return s.set != nil }

// Binding bridges a viewport source and the surface's camera facade.
// The binding is the single source of truth: it never retains a prior
// proposal, so upstream changes always win over anything the reconciler
// proposed earlier in the same window.
type Binding struct {
	source Source
	camera CameraApplier
}

// NewBinding wires a source to the scoped camera facade.
func NewBinding(source Source, camera CameraApplier) *Binding {
	return &Binding{source: source, camera: camera}
}

// CurrentValue returns the latest known viewport state. For a bound
// source this re-reads the upstream getter every time.
func (b *Binding) CurrentValue() State {
	return b.source.get()
}

// Propose requests the surface move to newState. It never blocks: the
// transition is enqueued on the surface and the call returns. For a
// bound source the external setter is invoked as well so upstream state
// remains the source of truth; for a constant source only the surface is
// driven. The returned error is non-fatal; the viewport is overwritten
// wholesale every pass, so failures are retried on the next one.
func (b *Binding) Propose(newState State, anim *Animation) error {
	if b.source.set != nil {
		b.source.set(newState)
	}
	if anim == nil {
		anim = newState.Transition
	}
	return b.camera.ApplyCameraState(newState, anim)
}

// NotifyExternal pushes a surface-originated camera change (a gesture,
// an inertia settle) upstream. Constant sources ignore it.
func (b *Binding) NotifyExternal(s State) {
	if b.source.set != nil {
		b.source.set(s)
	}
}
