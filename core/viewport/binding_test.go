package viewport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsync/core/content"
)

type recordingCamera struct {
	applied []State
	anims   []*Animation
	err     error
}

func (r *recordingCamera) ApplyCameraState(state State, anim *Animation) error {
	r.applied = append(r.applied, state)
	r.anims = append(r.anims, anim)
	return r.err
}

// TestBinding_ConstantSource tests that a constant source drives the
// surface but never changes upstream.
func TestBinding_ConstantSource(t *testing.T) {
	initial := State{Center: content.Coordinate{Lon: 10, Lat: 20}, Zoom: 5}
	cam := &recordingCamera{}
	source := Constant(initial)
	b := NewBinding(source, cam)

	assert.False(t, source.TwoWay())
	assert.Equal(t, initial, b.CurrentValue())

	proposed := State{Zoom: 9}
	require.NoError(t, b.Propose(proposed, nil))

	// Surface moved, upstream value unchanged.
	require.Len(t, cam.applied, 1)
	assert.Equal(t, proposed, cam.applied[0])
	assert.Equal(t, initial, b.CurrentValue())
}

// TestBinding_BoundSourceRoundTrips tests that a proposal against a bound
// source is visible through the next CurrentValue read.
func TestBinding_BoundSourceRoundTrips(t *testing.T) {
	upstream := State{Zoom: 5}
	source := Bound(
		func() State { return upstream },
		func(s State) { upstream = s },
	)
	b := NewBinding(source, &recordingCamera{})

	assert.True(t, source.TwoWay())

	require.NoError(t, b.Propose(State{Zoom: 9}, nil))
	assert.Equal(t, 9.0, b.CurrentValue().Zoom)
}

// TestBinding_UpstreamWins tests that an upstream change after a proposal
// overrides the proposed value on the next read.
func TestBinding_UpstreamWins(t *testing.T) {
	upstream := State{Zoom: 5}
	cam := &recordingCamera{}
	b := NewBinding(Bound(
		func() State { return upstream },
		func(s State) { upstream = s },
	), cam)

	require.NoError(t, b.Propose(State{Zoom: 9}, nil))

	// External authority rewrites the value before the next pass.
	upstream = State{Zoom: 7}
	assert.Equal(t, 7.0, b.CurrentValue().Zoom)

	// Driving the surface from the fresh read carries no trace of the
	// stale proposal.
	require.NoError(t, b.Propose(b.CurrentValue(), nil))
	assert.Equal(t, 7.0, cam.applied[len(cam.applied)-1].Zoom)
}

// TestBinding_NotifyExternal tests gesture propagation per source type.
func TestBinding_NotifyExternal(t *testing.T) {
	upstream := State{Zoom: 3}
	bound := NewBinding(Bound(
		func() State { return upstream },
		func(s State) { upstream = s },
	), &recordingCamera{})

	bound.NotifyExternal(State{Zoom: 12})
	assert.Equal(t, 12.0, bound.CurrentValue().Zoom)

	constant := NewBinding(Constant(State{Zoom: 3}), &recordingCamera{})
	constant.NotifyExternal(State{Zoom: 12})
	assert.Equal(t, 3.0, constant.CurrentValue().Zoom)
}

// TestBinding_ProposeDefaultsAnimation tests that a nil animation falls
// back to the state's own transition descriptor.
func TestBinding_ProposeDefaultsAnimation(t *testing.T) {
	cam := &recordingCamera{}
	b := NewBinding(Constant(State{}), cam)

	transition := &Animation{Easing: EaseInOut}
	require.NoError(t, b.Propose(State{Zoom: 2, Transition: transition}, nil))
	require.Len(t, cam.anims, 1)
	assert.Equal(t, transition, cam.anims[0])

	explicit := &Animation{Easing: EaseLinear}
	require.NoError(t, b.Propose(State{Zoom: 2, Transition: transition}, explicit))
	assert.Equal(t, explicit, cam.anims[1])
}

// TestBinding_ProposeSurfaceError tests that a surface failure still
// commits the bound source.
func TestBinding_ProposeSurfaceError(t *testing.T) {
	upstream := State{}
	cam := &recordingCamera{err: errors.New("surface gone")}
	b := NewBinding(Bound(
		func() State { return upstream },
		func(s State) { upstream = s },
	), cam)

	err := b.Propose(State{Zoom: 4}, nil)
	assert.Error(t, err)
	assert.Equal(t, 4.0, b.CurrentValue().Zoom)
}
