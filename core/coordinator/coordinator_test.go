package coordinator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapsync/core/content"
	"mapsync/core/surface"
	"mapsync/core/viewport"
)

// scriptedSurface wraps the in-memory surface with an operation log and
// scriptable failures, so tests can assert ordering and recovery.
type scriptedSurface struct {
	*surface.Memory
	log      []string
	failNext map[string]error
}

func newScriptedSurface() *scriptedSurface {
	return &scriptedSurface{
		Memory:   surface.NewMemory(800, 600),
		failNext: make(map[string]error),
	}
}

func (s *scriptedSurface) op(name, group, id string) (string, error) {
	key := fmt.Sprintf("%s %s/%s", name, group, id)
	s.log = append(s.log, key)
	if err, ok := s.failNext[key]; ok {
		delete(s.failNext, key)
		return key, err
	}
	return key, nil
}

func (s *scriptedSurface) AddAnnotation(group string, node content.Annotation) error {
	if _, err := s.op("add", group, node.Identity()); err != nil {
		return err
	}
	return s.Memory.AddAnnotation(group, node)
}

func (s *scriptedSurface) UpdateAnnotation(group, id string, attrs content.Attributes) error {
	if _, err := s.op("update", group, id); err != nil {
		return err
	}
	return s.Memory.UpdateAnnotation(group, id, attrs)
}

func (s *scriptedSurface) RemoveAnnotation(group, id string) error {
	if _, err := s.op("remove", group, id); err != nil {
		return err
	}
	return s.Memory.RemoveAnnotation(group, id)
}

type scriptedHost struct {
	*surface.MemoryHost
	surf       *scriptedSurface
	failDetach error
}

func (h *scriptedHost) AttachChildSurface(r content.ViewResource) error {
	h.surf.log = append(h.surf.log, "attach")
	return h.MemoryHost.AttachChildSurface(r)
}

func (h *scriptedHost) DetachChildSurface(r content.ViewResource) error {
	h.surf.log = append(h.surf.log, "detach")
	if h.failDetach != nil {
		err := h.failDetach
		h.failDetach = nil
		return err
	}
	return h.MemoryHost.DetachChildSurface(r)
}

type fakeResource struct {
	x, y  float64
	moves int
}

func (r *fakeResource) MoveTo(x, y float64) {
	r.x, r.y = x, y
	r.moves++
}

func newTestCoordinator(t *testing.T) (*Coordinator, *scriptedSurface, *scriptedHost) {
	t.Helper()
	surf := newScriptedSurface()
	host := &scriptedHost{MemoryHost: surface.NewMemoryHost(), surf: surf}
	coord := New(surf, host, viewport.Constant(viewport.State{Zoom: 4}))
	return coord, surf, host
}

// TestRender_ConvergesEmptySurface tests that a first pass materializes
// the whole description.
func TestRender_ConvergesEmptySurface(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	summary, err := coord.Render(content.Describe(
		PointAt("a", "pins", 1, 1),
		PointAt("b", "pins", 2, 2),
		content.PolylineAnnotation{ID: "r", Group: "routes", Path: []content.Coordinate{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}},
		content.LocationIndicator{Visible: true},
	))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Adds)
	assert.Zero(t, summary.Updates)
	assert.Zero(t, summary.Removes)
	assert.Zero(t, summary.Failures)

	assert.Equal(t, 3, surf.EntityCount())
	assert.Equal(t, 3, coord.TrackedCount())
	require.NotNil(t, surf.Indicator())
	assert.True(t, surf.Indicator().Visible)
}

// TestRender_IdenticalPassIsIdempotent tests that re-rendering an equal
// description issues zero entity mutations.
func TestRender_IdenticalPassIsIdempotent(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	build := content.Describe(
		PointAt("a", "pins", 1, 1),
		PointAt("b", "pins", 2, 2),
	)

	_, err := coord.Render(build)
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(build)
	require.NoError(t, err)

	assert.Zero(t, summary.Adds)
	assert.Zero(t, summary.Updates)
	assert.Zero(t, summary.Removes)
	assert.Empty(t, surf.log)
	assert.Equal(t, 2, surf.EntityCount())
}

// TestRender_SingleAttributeChange tests that changing one attribute on
// one of many nodes issues exactly one update.
func TestRender_SingleAttributeChange(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	first := make([]content.Node, 0, 10)
	second := make([]content.Node, 0, 10)
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("p%d", i)
		first = append(first, content.PointAnnotation{ID: id, Attrs: content.Attributes{"color": "red"}})
		color := "red"
		if i == 7 {
			color = "blue"
		}
		second = append(second, content.PointAnnotation{ID: id, Attrs: content.Attributes{"color": color}})
	}

	_, err := coord.Render(content.Describe(first...))
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(content.Describe(second...))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updates)
	assert.Zero(t, summary.Adds)
	assert.Zero(t, summary.Removes)
	require.Len(t, surf.log, 1)
	assert.Equal(t, "update default/p7", surf.log[0])
}

// TestRender_SingleRemoval tests that dropping one node from the
// description issues exactly one removal.
func TestRender_SingleRemoval(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(
		PointAt("a", "pins", 1, 1),
		PointAt("b", "pins", 2, 2),
		PointAt("c", "pins", 3, 3),
	))
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(content.Describe(
		PointAt("a", "pins", 1, 1),
		PointAt("c", "pins", 3, 3),
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Removes)
	assert.Zero(t, summary.Adds)
	assert.Zero(t, summary.Updates)
	require.Len(t, surf.log, 1)
	assert.Equal(t, "remove pins/b", surf.log[0])
	assert.Equal(t, 2, coord.TrackedCount())
}

// TestRender_RemovalsPrecedeAdditions tests pass-wide phase ordering
// across groups.
func TestRender_RemovalsPrecedeAdditions(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(
		PointAt("old1", "alpha", 1, 1),
		PointAt("old2", "zulu", 2, 2),
	))
	require.NoError(t, err)
	surf.log = nil

	_, err = coord.Render(content.Describe(
		PointAt("new1", "alpha", 1, 1),
		PointAt("new2", "zulu", 2, 2),
	))
	require.NoError(t, err)

	require.Len(t, surf.log, 4)
	assert.Equal(t, "remove alpha/old1", surf.log[0])
	assert.Equal(t, "remove zulu/old2", surf.log[1])
	assert.Equal(t, "add alpha/new1", surf.log[2])
	assert.Equal(t, "add zulu/new2", surf.log[3])
}

// TestRender_GroupMoveIsRemovePlusAdd tests that a node changing groups is
// never updated in place.
func TestRender_GroupMoveIsRemovePlusAdd(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(PointAt("p", "before", 1, 1)))
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(content.Describe(PointAt("p", "after", 1, 1)))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Removes)
	assert.Equal(t, 1, summary.Adds)
	assert.Zero(t, summary.Updates)
	require.Len(t, surf.log, 2)
	assert.Equal(t, "remove before/p", surf.log[0])
	assert.Equal(t, "add after/p", surf.log[1])
}

// TestRender_CoordinateChangeReplacesEntity tests that moving a node
// with unchanged attributes recreates the surface entity, since an
// attribute update cannot carry geometry.
func TestRender_CoordinateChangeReplacesEntity(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(PointAt("p", "pins", 1, 1)))
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(content.Describe(PointAt("p", "pins", 2, 2)))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Removes)
	assert.Equal(t, 1, summary.Adds)
	assert.Zero(t, summary.Updates)
	require.Len(t, surf.log, 2)
	assert.Equal(t, "remove pins/p", surf.log[0])
	assert.Equal(t, "add pins/p", surf.log[1])

	moved := surf.Entities()["pins"]["p"].(content.PointAnnotation)
	assert.Equal(t, content.Coordinate{Lon: 2, Lat: 2}, moved.At)

	// The pass converged, so repeating it is a no-op.
	surf.log = nil
	summary, err = coord.Render(content.Describe(PointAt("p", "pins", 2, 2)))
	require.NoError(t, err)
	assert.Zero(t, summary.Adds+summary.Removes+summary.Updates)
	assert.Empty(t, surf.log)
}

// TestRender_ViewAnchorChangeReplacesEntity tests that an anchor move
// re-creates the view entity and keeps attachment in lockstep.
func TestRender_ViewAnchorChangeReplacesEntity(t *testing.T) {
	coord, surf, host := newTestCoordinator(t)
	res := &fakeResource{}

	_, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Anchor: content.Coordinate{Lon: 0, Lat: 0}, Resource: res},
	))
	require.NoError(t, err)
	surf.log = nil

	summary, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Anchor: content.Coordinate{Lon: 1, Lat: 0}, Resource: res},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Removes)
	assert.Equal(t, 1, summary.Adds)
	assert.Zero(t, summary.Updates)
	require.Len(t, surf.log, 4)
	assert.Equal(t, "detach", surf.log[0])
	assert.Equal(t, "remove view-annotations/v", surf.log[1])
	assert.Equal(t, "add view-annotations/v", surf.log[2])
	assert.Equal(t, "attach", surf.log[3])
	assert.Equal(t, 1, host.AttachedCount())

	stored := surf.Entities()[ViewAnnotationGroup]["v"].(content.ViewAnnotation)
	assert.Equal(t, content.Coordinate{Lon: 1, Lat: 0}, stored.Anchor)
}

// TestRender_DuplicateIdentity tests that a duplicate produces one
// diagnostic while the later node lands on the surface.
func TestRender_DuplicateIdentity(t *testing.T) {
	surf := newScriptedSurface()
	host := &scriptedHost{MemoryHost: surface.NewMemoryHost(), surf: surf}

	var diags []Diagnostic
	coord := New(surf, host, viewport.Constant(viewport.State{}),
		WithDiagnosticSink(func(d Diagnostic) { diags = append(diags, d) }),
	)

	summary, err := coord.Render(content.Describe(
		content.PointAnnotation{ID: "dup", Attrs: content.Attributes{"color": "red"}},
		content.PointAnnotation{ID: "dup", Attrs: content.Attributes{"color": "blue"}},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagDuplicateIdentity, diags[0].Kind)
	assert.Equal(t, "dup", diags[0].Identity)

	entities := surf.Entities()[content.DefaultGroup]
	require.Len(t, entities, 1)
	assert.Equal(t, "blue", entities["dup"].Attributes()["color"])
}

// TestRender_PartialFailureRecovers tests that a failed surface call
// skips only the affected identity and the next pass retries it.
func TestRender_PartialFailureRecovers(t *testing.T) {
	surf := newScriptedSurface()
	host := &scriptedHost{MemoryHost: surface.NewMemoryHost(), surf: surf}

	var diags []Diagnostic
	coord := New(surf, host, viewport.Constant(viewport.State{}),
		WithDiagnosticSink(func(d Diagnostic) { diags = append(diags, d) }),
	)

	surf.failNext["add pins/bad"] = errors.New("layer rejected entity")

	build := content.Describe(
		PointAt("bad", "pins", 1, 1),
		PointAt("good", "pins", 2, 2),
	)

	summary, err := coord.Render(build)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Adds)
	assert.Equal(t, 1, summary.Failures)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagSurfaceOperationFailure, diags[0].Kind)
	assert.Equal(t, ActionAdd, diags[0].Op)
	assert.Equal(t, "bad", diags[0].Identity)

	// The failed identity is untracked, so surface and table agree.
	assert.Equal(t, 1, surf.EntityCount())
	assert.Equal(t, 1, coord.TrackedCount())

	// Next pass retries just the failed addition.
	surf.log = nil
	retry, err := coord.Render(build)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Adds)
	assert.Zero(t, retry.Failures)
	assert.Equal(t, []string{"add pins/bad"}, surf.log)
	assert.Equal(t, 2, surf.EntityCount())
}

// TestRender_ViewLifecycle tests attach ordering, repositioning and
// detach-precedes-remove for view annotations.
func TestRender_ViewLifecycle(t *testing.T) {
	coord, surf, host := newTestCoordinator(t)
	res := &fakeResource{}

	_, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Anchor: content.Coordinate{Lon: 0, Lat: 0}, Resource: res},
	))
	require.NoError(t, err)

	// Entity first, then attachment, then placement.
	require.Len(t, surf.log, 2)
	assert.Equal(t, "add view-annotations/v", surf.log[0])
	assert.Equal(t, "attach", surf.log[1])
	assert.Equal(t, 1, host.AttachedCount())
	assert.Equal(t, 1, res.moves)
	assert.InDelta(t, 400, res.x, 1e-9)
	assert.InDelta(t, 300, res.y, 1e-9)

	// An untouched view annotation is still repositioned every pass.
	_, err = coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Anchor: content.Coordinate{Lon: 0, Lat: 0}, Resource: res},
	))
	require.NoError(t, err)
	assert.Equal(t, 2, res.moves)

	// Removal detaches before destroying the entity.
	surf.log = nil
	summary, err := coord.Render(content.Describe())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Removes)
	require.Len(t, surf.log, 2)
	assert.Equal(t, "detach", surf.log[0])
	assert.Equal(t, "remove view-annotations/v", surf.log[1])
	assert.Zero(t, host.AttachedCount())
	assert.Zero(t, coord.TrackedCount())
}

// TestRender_FailedDetachKeepsTracking tests that a failed detach leaves
// the identity tracked and the entity on the surface for a retry.
func TestRender_FailedDetachKeepsTracking(t *testing.T) {
	coord, surf, host := newTestCoordinator(t)
	res := &fakeResource{}

	_, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Resource: res},
	))
	require.NoError(t, err)

	host.failDetach = errors.New("child busy")
	surf.log = nil

	summary, err := coord.Render(content.Describe())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failures)
	assert.Zero(t, summary.Removes)
	assert.Equal(t, []string{"detach"}, surf.log)
	assert.Equal(t, 1, coord.TrackedCount())
	assert.Equal(t, 1, surf.EntityCount())

	// Retry succeeds once the host recovers.
	retry, err := coord.Render(content.Describe())
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Removes)
	assert.Zero(t, coord.TrackedCount())
	assert.Zero(t, surf.EntityCount())
}

// TestRender_FailedAttachRollsBackEntity tests the add rollback when the
// host rejects the resource.
func TestRender_FailedAttachRollsBackEntity(t *testing.T) {
	surf := newScriptedSurface()
	host := &scriptedHost{MemoryHost: surface.NewMemoryHost(), surf: surf}
	coord := New(surf, host, viewport.Constant(viewport.State{}))

	res := &fakeResource{}
	require.NoError(t, host.MemoryHost.AttachChildSurface(res)) // already attached elsewhere

	summary, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "v", Resource: res},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failures)
	assert.Zero(t, coord.TrackedCount())
	assert.Zero(t, surf.EntityCount())
}

// TestRender_ViewZOrderFollowsDeclaration tests that view additions keep
// declaration order rather than lexical order.
func TestRender_ViewZOrderFollowsDeclaration(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(
		content.ViewAnnotation{ID: "zz-back"},
		content.ViewAnnotation{ID: "aa-front"},
	))
	require.NoError(t, err)

	require.Len(t, surf.log, 2)
	assert.Equal(t, "add view-annotations/zz-back", surf.log[0])
	assert.Equal(t, "add view-annotations/aa-front", surf.log[1])
}

// TestRender_UpstreamViewportWins tests that a proposal made between
// passes loses to a later upstream change.
func TestRender_UpstreamViewportWins(t *testing.T) {
	upstream := viewport.State{Zoom: 5}
	surf := newScriptedSurface()
	host := &scriptedHost{MemoryHost: surface.NewMemoryHost(), surf: surf}
	coord := New(surf, host, viewport.Bound(
		func() viewport.State { return upstream },
		func(s viewport.State) { upstream = s },
	))

	require.NoError(t, coord.ProposeViewport(viewport.State{Zoom: 7}, nil))
	assert.Equal(t, 7.0, coord.Viewport().Zoom)

	// Upstream rewrites the value before the pass runs.
	upstream = viewport.State{Zoom: 5}

	_, err := coord.Render(content.Describe())
	require.NoError(t, err)

	assert.Equal(t, 5.0, coord.Viewport().Zoom)
	assert.Equal(t, 5.0, surf.Camera().Zoom)
}

// TestRender_IndicatorClearedWhenAbsent tests that a description without
// an indicator clears the surface's.
func TestRender_IndicatorClearedWhenAbsent(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(content.LocationIndicator{Visible: true}))
	require.NoError(t, err)
	require.NotNil(t, surf.Indicator())

	_, err = coord.Render(content.Describe())
	require.NoError(t, err)
	assert.Nil(t, surf.Indicator())
}

// TestClose_TearsDownEverything tests structural teardown.
func TestClose_TearsDownEverything(t *testing.T) {
	coord, surf, host := newTestCoordinator(t)
	res := &fakeResource{}

	_, err := coord.Render(content.Describe(
		PointAt("a", "pins", 1, 1),
		PointAt("b", "zones", 2, 2),
		content.ViewAnnotation{ID: "v", Resource: res},
	))
	require.NoError(t, err)

	require.NoError(t, coord.Close())

	assert.Zero(t, surf.EntityCount())
	assert.Zero(t, host.AttachedCount())
	assert.Zero(t, coord.TrackedCount())
	assert.Nil(t, surf.Indicator())

	_, err = coord.Render(content.Describe())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, coord.ProposeViewport(viewport.State{}, nil), ErrClosed)

	// Close is idempotent.
	assert.NoError(t, coord.Close())
}

// TestClose_SurvivorsAreFatal tests that a failed removal during teardown
// surfaces as an error.
func TestClose_SurvivorsAreFatal(t *testing.T) {
	coord, surf, _ := newTestCoordinator(t)

	_, err := coord.Render(content.Describe(PointAt("stuck", "pins", 1, 1)))
	require.NoError(t, err)

	surf.failNext["remove pins/stuck"] = errors.New("surface wedged")

	err = coord.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teardown")
	assert.Equal(t, 1, coord.TrackedCount())
}

// PointAt is a test helper building a point annotation.
func PointAt(id, group string, lon, lat float64) content.PointAnnotation {
	return content.PointAnnotation{ID: id, Group: group, At: content.Coordinate{Lon: lon, Lat: lat}}
}
