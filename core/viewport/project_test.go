package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"mapsync/core/content"
)

// TestProject_CenterMapsToScreenCenter tests the trivial fixed point.
func TestProject_CenterMapsToScreenCenter(t *testing.T) {
	state := State{Center: content.Coordinate{Lon: 12.5, Lat: 41.9}, Zoom: 10}

	x, y := Project(state, 800, 600, state.Center)

	assert.InDelta(t, 400, x, 1e-9)
	assert.InDelta(t, 300, y, 1e-9)
}

// TestProject_EastIsRightNorthIsUp tests axis orientation.
func TestProject_EastIsRightNorthIsUp(t *testing.T) {
	state := State{Center: content.Coordinate{}, Zoom: 4}

	east, _ := Project(state, 800, 600, content.Coordinate{Lon: 1})
	assert.Greater(t, east, 400.0)

	_, north := Project(state, 800, 600, content.Coordinate{Lat: 1})
	assert.Less(t, north, 300.0)
}

// TestProject_ZoomDoublesOffsets tests that one zoom level doubles the
// pixel distance from the screen center.
func TestProject_ZoomDoublesOffsets(t *testing.T) {
	target := content.Coordinate{Lon: 0.5}

	x1, _ := Project(State{Zoom: 3}, 800, 600, target)
	x2, _ := Project(State{Zoom: 4}, 800, 600, target)

	assert.InDelta(t, (x1-400)*2, x2-400, 1e-9)
}

// TestProject_BearingRotation tests that rotating the camera 90 degrees
// moves an eastern point to the top of the screen.
func TestProject_BearingRotation(t *testing.T) {
	target := content.Coordinate{Lon: 1}

	x, y := Project(State{Bearing: 90, Zoom: 4}, 800, 600, target)

	assert.InDelta(t, 400, x, 1e-6)
	assert.Less(t, y, 300.0)
}

// TestProject_ClampsPolarLatitudes tests that out-of-range latitudes stay
// finite.
func TestProject_ClampsPolarLatitudes(t *testing.T) {
	_, y := Project(State{Zoom: 2}, 800, 600, content.Coordinate{Lat: 90})
	assert.False(t, math.IsInf(y, 0))
	assert.False(t, math.IsNaN(y))
}
