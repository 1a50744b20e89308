package viewport

import (
	"math"

	"mapsync/core/content"
)

// tileSize is the web-mercator world tile edge in pixels at zoom 0.
const tileSize = 512

// Project maps a geographic coordinate to surface pixel coordinates for
// the given camera state and surface size. It uses the spherical
// web-mercator projection with bearing rotation around the screen
// center; pitch is not modelled (view resources sit on the screen plane,
// so a planar position is what attachment needs).
func Project(s State, width, height float64, c content.Coordinate) (x, y float64) {
	worldSize := tileSize * math.Exp2(s.Zoom)

	wx, wy := mercator(c)
	cx, cy := mercator(s.Center)

	dx := (wx - cx) * worldSize
	dy := (wy - cy) * worldSize

	if s.Bearing != 0 {
		rad := -s.Bearing * math.Pi / 180
		sin, cos := math.Sincos(rad)
		dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
	}

	return width/2 + dx, height/2 + dy
}

// mercator converts degrees to normalized world coordinates in [0,1).
func mercator(c content.Coordinate) (x, y float64) {
	x = (c.Lon + 180) / 360
	latRad := clampLat(c.Lat) * math.Pi / 180
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// clampLat keeps latitudes inside the mercator-projectable range.
func clampLat(lat float64) float64 {
	const limit = 85.05112878
	return math.Max(-limit, math.Min(limit, lat))
}
