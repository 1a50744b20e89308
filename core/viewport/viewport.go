package viewport

import (
	"time"

	"mapsync/core/content"
)

// EdgeInsets is the viewport padding in surface pixels.
type EdgeInsets struct {
	Top    float64 `json:"top,omitempty"`
	Left   float64 `json:"left,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
	Right  float64 `json:"right,omitempty"`
}

// Easing names a camera transition curve. Interpretation is up to the
// rendering surface; the reconciler only carries it through.
type Easing string

const (
	EaseLinear Easing = "linear"
	EaseIn     Easing = "ease-in"
	EaseOut    Easing = "ease-out"
	EaseInOut  Easing = "ease-in-out"
)

// Animation describes an optional camera transition.
type Animation struct {
	Duration time.Duration `json:"duration"`
	Easing   Easing        `json:"easing,omitempty"`
}

// State is an immutable camera snapshot: position, zoom, bearing, pitch
// and padding, plus an optional default transition descriptor used when a
// proposal carries no explicit animation.
type State struct {
	Center  content.Coordinate `json:"center"`
	Zoom    float64            `json:"zoom"`
	Bearing float64            `json:"bearing,omitempty"`
	Pitch   float64            `json:"pitch,omitempty"`
	Padding EdgeInsets         `json:"padding,omitempty"`

	Transition *Animation `json:"transition,omitempty"`
}
