// Package viewport models the zoom transform applied to the packed canvas,
// the square view box it is drawn into, and animated transitions between
// transforms.
package viewport

import (
	"fmt"
	"math"

	"github.com/vanderheijden86/packzoom/pkg/model"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform maps drawing coordinates to view-box coordinates:
// p' = p*K + (X, Y). Drawing coordinates are packed canvas coordinates
// shifted by -diameter/2 on both axes (see Offset).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{K: 1}

// Translate returns t followed by a translation of (x, y) in t's scaled
// space.
func (t Transform) Translate(x, y float64) Transform {
	return Transform{K: t.K, X: t.X + t.K*x, Y: t.Y + t.K*y}
}

// Scale returns t with its scale multiplied by k.
func (t Transform) Scale(k float64) Transform {
	return Transform{K: t.K * k, X: t.X, Y: t.Y}
}

// Apply maps a drawing point into view-box space.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a view-box point back into drawing space.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Offset converts a packed canvas point into drawing coordinates.
func Offset(p r2.Vec, diameter float64) r2.Vec {
	return r2.Vec{X: p.X - diameter/2, Y: p.Y - diameter/2}
}

// HomeTransform is the initial view: the drawing origin moved to the center
// of the view box.
func HomeTransform(diameter float64) Transform {
	return Identity.Translate(diameter/2, diameter/2)
}

// FocusTransform centers the canvas circle c in the view box and scales it so
// that its diameter spans the whole view box.
func FocusTransform(c model.Circle, diameter float64) Transform {
	if c.R <= 0 {
		return HomeTransform(diameter)
	}
	k := diameter / (2 * c.R)
	return Identity.
		Translate(diameter/2, diameter/2).
		Scale(k).
		Translate(-c.X+diameter/2, -c.Y+diameter/2)
}

// ScaleExtent bounds the zoom factor reachable through manual gestures.
type ScaleExtent struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultScaleExtent allows zooming between 1x and 100x.
var DefaultScaleExtent = ScaleExtent{Min: 1, Max: 100}

// Clamp limits k to the extent.
func (e ScaleExtent) Clamp(k float64) float64 {
	return math.Max(e.Min, math.Min(e.Max, k))
}
