package viewport

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ViewBox fits a square view box of side Size into a screen of Width x
// Height, scaled uniformly and centered on both axes.
type ViewBox struct {
	Size   float64
	Width  float64
	Height float64
}

// NewViewBox returns a view box of the given side drawn into a screen.
func NewViewBox(size, width, height float64) ViewBox {
	return ViewBox{Size: size, Width: width, Height: height}
}

// Scale is the number of screen units per view-box unit.
func (v ViewBox) Scale() float64 {
	if v.Size <= 0 {
		return 0
	}
	return math.Min(v.Width, v.Height) / v.Size
}

func (v ViewBox) origin() r2.Vec {
	s := v.Scale()
	return r2.Vec{X: (v.Width - v.Size*s) / 2, Y: (v.Height - v.Size*s) / 2}
}

// ToScreen maps a view-box point to screen coordinates.
func (v ViewBox) ToScreen(p r2.Vec) r2.Vec {
	return r2.Add(v.origin(), r2.Scale(v.Scale(), p))
}

// FromScreen maps a screen point to view-box coordinates.
func (v ViewBox) FromScreen(p r2.Vec) r2.Vec {
	s := v.Scale()
	if s == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/s, r2.Sub(p, v.origin()))
}

// Center is the screen center.
func (v ViewBox) Center() r2.Vec {
	return r2.Vec{X: v.Width / 2, Y: v.Height / 2}
}

// MinSide is the smaller of the screen's width and height.
func (v ViewBox) MinSide() float64 {
	return math.Min(v.Width, v.Height)
}
