package viewport

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultDuration is the length of a click-to-zoom transition.
const DefaultDuration = 750 * time.Millisecond

// Transition animates the view from one transform to another about a fixed
// view-box point. Only one transition is ever active; starting a new one
// replaces the old one from whatever transform is currently displayed.
type Transition struct {
	From     Transform
	To       Transform
	Start    time.Time
	Duration time.Duration
	Ease     func(float64) float64

	interp func(float64) view
	point  r2.Vec
	width  float64
}

// NewTransition prepares a transition. size is the view-box side; the
// animation zooms about the view-box center like a default zoom behavior.
func NewTransition(from, to Transform, size float64, start time.Time, d time.Duration) *Transition {
	p := r2.Vec{X: size / 2, Y: size / 2}
	a := from.Invert(p)
	b := to.Invert(p)
	return &Transition{
		From:     from,
		To:       to,
		Start:    start,
		Duration: d,
		Ease:     EaseCubicInOut,
		interp:   zoomInterpolator(view{a.X, a.Y, size / from.K}, view{b.X, b.Y, size / to.K}),
		point:    p,
		width:    size,
	}
}

// Progress returns the eased progress in [0, 1] at now.
func (tr *Transition) Progress(now time.Time) float64 {
	if tr.Duration <= 0 {
		return 1
	}
	t := float64(now.Sub(tr.Start)) / float64(tr.Duration)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	ease := tr.Ease
	if ease == nil {
		ease = EaseCubicInOut
	}
	return ease(t)
}

// At returns the transform displayed at now.
func (tr *Transition) At(now time.Time) Transform {
	t := tr.Progress(now)
	if t >= 1 {
		return tr.To
	}
	if t <= 0 {
		return tr.From
	}
	v := tr.interp(t)
	k := tr.width / v.w
	return Transform{K: k, X: tr.point.X - v.cx*k, Y: tr.point.Y - v.cy*k}
}

// Done reports whether the transition has reached its target at now.
func (tr *Transition) Done(now time.Time) bool {
	return tr.Duration <= 0 || !now.Before(tr.Start.Add(tr.Duration))
}
