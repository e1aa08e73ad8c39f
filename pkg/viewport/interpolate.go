package viewport

import "math"

const (
	rho  = math.Sqrt2
	rho2 = 2.0
	rho4 = 4.0
)

// view is a camera described by its center and the width it shows, both in
// drawing coordinates.
type view struct {
	cx, cy, w float64
}

// zoomInterpolator returns a smooth pan-and-zoom path between two views
// (van Wijk and Nuij), parameterized over t in [0, 1].
func zoomInterpolator(p0, p1 view) func(t float64) view {
	dx := p1.cx - p0.cx
	dy := p1.cy - p0.cy
	d2 := dx*dx + dy*dy

	if d2 < 1e-12 {
		s := math.Log(p1.w/p0.w) / rho
		return func(t float64) view {
			return view{p0.cx + t*dx, p0.cy + t*dy, p0.w * math.Exp(rho*t*s)}
		}
	}

	d1 := math.Sqrt(d2)
	b0 := (p1.w*p1.w - p0.w*p0.w + rho4*d2) / (2 * p0.w * rho2 * d1)
	b1 := (p1.w*p1.w - p0.w*p0.w - rho4*d2) / (2 * p1.w * rho2 * d1)
	r0 := math.Log(math.Sqrt(b0*b0+1) - b0)
	r1 := math.Log(math.Sqrt(b1*b1+1) - b1)
	s := (r1 - r0) / rho
	coshr0 := math.Cosh(r0)

	return func(t float64) view {
		st := t * s
		u := p0.w / (rho2 * d1) * (coshr0*math.Tanh(rho*st+r0) - math.Sinh(r0))
		return view{p0.cx + u*dx, p0.cy + u*dy, p0.w * coshr0 / math.Cosh(rho*st+r0)}
	}
}

// EaseCubicInOut is the default transition easing.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
