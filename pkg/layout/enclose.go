package layout

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var errNoBasis = errors.New("layout: cannot extend enclosing basis")

// lcg is the deterministic generator used to shuffle circles before
// computing their enclosing circle, so identical input gives identical output.
type lcg struct{ s uint64 }

func newLCG() *lcg { return &lcg{s: 1} }

func (g *lcg) next() float64 {
	const (
		a = 1664525
		c = 1013904223
		m = 1 << 32
	)
	g.s = (a*g.s + c) % m
	return float64(g.s) / m
}

func shuffle(cs []*circle, rng *lcg) {
	for m := len(cs); m > 0; {
		i := int(rng.next() * float64(m))
		m--
		cs[m], cs[i] = cs[i], cs[m]
	}
}

// encloseRandom returns the smallest circle enclosing every circle in cs
// (Welzl's move-to-front algorithm on a shuffled copy).
func encloseRandom(cs []*circle, rng *lcg) (circle, error) {
	shuffled := append([]*circle(nil), cs...)
	shuffle(shuffled, rng)

	var (
		basis []*circle
		e     *circle
	)
	for i := 0; i < len(shuffled); {
		p := shuffled[i]
		if e != nil && enclosesWeak(e, p) {
			i++
			continue
		}
		var err error
		basis, err = extendBasis(basis, p)
		if err != nil {
			return circle{}, err
		}
		enc := encloseBasis(basis)
		e = &enc
		i = 0
	}
	if e == nil {
		return circle{}, nil
	}
	return *e, nil
}

func extendBasis(basis []*circle, p *circle) ([]*circle, error) {
	if enclosesWeakAll(p, basis) {
		return []*circle{p}, nil
	}

	// If we get here then the basis has at least one element.
	for _, b := range basis {
		if enclosesNot(p, b) {
			e := encloseBasis2(b, p)
			if enclosesWeakAll(&e, basis) {
				return []*circle{b, p}, nil
			}
		}
	}

	// If we get here then the basis has at least two elements.
	for i := 0; i < len(basis)-1; i++ {
		for j := i + 1; j < len(basis); j++ {
			bi, bj := basis[i], basis[j]
			eij := encloseBasis2(bi, bj)
			eip := encloseBasis2(bi, p)
			ejp := encloseBasis2(bj, p)
			if enclosesNot(&eij, p) && enclosesNot(&eip, bj) && enclosesNot(&ejp, bi) {
				e := encloseBasis3(bi, bj, p)
				if enclosesWeakAll(&e, basis) {
					return []*circle{bi, bj, p}, nil
				}
			}
		}
	}

	return nil, errNoBasis
}

func enclosesNot(a, b *circle) bool {
	dr := a.r - b.r
	return dr < 0 || dr*dr < r2.Norm2(r2.Sub(b.p, a.p))
}

func enclosesWeak(a, b *circle) bool {
	dr := a.r - b.r + math.Max(math.Max(a.r, b.r), 1)*1e-9
	return dr > 0 && dr*dr > r2.Norm2(r2.Sub(b.p, a.p))
}

func enclosesWeakAll(a *circle, basis []*circle) bool {
	for _, b := range basis {
		if !enclosesWeak(a, b) {
			return false
		}
	}
	return true
}

func encloseBasis(basis []*circle) circle {
	switch len(basis) {
	case 1:
		return *basis[0]
	case 2:
		return encloseBasis2(basis[0], basis[1])
	default:
		return encloseBasis3(basis[0], basis[1], basis[2])
	}
}

func encloseBasis2(a, b *circle) circle {
	d := r2.Sub(b.p, a.p)
	dr := b.r - a.r
	l := r2.Norm(d)
	if l == 0 {
		if a.r >= b.r {
			return *a
		}
		return *b
	}
	return circle{
		p: r2.Vec{
			X: (a.p.X + b.p.X + d.X/l*dr) / 2,
			Y: (a.p.Y + b.p.Y + d.Y/l*dr) / 2,
		},
		r: (l + a.r + b.r) / 2,
	}
}

func encloseBasis3(a, b, c *circle) circle {
	x1, y1, r1 := a.p.X, a.p.Y, a.r
	x2, y2, r2v := b.p.X, b.p.Y, b.r
	x3, y3, r3 := c.p.X, c.p.Y, c.r

	a2 := x1 - x2
	a3 := x1 - x3
	b2 := y1 - y2
	b3 := y1 - y3
	c2 := r2v - r1
	c3 := r3 - r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2v*r2v
	d3 := d1 - x3*x3 - y3*y3 + r3*r3
	ab := a3*b2 - a2*b3
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab
	qa := xb*xb + yb*yb - 1
	qb := 2 * (r1 + xa*xb + ya*yb)
	qc := xa*xa + ya*ya - r1*r1

	var r float64
	if math.Abs(qa) > 1e-6 {
		r = -(qb + math.Sqrt(qb*qb-4*qa*qc)) / (2 * qa)
	} else {
		r = -qc / qb
	}
	return circle{p: r2.Vec{X: x1 + xa + xb*r, Y: y1 + ya + yb*r}, r: r}
}
