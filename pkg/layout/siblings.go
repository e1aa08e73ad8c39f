package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type circle struct {
	p r2.Vec
	r float64
}

// chainNode is one entry of the front chain, a circular doubly linked list
// of the circles currently on the outside of the packing.
type chainNode struct {
	c          *circle
	next, prev *chainNode
}

// packSiblings places circles tangent to each other around the origin, then
// recenters them on their smallest enclosing circle and returns its radius.
func packSiblings(circles []*circle, rng *lcg) (float64, error) {
	n := len(circles)
	if n == 0 {
		return 0, nil
	}

	a := circles[0]
	a.p = r2.Vec{}
	if n == 1 {
		return a.r, nil
	}

	b := circles[1]
	a.p = r2.Vec{X: -b.r}
	b.p = r2.Vec{X: a.r}
	if n == 2 {
		return a.r + b.r, nil
	}

	place(b, a, circles[2])

	na := &chainNode{c: a}
	nb := &chainNode{c: b}
	nc := &chainNode{c: circles[2]}
	na.next, nc.prev = nb, nb
	nb.next, na.prev = nc, nc
	nc.next, nb.prev = na, na

pack:
	for i := 3; i < n; i++ {
		place(na.c, nb.c, circles[i])
		nc = &chainNode{c: circles[i]}

		// Find the closest intersecting circle on the front chain, if any.
		j, k := nb.next, na.prev
		sj, sk := nb.c.r, na.c.r
		for {
			if sj <= sk {
				if intersects(j.c, nc.c) {
					nb = j
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sj += j.c.r
				j = j.next
			} else {
				if intersects(k.c, nc.c) {
					na = k
					na.next, nb.prev = nb, na
					i--
					continue pack
				}
				sk += k.c.r
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		// Success: insert the new circle between a and b.
		nc.prev, nc.next = na, nb
		na.next = nc
		nb.prev = nc
		nb = nc

		// Compute the new closest circle pair to the centroid.
		aa := score(na)
		for c := nc.next; c != nb; c = c.next {
			if ca := score(c); ca < aa {
				na, aa = c, ca
			}
		}
		nb = na.next
	}

	front := []*circle{nb.c}
	for c := nb.next; c != nb; c = c.next {
		front = append(front, c.c)
	}
	e, err := encloseRandom(front, rng)
	if err != nil {
		return 0, err
	}
	for _, c := range circles {
		c.p = r2.Sub(c.p, e.p)
	}
	return e.r, nil
}

// place positions c tangent to both a and b.
func place(b, a, c *circle) {
	d := r2.Sub(b.p, a.p)
	d2 := r2.Norm2(d)
	if d2 == 0 {
		c.p = r2.Vec{X: a.p.X + c.r, Y: a.p.Y}
		return
	}

	a2 := (a.r + c.r) * (a.r + c.r)
	b2 := (b.r + c.r) * (b.r + c.r)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.p = r2.Vec{
			X: b.p.X - x*d.X - y*d.Y,
			Y: b.p.Y - x*d.Y + y*d.X,
		}
		return
	}
	x := (d2 + a2 - b2) / (2 * d2)
	y := math.Sqrt(math.Max(0, a2/d2-x*x))
	c.p = r2.Vec{
		X: a.p.X + x*d.X - y*d.Y,
		Y: a.p.Y + x*d.Y + y*d.X,
	}
}

func intersects(a, b *circle) bool {
	dr := a.r + b.r - 1e-6
	if dr <= 0 {
		return false
	}
	return dr*dr > r2.Norm2(r2.Sub(b.p, a.p))
}

// score is the squared distance from the origin to the weighted midpoint of
// a chain node and its successor.
func score(n *chainNode) float64 {
	a, b := n.c, n.next.c
	ab := a.r + b.r
	if ab == 0 {
		return r2.Norm2(r2.Scale(0.5, r2.Add(a.p, b.p)))
	}
	m := r2.Scale(1/ab, r2.Add(r2.Scale(b.r, a.p), r2.Scale(a.r, b.p)))
	return r2.Norm2(m)
}
