package testutil

import (
	"math"

	"github.com/vanderheijden86/packzoom/pkg/model"
)

// TB is the subset of testing.TB the assertions need; *testing.T and
// *rapid.T both satisfy it.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Epsilon is the absolute tolerance, in canvas units, used by the geometric
// assertions.
const Epsilon = 1e-3

// AssertValuesSummed verifies that every parent's value equals the sum of its
// children's values.
func AssertValuesSummed(t TB, h *model.Hierarchy) {
	t.Helper()
	for i := range h.Nodes {
		n := &h.Nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		var sum float64
		for _, c := range n.Children {
			sum += h.Nodes[c].Value
		}
		if math.Abs(sum-n.Value) > 1e-9*math.Max(1, n.Value) {
			t.Fatalf("node %q value %v != children sum %v", n.Name(), n.Value, sum)
		}
	}
}

// AssertCirclesNested verifies that children lie inside their parent minus
// padding and that sibling circles stay at least padding apart.
func AssertCirclesNested(t TB, h *model.Hierarchy, padding float64) {
	t.Helper()
	for i := range h.Nodes {
		p := &h.Nodes[i]
		const tol = Epsilon
		for ai, a := range p.Children {
			ca := h.Nodes[a].Circle
			d := math.Hypot(ca.X-p.Circle.X, ca.Y-p.Circle.Y)
			if d+ca.R > p.Circle.R-padding+tol {
				t.Fatalf("child %q (r=%v) escapes parent %q (r=%v, padding %v): dist %v",
					h.Nodes[a].Name(), ca.R, p.Name(), p.Circle.R, padding, d)
			}
			for _, b := range p.Children[ai+1:] {
				cb := h.Nodes[b].Circle
				gap := math.Hypot(ca.X-cb.X, ca.Y-cb.Y) - ca.R - cb.R
				if gap < padding-tol {
					t.Fatalf("siblings %q and %q are %v apart, want >= %v", h.Nodes[a].Name(), h.Nodes[b].Name(), gap, padding)
				}
			}
		}
	}
}
