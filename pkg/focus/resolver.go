package focus

import (
	"sort"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/scene"

	"gonum.org/v1/gonum/spatial/r2"
)

// Eligible reports whether d is a valid next zoom target from the current
// focus: a child of the focus, a sibling of the focus, or the focus's parent.
// The focus itself is not a target; it would always win the size ordering
// over its own children.
func (c *Controller) Eligible(d model.NodeID) bool {
	if !c.h.Valid(d) || d == c.focus {
		return false
	}
	parent := c.h.Parent(d)
	focusParent := c.h.Parent(c.focus)
	return parent == c.focus ||
		(parent != model.NoNode && parent == focusParent) ||
		(focusParent != model.NoNode && d == focusParent)
}

// zoomable keeps parent and leaf elements; the root is never hit directly.
func zoomable(elems []scene.Element) []scene.Element {
	out := elems[:0:0]
	for _, e := range elems {
		if e.Kind == model.KindParent || e.Kind == model.KindLeaf {
			out = append(out, e)
		}
	}
	return out
}

// Candidates returns the eligible elements under screen point p, largest
// first. Equal sizes keep topmost-first order.
func (c *Controller) Candidates(p r2.Vec) []scene.Element {
	var out []scene.Element
	for _, e := range zoomable(c.Scene().ElementsAt(p)) {
		if c.Eligible(e.Node) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.Width() > out[j].Box.Width()
	})
	return out
}

// Resolve picks the node a click at p should zoom to.
func (c *Controller) Resolve(p r2.Vec) (model.NodeID, bool) {
	cands := c.Candidates(p)
	if len(cands) == 0 {
		return model.NoNode, false
	}
	return cands[0].Node, true
}

// Click handles a click at screen point p. When a target resolves it becomes
// the focus and the view animates to it; otherwise nothing changes.
func (c *Controller) Click(p r2.Vec, now time.Time) (model.NodeID, bool) {
	id, ok := c.Resolve(p)
	if !ok {
		return c.focus, false
	}
	c.ZoomTo(id, now)
	return id, true
}

// Recenter recomputes the focus from what sits at the screen center: the
// smallest parent or leaf whose box is still wider than the screen's smaller
// side, or the root when nothing qualifies.
func (c *Controller) Recenter() model.NodeID {
	elems := zoomable(c.Scene().ElementsAt(c.vb.Center()))
	sort.SliceStable(elems, func(i, j int) bool {
		return elems[i].Box.Width() < elems[j].Box.Width()
	})

	target := model.RootID
	minSide := c.vb.MinSide()
	for _, e := range elems {
		if e.Box.Width() > minSide {
			target = e.Node
			break
		}
	}
	c.setFocus(target)
	return target
}
