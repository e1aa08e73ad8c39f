// Package scene is the rendered-element model used for hit testing. It
// mirrors what a drawing of the hierarchy puts on screen: one circle per
// node and one image/label overlay per sized leaf, each with a measured
// screen-space bounding box.
package scene

import (
	"math"

	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// ElementType distinguishes the two kinds of drawn elements.
type ElementType int

const (
	// CircleElement is the node's packed circle.
	CircleElement ElementType = iota
	// OverlayElement is the square image and label box drawn over a leaf.
	OverlayElement
)

// Box is an axis-aligned screen rectangle.
type Box struct {
	Min, Max r2.Vec
}

// Width of the box.
func (b Box) Width() float64 { return b.Max.X - b.Min.X }

// Height of the box.
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Element is one drawn element bound to a hierarchy node.
type Element struct {
	Node   model.NodeID
	Kind   model.Kind
	Type   ElementType
	Center r2.Vec  // screen space
	Radius float64 // screen space, circles only
	Box    Box
}

// Contains hit-tests p against the element's drawn shape: circles by
// geometry, overlays by their rectangle.
func (e Element) Contains(p r2.Vec) bool {
	if e.Type == CircleElement {
		return r2.Norm2(r2.Sub(p, e.Center)) <= e.Radius*e.Radius
	}
	return e.Box.Contains(p)
}

// Scene is the element list in paint order.
type Scene struct {
	Elements []Element
}

// Build lays out the drawn elements of h under transform t inside view box
// vb. Circles are painted first in pre-order, overlays after them, matching
// the drawing order of the exporters.
func Build(h *model.Hierarchy, t viewport.Transform, vb viewport.ViewBox) *Scene {
	s := &Scene{Elements: make([]Element, 0, h.Len()*2)}
	scale := vb.Scale() * t.K

	place := func(n *model.Node) (r2.Vec, float64) {
		p := viewport.Offset(r2.Vec{X: n.Circle.X, Y: n.Circle.Y}, vb.Size)
		return vb.ToScreen(t.Apply(p)), n.Circle.R * scale
	}

	for i := range h.Nodes {
		n := &h.Nodes[i]
		c, r := place(n)
		s.Elements = append(s.Elements, Element{
			Node:   n.ID,
			Kind:   n.Kind(),
			Type:   CircleElement,
			Center: c,
			Radius: r,
			Box:    boxAround(c, r),
		})
	}

	for i := range h.Nodes {
		n := &h.Nodes[i]
		if len(n.Children) > 0 || !n.Data.HasSize() {
			continue
		}
		c, r := place(n)
		s.Elements = append(s.Elements, Element{
			Node:   n.ID,
			Kind:   n.Kind(),
			Type:   OverlayElement,
			Center: c,
			Box:    boxAround(c, r),
		})
	}
	return s
}

func boxAround(c r2.Vec, r float64) Box {
	r = math.Abs(r)
	return Box{Min: r2.Vec{X: c.X - r, Y: c.Y - r}, Max: r2.Vec{X: c.X + r, Y: c.Y + r}}
}

// ElementsAt returns every element under p, topmost first.
func (s *Scene) ElementsAt(p r2.Vec) []Element {
	defer metrics.Timer(metrics.HitTest)()
	var out []Element
	for i := len(s.Elements) - 1; i >= 0; i-- {
		if s.Elements[i].Contains(p) {
			out = append(out, s.Elements[i])
		}
	}
	return out
}

// Circle returns the circle element for id, if present.
func (s *Scene) Circle(id model.NodeID) (Element, bool) {
	if int(id) >= 0 && int(id) < len(s.Elements) && s.Elements[id].Node == id && s.Elements[id].Type == CircleElement {
		return s.Elements[id], true
	}
	return Element{}, false
}
