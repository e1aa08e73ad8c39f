// Package focus decides which node the viewer is zoomed into. A Controller
// owns the current focus, the displayed transform and the single active
// transition; input handlers call into it one event at a time.
package focus

import (
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/layout"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/scene"
	"github.com/vanderheijden86/packzoom/pkg/viewport"

	"gonum.org/v1/gonum/spatial/r2"
)

// Listener is notified after the focus moves to a different node.
type Listener interface {
	FocusChanged(prev, next model.NodeID)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(prev, next model.NodeID)

// FocusChanged implements Listener.
func (f ListenerFunc) FocusChanged(prev, next model.NodeID) { f(prev, next) }

// Options configures a Controller.
type Options struct {
	Diameter float64              // view-box side
	Duration time.Duration        // click-to-zoom transition length
	Extent   viewport.ScaleExtent // bounds for manual zoom
}

// DefaultOptions matches the stock viewer: 960 view box, 750ms, [1, 100].
func DefaultOptions() Options {
	return Options{
		Diameter: layout.DefaultDiameter,
		Duration: viewport.DefaultDuration,
		Extent:   viewport.DefaultScaleExtent,
	}
}

// Controller is the explicit owner of focus and viewport state. It is not
// safe for concurrent use; callers serialize events.
type Controller struct {
	h    *model.Hierarchy
	opts Options
	vb   viewport.ViewBox

	focus      model.NodeID
	transform  viewport.Transform
	transition *viewport.Transition
	scene      *scene.Scene

	listeners []Listener
}

// NewController starts focused on the root at the home transform. h must
// already be packed.
func NewController(h *model.Hierarchy, width, height float64, opts Options) *Controller {
	def := DefaultOptions()
	if opts.Diameter <= 0 {
		opts.Diameter = def.Diameter
	}
	if opts.Duration < 0 {
		opts.Duration = def.Duration
	}
	if opts.Extent.Min <= 0 || opts.Extent.Max < opts.Extent.Min {
		opts.Extent = def.Extent
	}
	return &Controller{
		h:         h,
		opts:      opts,
		vb:        viewport.NewViewBox(opts.Diameter, width, height),
		focus:     model.RootID,
		transform: viewport.HomeTransform(opts.Diameter),
	}
}

// AddListener registers l for focus changes.
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Hierarchy returns the hierarchy being viewed.
func (c *Controller) Hierarchy() *model.Hierarchy { return c.h }

// Focus returns the focused node.
func (c *Controller) Focus() model.NodeID { return c.focus }

// Transform returns the displayed transform.
func (c *Controller) Transform() viewport.Transform { return c.transform }

// ViewBox returns the current screen fit.
func (c *Controller) ViewBox() viewport.ViewBox { return c.vb }

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool { return c.transition != nil }

// Theme returns the class name of the focus's top-level ancestor ("" at the
// root). Viewers use it to tint the whole view.
func (c *Controller) Theme() string { return c.h.ThemeClass(c.focus) }

// Scene returns the drawn elements for the displayed transform.
func (c *Controller) Scene() *scene.Scene {
	if c.scene == nil {
		c.scene = scene.Build(c.h, c.transform, c.vb)
	}
	return c.scene
}

func (c *Controller) setTransform(t viewport.Transform) {
	c.transform = t
	c.scene = nil
}

func (c *Controller) setFocus(id model.NodeID) {
	if !c.h.Valid(id) {
		id = model.RootID
	}
	prev := c.focus
	c.focus = id
	if prev == id {
		return
	}
	debug.Log("focus %v -> %v (%q)", prev, id, c.h.Nodes[id].Name())
	for _, l := range c.listeners {
		l.FocusChanged(prev, id)
	}
}

// ZoomTo focuses id and animates to its transform, retargeting any
// transition already in flight.
func (c *Controller) ZoomTo(id model.NodeID, now time.Time) {
	c.setFocus(id)
	target := viewport.HomeTransform(c.opts.Diameter)
	if c.focus != model.RootID {
		target = viewport.FocusTransform(c.h.Nodes[c.focus].Circle, c.opts.Diameter)
	}
	c.animate(target, now)
}

// Reset focuses the root and animates back to the home transform.
func (c *Controller) Reset(now time.Time) {
	c.setFocus(model.RootID)
	c.animate(viewport.HomeTransform(c.opts.Diameter), now)
}

// Jump focuses id and moves there without animating.
func (c *Controller) Jump(id model.NodeID) {
	c.setFocus(id)
	c.transition = nil
	if c.focus == model.RootID {
		c.setTransform(viewport.HomeTransform(c.opts.Diameter))
		return
	}
	c.setTransform(viewport.FocusTransform(c.h.Nodes[c.focus].Circle, c.opts.Diameter))
}

func (c *Controller) animate(target viewport.Transform, now time.Time) {
	c.transition = viewport.NewTransition(c.transform, target, c.opts.Diameter, now, c.opts.Duration)
	c.Step(now)
}

// Step advances the active transition to now and reports whether it is
// still running.
func (c *Controller) Step(now time.Time) bool {
	if c.transition == nil {
		return false
	}
	c.setTransform(c.transition.At(now))
	if c.transition.Done(now) {
		c.transition = nil
		return false
	}
	return true
}

// Resize keeps the view filling a screen of the new size. Focus and
// transform are unchanged.
func (c *Controller) Resize(width, height float64) {
	c.vb = viewport.NewViewBox(c.opts.Diameter, width, height)
	c.scene = nil
}

// Pan is a manual drag by (dx, dy) screen units.
func (c *Controller) Pan(dx, dy float64) model.NodeID {
	s := c.vb.Scale()
	if s == 0 {
		return c.focus
	}
	t := c.transform
	t.X += dx / s
	t.Y += dy / s
	return c.SetTransform(t)
}

// ZoomAt is a manual zoom by factor about screen point p.
func (c *Controller) ZoomAt(p r2.Vec, factor float64) model.NodeID {
	if factor <= 0 {
		return c.focus
	}
	pv := c.vb.FromScreen(p)
	anchor := c.transform.Invert(pv)
	k := c.opts.Extent.Clamp(c.transform.K * factor)
	return c.SetTransform(viewport.Transform{K: k, X: pv.X - anchor.X*k, Y: pv.Y - anchor.Y*k})
}

// SetTransform applies a transform coming from a manual gesture: it cancels
// any transition, clamps the scale, and recenters the focus on whatever now
// fills the view.
func (c *Controller) SetTransform(t viewport.Transform) model.NodeID {
	c.transition = nil
	t.K = c.opts.Extent.Clamp(t.K)
	c.setTransform(t)
	return c.Recenter()
}
