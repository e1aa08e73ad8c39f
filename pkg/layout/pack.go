// Package layout computes circle-packing layouts for a model.Hierarchy.
//
// Leaves get a radius proportional to the square root of their value,
// siblings are packed with the front-chain algorithm, every parent gets the
// smallest circle enclosing its children, and the result is scaled to fit
// the canvas. Padding is solved so that, after scaling, every child sits at
// least Padding inside its parent and siblings are at least Padding apart.
package layout

import (
	"fmt"
	"math"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"

	"gonum.org/v1/gonum/spatial/r2"
)

// Default canvas geometry.
const (
	DefaultDiameter = 960.0
	DefaultMargin   = 20.0
	DefaultPadding  = 15.0
)

const (
	paddingIterations = 50
	paddingTolerance  = 1e-9
)

// Options controls the packing canvas.
type Options struct {
	Width   float64
	Height  float64
	Padding float64
}

// DefaultOptions returns the 940x940 canvas with 15 units of padding.
func DefaultOptions() Options {
	side := DefaultDiameter - DefaultMargin
	return Options{Width: side, Height: side, Padding: DefaultPadding}
}

// Pack assigns a circle to every node of h. The root is centered on the
// canvas with radius min(Width, Height)/2.
func Pack(h *model.Hierarchy, opts Options) error {
	if h == nil || h.Len() == 0 {
		return model.ErrEmptyTree
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid canvas size %vx%v", opts.Width, opts.Height)
	}
	if opts.Padding < 0 {
		return fmt.Errorf("negative padding %v", opts.Padding)
	}
	defer metrics.Timer(metrics.PackLayout)()
	start := time.Now()

	side := math.Min(opts.Width, opts.Height)
	p := newPacker(h)

	if err := p.packAll(0); err != nil {
		return err
	}

	if opts.Padding > 0 && p.circles[model.RootID].r > 0 {
		// Inflation per circle in unscaled units; half the padding once the
		// final scale side/(2R) is applied.
		inflate := opts.Padding * p.circles[model.RootID].r / side
		for i := 0; i < paddingIterations; i++ {
			if err := p.packAll(inflate); err != nil {
				return err
			}
			scale := side / (2 * p.circles[model.RootID].r)
			want := opts.Padding / (2 * scale)
			if math.Abs(want-inflate) <= paddingTolerance*math.Max(want, 1) {
				break
			}
			inflate = want
		}
	}

	p.apply(opts.Width/2, opts.Height/2, side)
	debug.LogTiming(fmt.Sprintf("pack %d nodes", h.Len()), time.Since(start))
	return nil
}

// packer holds per-node circles relative to their parent's center.
type packer struct {
	h       *model.Hierarchy
	circles []circle
}

func newPacker(h *model.Hierarchy) *packer {
	return &packer{h: h, circles: make([]circle, h.Len())}
}

// packAll lays out every node bottom-up, inflating each child radius by
// inflate while its siblings are packed.
func (p *packer) packAll(inflate float64) error {
	rng := newLCG()
	for i := range p.circles {
		p.circles[i] = circle{}
		n := &p.h.Nodes[i]
		if len(n.Children) == 0 {
			p.circles[i].r = math.Sqrt(math.Max(0, n.Value))
		}
	}

	// Pre-order arena: walking backwards visits children before parents.
	for i := len(p.h.Nodes) - 1; i >= 0; i-- {
		n := &p.h.Nodes[i]
		if len(n.Children) == 0 {
			continue
		}
		children := make([]*circle, len(n.Children))
		for j, c := range n.Children {
			children[j] = &p.circles[c]
			children[j].r += inflate
		}
		e, err := packSiblings(children, rng)
		if err != nil {
			return fmt.Errorf("pack children of %q: %w", n.Name(), err)
		}
		for _, c := range children {
			c.r -= inflate
		}
		p.circles[i].r = e + inflate
	}
	return nil
}

// apply converts relative circles into absolute canvas circles.
func (p *packer) apply(cx, cy, side float64) {
	rootR := p.circles[model.RootID].r
	scale := 0.0
	if rootR > 0 {
		scale = side / (2 * rootR)
	}

	abs := make([]r2.Vec, len(p.circles))
	abs[model.RootID] = r2.Vec{X: cx, Y: cy}
	for i := range p.h.Nodes {
		n := &p.h.Nodes[i]
		if n.Parent != model.NoNode {
			abs[i] = r2.Add(abs[n.Parent], r2.Scale(scale, p.circles[i].p))
		}
		n.Circle = model.Circle{X: abs[i].X, Y: abs[i].Y, R: p.circles[i].r * scale}
	}
	p.h.Nodes[model.RootID].Circle.R = side / 2
}
