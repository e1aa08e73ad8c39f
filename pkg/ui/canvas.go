package ui

import (
	"strings"

	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/scene"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"
)

// cell is one rasterized canvas cell.
type cell struct {
	node  model.NodeID // deepest node under the cell, NoNode when empty
	edge  bool         // on the focused circle's rim
	label rune         // label glyph drawn over the fill, 0 for none
	wide  bool         // continuation of a double-width label glyph
}

// Canvas is a character raster of a scene.
type Canvas struct {
	Width, Height int
	cells         []cell
}

// CellCenter maps a canvas cell to the screen point at its center.
func CellCenter(col, row int) r2.Vec {
	return r2.Vec{X: (float64(col) + 0.5) * CellWidth, Y: (float64(row) + 0.5) * CellHeight}
}

// ScreenSize is the screen extent covered by a canvas of cols x rows.
func ScreenSize(cols, rows int) (float64, float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// Rasterize samples sc at every cell center. Circles are nested, so each
// cell descends from the root into whichever child still contains it.
func Rasterize(h *model.Hierarchy, sc *scene.Scene, focus model.NodeID, cols, rows int, labels bool) *Canvas {
	defer metrics.Timer(metrics.Render)()
	c := &Canvas{Width: cols, Height: rows, cells: make([]cell, max(0, cols*rows))}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := CellCenter(col, row)
			c.cells[row*cols+col] = cell{node: deepestAt(h, sc, p)}
		}
	}
	c.markEdge(h, focus)
	if labels {
		c.placeLabels(h, sc)
	}
	return c
}

func deepestAt(h *model.Hierarchy, sc *scene.Scene, p r2.Vec) model.NodeID {
	root, ok := sc.Circle(model.RootID)
	if !ok || !root.Contains(p) {
		return model.NoNode
	}
	id := model.RootID
	for {
		next := model.NoNode
		for _, ch := range h.Nodes[id].Children {
			if e, ok := sc.Circle(ch); ok && e.Contains(p) {
				next = ch
				break
			}
		}
		if next == model.NoNode {
			return id
		}
		id = next
	}
}

// inside reports whether the cell at (col,row) lies within node id's circle.
func (c *Canvas) inside(h *model.Hierarchy, col, row int, id model.NodeID) bool {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return false
	}
	n := c.cells[row*c.Width+col].node
	for n != model.NoNode {
		if n == id {
			return true
		}
		n = h.Parent(n)
	}
	return false
}

// markEdge flags cells inside the focus whose neighbours fall outside it.
func (c *Canvas) markEdge(h *model.Hierarchy, focus model.NodeID) {
	if focus == model.RootID || !h.Valid(focus) {
		return
	}
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if !c.inside(h, col, row, focus) {
				continue
			}
			if !c.inside(h, col-1, row, focus) || !c.inside(h, col+1, row, focus) ||
				!c.inside(h, col, row-1, focus) || !c.inside(h, col, row+1, focus) {
				c.cells[row*c.Width+col].edge = true
			}
		}
	}
}

// placeLabels centers each sized leaf's name in its overlay box when at
// least two glyphs fit.
func (c *Canvas) placeLabels(h *model.Hierarchy, sc *scene.Scene) {
	for _, e := range sc.Elements {
		if e.Type != scene.OverlayElement {
			continue
		}
		avail := int(e.Box.Width()/CellWidth) - 1
		if avail < 2 {
			continue
		}
		text := truncate(h.Nodes[e.Node].Name(), avail)
		w := runewidth.StringWidth(text)
		if w == 0 {
			continue
		}
		row := int(e.Center.Y / CellHeight)
		col := int(e.Center.X/CellWidth) - w/2
		if row < 0 || row >= c.Height {
			continue
		}
		for _, r := range text {
			rw := runewidth.RuneWidth(r)
			if col >= 0 && col+rw <= c.Width {
				c.cells[row*c.Width+col].label = r
				if rw == 2 {
					c.cells[row*c.Width+col+1].wide = true
				}
			}
			col += rw
		}
	}
}

// At returns the node drawn at (col,row).
func (c *Canvas) At(col, row int) model.NodeID {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return model.NoNode
	}
	return c.cells[row*c.Width+col].node
}

// Render styles the raster, batching runs of identical style per row.
func (c *Canvas) Render(h *model.Hierarchy, t Theme) string {
	var b strings.Builder
	styles := make(map[styleKey]lipgloss.Style)
	for row := 0; row < c.Height; row++ {
		var run strings.Builder
		var runKey styleKey
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st, ok := styles[runKey]
			if !ok {
				st = runKey.style(t)
				styles[runKey] = st
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.Width; col++ {
			cl := c.cells[row*c.Width+col]
			if cl.wide {
				continue
			}
			k := keyFor(h, cl)
			if k != runKey {
				flush()
				runKey = k
			}
			switch {
			case cl.label != 0:
				run.WriteRune(cl.label)
			case cl.edge:
				run.WriteRune('•')
			default:
				run.WriteRune(' ')
			}
		}
		flush()
		if row < c.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

type styleKey struct {
	depth int
	leaf  bool
	empty bool
	edge  bool
	label bool
}

func keyFor(h *model.Hierarchy, cl cell) styleKey {
	if cl.node == model.NoNode {
		return styleKey{empty: true}
	}
	n := &h.Nodes[cl.node]
	return styleKey{
		depth: n.Depth,
		leaf:  len(n.Children) == 0 && n.Parent != model.NoNode,
		edge:  cl.edge && cl.label == 0,
		label: cl.label != 0,
	}
}

func (k styleKey) style(t Theme) lipgloss.Style {
	bg := t.Empty
	switch {
	case k.empty:
	case k.leaf:
		bg = t.Leaf
	default:
		bg = t.DepthColor(k.depth)
	}
	st := t.Renderer.NewStyle().Background(bg)
	switch {
	case k.label:
		st = st.Inherit(t.Label)
	case k.edge:
		st = st.Foreground(t.Focus).Bold(true)
	}
	return st
}
