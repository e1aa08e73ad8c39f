package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/scene"
	"github.com/vanderheijden86/packzoom/pkg/viewport"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path      string             // Output path; format inferred from extension when Format empty
	Format    string             // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title     string             // Optional caption drawn in the top-left corner
	Hierarchy *model.Hierarchy   // Packed hierarchy to draw
	Focus     model.NodeID       // Focused node, outlined and used for the theme class
	Transform viewport.Transform // Displayed transform; zero means the home view
	Diameter  float64            // View-box side (default 960)
	Width     int                // Image width in pixels (default 960)
	Height    int                // Image height in pixels (default 960)
}

// Snapshot formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// SaveSnapshot renders the current view (SVG or PNG) the way the viewer
// draws it: every circle styled by kind and depth, the focus outlined, and
// an image/label overlay over each sized leaf.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Hierarchy == nil || opts.Hierarchy.Len() == 0 {
		return model.ErrEmptyTree
	}

	format, path, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	opts.Path = path

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	defer metrics.Timer(metrics.Export)()
	start := time.Now()
	defer func() { debug.LogTiming("snapshot "+opts.Path, time.Since(start)) }()

	v := buildView(opts)
	switch format {
	case FormatSVG:
		return renderSVG(opts.Path, v)
	case FormatPNG:
		return renderPNG(opts.Path, v)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

func snapshotFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		default:
			format = FormatSVG
			if path != "" && filepath.Ext(path) == "" {
				path += ".svg"
			}
		}
	}
	if format != FormatSVG && format != FormatPNG {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- view computation ------------------------------------------------------

type viewElement struct {
	scene.Element
	Name    string
	Classes string
	Depth   int
	Focus   bool
}

type viewResult struct {
	Elements []viewElement
	Width    int
	Height   int
	Title    string
	Theme    string
}

func buildView(opts SnapshotOptions) viewResult {
	h := opts.Hierarchy
	if opts.Diameter <= 0 {
		opts.Diameter = 960
	}
	if opts.Width <= 0 {
		opts.Width = int(opts.Diameter)
	}
	if opts.Height <= 0 {
		opts.Height = int(opts.Diameter)
	}
	t := opts.Transform
	if t.K == 0 {
		t = viewport.HomeTransform(opts.Diameter)
	}
	if !h.Valid(opts.Focus) {
		opts.Focus = model.RootID
	}

	vb := viewport.NewViewBox(opts.Diameter, float64(opts.Width), float64(opts.Height))
	sc := scene.Build(h, t, vb)

	out := viewResult{
		Elements: make([]viewElement, 0, len(sc.Elements)),
		Width:    opts.Width,
		Height:   opts.Height,
		Title:    opts.Title,
		Theme:    h.ThemeClass(opts.Focus),
	}
	for _, e := range sc.Elements {
		n := &h.Nodes[e.Node]
		classes := h.Classes(e.Node)
		if e.Type == scene.OverlayElement {
			classes = "node node--leaf"
		}
		out.Elements = append(out.Elements, viewElement{
			Element: e,
			Name:    n.Name(),
			Classes: classes,
			Depth:   n.Depth,
			Focus:   e.Node == opts.Focus && e.Type == scene.CircleElement,
		})
	}
	return out
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xfc, 0xfc, 0xfc, 0xff}
	colorDepthLo  = color.RGBA{0xa8, 0xf0, 0xd0, 0xff}
	colorDepthHi  = color.RGBA{0x47, 0x57, 0x8a, 0xff}
	colorLeaf     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorFocus    = color.RGBA{0xe4, 0x57, 0x2e, 0xff}
	colorImage    = color.RGBA{0xdd, 0xe3, 0xea, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
)

// maxShadedDepth is the depth that reaches colorDepthHi.
const maxShadedDepth = 5

// fillFor shades parents from light to dark by depth; leaves are white.
func fillFor(e viewElement) color.RGBA {
	if e.Kind == model.KindLeaf {
		return colorLeaf
	}
	t := math.Min(float64(e.Depth)/maxShadedDepth, 1)
	lerp := func(a, b uint8) uint8 { return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t)) }
	return color.RGBA{
		R: lerp(colorDepthLo.R, colorDepthHi.R),
		G: lerp(colorDepthLo.G, colorDepthHi.G),
		B: lerp(colorDepthLo.B, colorDepthHi.B),
		A: 0xff,
	}
}

// labelFits returns the label truncated to the overlay width, measured in
// 7px monospace glyphs, or "" when nothing readable fits.
func labelFits(name string, width float64) string {
	chars := int(width / 7)
	if chars < 2 {
		return ""
	}
	return truncate(name, chars)
}

func renderPNG(path string, v viewResult) error {
	dc := gg.NewContext(v.Width, v.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, e := range v.Elements {
		switch e.Type {
		case scene.CircleElement:
			drawCircle(dc, e)
		case scene.OverlayElement:
			drawOverlay(dc, e)
		}
	}

	if v.Title != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(v.Title, 12, 16, 0, 0.5)
	}
	return dc.SavePNG(path)
}

func drawCircle(dc *gg.Context, e viewElement) {
	if e.Radius < 0.5 {
		return
	}
	dc.SetColor(fillFor(e))
	dc.DrawCircle(e.Center.X, e.Center.Y, e.Radius)
	dc.Fill()

	stroke, width := colorStroke, 0.6
	if e.Focus {
		stroke, width = colorFocus, 2.5
	}
	dc.SetColor(stroke)
	dc.SetLineWidth(width)
	dc.DrawCircle(e.Center.X, e.Center.Y, e.Radius)
	dc.Stroke()
}

func drawOverlay(dc *gg.Context, e viewElement) {
	w := e.Box.Width()
	if w < 4 {
		return
	}
	img := w / 2
	dc.SetColor(colorImage)
	dc.DrawRoundedRectangle(e.Center.X-img/2, e.Center.Y-img/2-6, img, img, 3)
	dc.Fill()

	if label := labelFits(e.Name, w*0.9); label != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(label, e.Center.X, e.Center.Y+img/2+4, 0.5, 0.5)
	}
}

func renderSVG(path string, v viewResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, v)
}

func renderSVGToWriter(w io.Writer, v viewResult) error {
	canvas := svg.New(w)
	if v.Theme != "" {
		canvas.Start(v.Width, v.Height, fmt.Sprintf(`class="%s"`, v.Theme))
	} else {
		canvas.Start(v.Width, v.Height)
	}
	canvas.Rect(0, 0, v.Width, v.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, e := range v.Elements {
		cx, cy := int(math.Round(e.Center.X)), int(math.Round(e.Center.Y))
		switch e.Type {
		case scene.CircleElement:
			r := int(math.Round(e.Radius))
			if r < 1 {
				continue
			}
			stroke, width := colorStroke, "0.6"
			if e.Focus {
				stroke, width = colorFocus, "2.5"
			}
			canvas.Circle(cx, cy, r,
				fmt.Sprintf(`class="%s"`, e.Classes),
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", css(fillFor(e)), css(stroke), width))
		case scene.OverlayElement:
			bw := e.Box.Width()
			if bw < 4 {
				continue
			}
			img := int(bw / 2)
			canvas.Group(fmt.Sprintf(`class="%s"`, e.Classes))
			canvas.Roundrect(cx-img/2, cy-img/2-6, img, img, 3, 3, fmt.Sprintf("fill:%s", css(colorImage)))
			if label := labelFits(e.Name, bw*0.9); label != "" {
				canvas.Text(cx, cy+img/2+8, label,
					fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))
			}
			canvas.Gend()
		}
	}

	if v.Title != "" {
		canvas.Text(12, 20, v.Title, fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))
	}
	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
