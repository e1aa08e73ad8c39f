package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgDark = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1E1F29"}
	ColorDanger = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// Cell geometry: one terminal cell covers one screen unit across and two
// down, so circles drawn cell by cell come out round.
const (
	CellWidth  = 1.0
	CellHeight = 2.0
)

// Chrome rows around the circle canvas.
const (
	headerRows = 1
	footerRows = 1
)

// ══════════════════════════════════════════════════════════════════════════════
// BARS
// ══════════════════════════════════════════════════════════════════════════════

// renderBar pads or truncates text to exactly width cells and styles it.
// text may already carry styling.
func renderBar(style lipgloss.Style, width int, text string) string {
	if width <= 0 {
		return ""
	}
	line := strings.ReplaceAll(text, "\n", " ")
	line = ansi.Truncate(line, width, "")
	if w := ansi.StringWidth(line); w < width {
		line += style.Render(strings.Repeat(" ", width-w))
	}
	return style.Width(width).MaxWidth(width).Render(line)
}
