package ui

import (
	"hash/fnv"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds every style the explorer draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Focus   lipgloss.AdaptiveColor

	// Circle fills, indexed by depth (clamped to the last entry)
	Depths []lipgloss.AdaptiveColor
	Leaf   lipgloss.AdaptiveColor
	Empty  lipgloss.AdaptiveColor

	// Top-level accents; a branch's accent tints the header while it is focused
	Accents []lipgloss.AdaptiveColor

	// Styles
	Base   lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style
	Key    lipgloss.Style
	Desc   lipgloss.Style
	Error  lipgloss.Style
	Label  lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Subtext: lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Muted:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Focus:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Depths: []lipgloss.AdaptiveColor{
			{Light: "#F5F5F5", Dark: "#1E1F29"},
			{Light: "#D4EDDA", Dark: "#1A3D2A"},
			{Light: "#D1ECF1", Dark: "#1A3344"},
			{Light: "#E8DDFF", Dark: "#2A1A44"},
			{Light: "#FFE8CC", Dark: "#3D2A1A"},
			{Light: "#E2E3E5", Dark: "#363949"},
		},
		Leaf:  lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#44475A"},
		Empty: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"},

		Accents: []lipgloss.AdaptiveColor{
			{Light: "#007700", Dark: "#50FA7B"},
			{Light: "#006080", Dark: "#8BE9FD"},
			{Light: "#B06800", Dark: "#FFB86C"},
			{Light: "#0066CC", Dark: "#6699FF"},
			{Light: "#008080", Dark: "#00CED1"},
			{Light: "#6B47D9", Dark: "#BD93F9"},
		},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true)

	t.Footer = r.NewStyle().Background(ColorBgDark)
	t.Key = r.NewStyle().Foreground(t.Primary).Background(ColorBgDark).Bold(true)
	t.Desc = r.NewStyle().Foreground(t.Muted).Background(ColorBgDark)
	t.Error = r.NewStyle().Foreground(ColorDanger).Background(ColorBgDark).Bold(true)
	t.Label = r.NewStyle().Foreground(ThemeFg("#F8F8F2")).Bold(true)

	return t
}

// DepthColor returns the fill for a parent at depth d.
func (t Theme) DepthColor(d int) lipgloss.AdaptiveColor {
	if len(t.Depths) == 0 {
		return t.Empty
	}
	if d < 0 {
		d = 0
	}
	if d >= len(t.Depths) {
		d = len(t.Depths) - 1
	}
	return t.Depths[d]
}

// AccentFor picks a stable accent for a top-level class name ("" for the
// root uses Primary).
func (t Theme) AccentFor(class string) lipgloss.AdaptiveColor {
	if class == "" || len(t.Accents) == 0 {
		return t.Primary
	}
	h := fnv.New32a()
	h.Write([]byte(class))
	return t.Accents[int(h.Sum32()%uint32(len(t.Accents)))]
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
