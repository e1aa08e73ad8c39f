package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the explorer responds to.
type KeyMap struct {
	Up       key.Binding
	Reset    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	PanLeft  key.Binding
	PanRight key.Binding
	PanUp    key.Binding
	PanDown  key.Binding
	Bookmark key.Binding
	Mark     key.Binding
	Copy     key.Binding
	Labels   key.Binding
	Find     key.Binding
	Quit     key.Binding

	// Active while the find prompt is open
	Accept key.Binding
	Cancel key.Binding
	Next   key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("esc", "backspace", "u"), key.WithHelp("esc", "up")),
		Reset:    key.NewBinding(key.WithKeys("r", "home"), key.WithHelp("r", "reset")),
		ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		PanLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←↑↓→", "pan")),
		PanRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "pan right")),
		PanUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "pan up")),
		PanDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "pan down")),
		Bookmark: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "bookmark")),
		Mark:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
		Labels:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "labels")),
		Find:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "zoom")),
		Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
	}
}

// FooterBindings lists the bindings shown in the footer, in display order.
// Directional twins are folded into one entry.
func (k KeyMap) FooterBindings() []key.Binding {
	return []key.Binding{k.Up, k.Reset, k.ZoomIn, k.PanLeft, k.Find, k.Bookmark, k.Mark, k.Copy, k.Labels, k.Quit}
}

// FindBindings lists the bindings shown while the find prompt is open.
func (k KeyMap) FindBindings() []key.Binding {
	return []key.Binding{k.Accept, k.Next, k.Cancel}
}

// renderHints joins binding help as styled "key desc" pairs.
func renderHints(t Theme, bindings []key.Binding) string {
	space := t.Footer.Render(" ")
	sep := t.Footer.Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, t.Key.Render(h.Key)+space+t.Desc.Render(h.Desc))
	}
	return strings.Join(parts, sep)
}

// renderFooter draws the key hints after the status message.
func renderFooter(t Theme, k KeyMap, width int, status string, statusErr bool) string {
	sep := t.Footer.Render("  ")
	line := renderHints(t, k.FooterBindings())
	if status != "" {
		st := t.Desc
		if statusErr {
			st = t.Error
		}
		line = st.Render(status) + sep + line
	}
	return renderBar(t.Footer, width, line)
}
