// Package ui is the terminal explorer: a bubbletea program that draws the
// packed circles cell by cell and turns mouse and key input into focus
// changes on a focus.Controller.
package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/config"
	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/focus"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/search"
	"github.com/vanderheijden86/packzoom/pkg/watcher"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Pan step for arrow keys, in screen units.
const keyPanStep = 8.0

// maxFindResults bounds the matches cycled with tab.
const maxFindResults = 20

// FileChangedMsg is sent when the watched dataset changes on disk
type FileChangedMsg struct{}

// DatasetReloadedMsg carries the result of re-reading the dataset.
type DatasetReloadedMsg struct {
	Hierarchy *model.Hierarchy
	Err       error
}

// frameMsg drives an in-flight zoom transition.
type frameMsg time.Time

// ReloadFunc loads and packs the dataset again.
type ReloadFunc func() (*model.Hierarchy, error)

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadCmd runs reload off the event loop.
func ReloadCmd(reload ReloadFunc) tea.Cmd {
	return func() tea.Msg {
		h, err := reload()
		return DatasetReloadedMsg{Hierarchy: h, Err: err}
	}
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// dragState tracks a left-button gesture from press to release.
type dragState struct {
	active bool
	moved  bool
	x, y   int
}

// Model is the main Bubble Tea model for the explorer
type Model struct {
	ctrl  *focus.Controller
	opts  focus.Options
	theme Theme
	keys  KeyMap

	cfg       config.Config
	title     string
	labels    bool
	frameRate int
	wheelStep float64

	width  int
	height int
	drag   dragState

	markPending bool
	status      string
	statusErr   bool

	// Find prompt
	finding  bool
	find     textinput.Model
	index    *search.Index
	matches  []search.Result
	matchIdx int

	watcher *watcher.Watcher
	reload  ReloadFunc
	persist func(config.Config) error

	now func() time.Time
}

// NewModel builds the explorer over a packed hierarchy.
func NewModel(h *model.Hierarchy, cfg config.Config) Model {
	opts := focus.Options{
		Diameter: cfg.Layout.Diameter,
		Duration: cfg.Zoom.Duration,
		Extent:   cfg.Zoom.Extent,
	}
	width, height := 80, 24
	m := Model{
		opts:      opts,
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		keys:      DefaultKeyMap(),
		cfg:       cfg,
		title:     h.Root().Name(),
		labels:    cfg.UI.Labels,
		frameRate: cfg.UI.FrameRate,
		wheelStep: cfg.Zoom.Step,
		width:     width,
		height:    height,
		now:       time.Now,
	}
	if m.frameRate <= 0 {
		m.frameRate = 60
	}
	if m.wheelStep <= 1 {
		m.wheelStep = 1.25
	}
	m.find = textinput.New()
	m.find.Prompt = "/"
	m.find.Placeholder = "name, slug or path"
	m.find.CharLimit = 128
	m.index = search.NewIndex(h)
	cw, ch := ScreenSize(m.canvasSize())
	m.ctrl = focus.NewController(h, cw, ch, opts)
	return m
}

// WithTheme swaps the theme (used when a renderer is bound to a session).
func (m Model) WithTheme(t Theme) Model {
	m.theme = t
	return m
}

// WithWatcher re-reads the dataset through reload whenever w fires.
func (m Model) WithWatcher(w *watcher.Watcher, reload ReloadFunc) Model {
	m.watcher = w
	m.reload = reload
	return m
}

// WithPersist saves the config whenever a bookmark is marked.
func (m Model) WithPersist(save func(config.Config) error) Model {
	m.persist = save
	return m
}

// WithClock replaces the wall clock.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

// Controller exposes the focus controller.
func (m Model) Controller() *focus.Controller { return m.ctrl }

// Config returns the config including bookmarks marked this session.
func (m Model) Config() config.Config { return m.cfg }

// Status returns the footer message.
func (m Model) Status() string { return m.status }

func (m Model) canvasSize() (int, int) {
	return max(0, m.width), max(0, m.height-headerRows-footerRows)
}

func (m Model) frameInterval() time.Duration {
	return time.Second / time.Duration(m.frameRate)
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil && m.reload != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	wasAnimating := m.ctrl.Animating()
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctrl.Resize(ScreenSize(m.canvasSize()))

	case frameMsg:
		if m.ctrl.Step(time.Time(msg)) {
			cmds = append(cmds, frameCmd(m.frameInterval()))
		}
		return m, tea.Batch(cmds...)

	case FileChangedMsg:
		if m.watcher == nil || m.reload == nil {
			return m, nil
		}
		debug.Log("dataset changed, reloading")
		cmds = append(cmds, ReloadCmd(m.reload), WatchFileCmd(m.watcher))

	case DatasetReloadedMsg:
		m = m.applyReload(msg)

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if !wasAnimating && m.ctrl.Animating() {
		cmds = append(cmds, frameCmd(m.frameInterval()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) applyReload(msg DatasetReloadedMsg) Model {
	if msg.Err != nil {
		m.setError(fmt.Sprintf("reload failed: %v", msg.Err))
		return m
	}
	if msg.Hierarchy == nil {
		return m
	}
	path := strings.Join(m.ctrl.Hierarchy().Path(m.ctrl.Focus()), "/")
	cw, ch := ScreenSize(m.canvasSize())
	m.ctrl = focus.NewController(msg.Hierarchy, cw, ch, m.opts)
	if id := msg.Hierarchy.Find(path); id != model.NoNode {
		m.ctrl.Jump(id)
	}
	m.title = msg.Hierarchy.Root().Name()
	m.index = search.NewIndex(msg.Hierarchy)
	m.matches = m.index.Search(m.find.Value(), maxFindResults)
	m.matchIdx = 0
	m.setStatus(fmt.Sprintf("reloaded %d nodes", msg.Hierarchy.Len()))
	return m
}

// toScreen maps a terminal cell to a screen point on the canvas.
func (m Model) toScreen(x, y int) (float64, float64, bool) {
	cols, rows := m.canvasSize()
	row := y - headerRows
	if x < 0 || x >= cols || row < 0 || row >= rows {
		return 0, 0, false
	}
	p := CellCenter(x, row)
	return p.X, p.Y, true
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		x, y, ok := m.toScreen(msg.X, msg.Y)
		if !ok {
			return m
		}
		f := m.wheelStep
		if msg.Button == tea.MouseButtonWheelDown {
			f = 1 / f
		}
		m.ctrl.ZoomAt(vec(x, y), f)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if _, _, ok := m.toScreen(msg.X, msg.Y); !ok {
			return m
		}
		m.drag = dragState{active: true, x: msg.X, y: msg.Y}

	case msg.Action == tea.MouseActionMotion && m.drag.active:
		dx, dy := msg.X-m.drag.x, msg.Y-m.drag.y
		if dx == 0 && dy == 0 {
			return m
		}
		m.ctrl.Pan(float64(dx)*CellWidth, float64(dy)*CellHeight)
		m.drag.x, m.drag.y = msg.X, msg.Y
		m.drag.moved = true

	case msg.Action == tea.MouseActionRelease:
		d := m.drag
		m.drag = dragState{}
		if !d.active || d.moved {
			return m
		}
		x, y, ok := m.toScreen(msg.X, msg.Y)
		if !ok {
			return m
		}
		if id, ok := m.ctrl.Click(vec(x, y), m.now()); ok {
			m.setStatus(m.describe(id))
		}
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.finding {
		return m.handleFindKey(msg)
	}
	if m.markPending {
		m.markPending = false
		if key.Matches(msg, m.keys.Bookmark) {
			return m.markBookmark(msg.String()), nil
		}
		m.setStatus("mark cancelled")
		return m, nil
	}

	cw, ch := ScreenSize(m.canvasSize())
	center := vec(cw/2, ch/2)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		cur := m.ctrl.Focus()
		if p := m.ctrl.Hierarchy().Parent(cur); p != model.NoNode {
			m.ctrl.ZoomTo(p, m.now())
			m.setStatus(m.describe(p))
		}
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset(m.now())
		m.setStatus(m.describe(model.RootID))
	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.ZoomAt(center, m.wheelStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.ZoomAt(center, 1/m.wheelStep)
	case key.Matches(msg, m.keys.PanLeft):
		m.ctrl.Pan(keyPanStep*CellWidth, 0)
	case key.Matches(msg, m.keys.PanRight):
		m.ctrl.Pan(-keyPanStep*CellWidth, 0)
	case key.Matches(msg, m.keys.PanUp):
		m.ctrl.Pan(0, keyPanStep/2*CellHeight)
	case key.Matches(msg, m.keys.PanDown):
		m.ctrl.Pan(0, -keyPanStep/2*CellHeight)
	case key.Matches(msg, m.keys.Bookmark):
		m.jumpBookmark(msg.String())
	case key.Matches(msg, m.keys.Mark):
		m.markPending = true
		m.setStatus("mark: press 1-9")
	case key.Matches(msg, m.keys.Copy):
		path := m.focusPath()
		if err := clipboard.WriteAll(path); err != nil {
			m.setError(fmt.Sprintf("clipboard: %v", err))
		} else {
			m.setStatus("copied " + path)
		}
	case key.Matches(msg, m.keys.Labels):
		m.labels = !m.labels
	case key.Matches(msg, m.keys.Find):
		m.finding = true
		m.find.SetValue("")
		m.matches, m.matchIdx = nil, 0
		cmd := m.find.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleFindKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeFind()
		return m, nil
	case key.Matches(msg, m.keys.Accept):
		m.closeFind()
		if len(m.matches) == 0 {
			m.setStatus(fmt.Sprintf("no match for %q", m.find.Value()))
			return m, nil
		}
		id := m.matches[m.matchIdx].Node
		m.ctrl.ZoomTo(id, m.now())
		m.setStatus(m.describe(id))
		return m, nil
	case key.Matches(msg, m.keys.Next):
		if len(m.matches) > 0 {
			m.matchIdx = (m.matchIdx + 1) % len(m.matches)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.find, cmd = m.find.Update(msg)
	m.matches = m.index.Search(m.find.Value(), maxFindResults)
	m.matchIdx = 0
	return m, cmd
}

func (m *Model) closeFind() {
	m.finding = false
	m.find.Blur()
}

// Finding reports whether the find prompt is open.
func (m Model) Finding() bool { return m.finding }

// Matches returns the current find results, best first.
func (m Model) Matches() []search.Result { return m.matches }

func (m Model) renderFindBar() string {
	line := m.find.View()
	switch {
	case len(m.matches) > 0:
		r := m.matches[m.matchIdx]
		line += m.theme.Footer.Render("  → ") + m.theme.Key.Render(breadcrumb(m.title, m.ctrl.Hierarchy().Path(r.Node))) +
			m.theme.Desc.Render(fmt.Sprintf(" (%d/%d)", m.matchIdx+1, len(m.matches)))
	case m.find.Value() != "":
		line += m.theme.Error.Render("  no match")
	}
	line += m.theme.Footer.Render("  ") + renderHints(m.theme, m.keys.FindBindings())
	return renderBar(m.theme.Footer, m.width, line)
}

func (m *Model) jumpBookmark(s string) {
	n, _ := strconv.Atoi(s)
	path, ok := m.cfg.Bookmark(n)
	if !ok {
		m.setStatus(fmt.Sprintf("bookmark %d is empty", n))
		return
	}
	id := m.ctrl.Hierarchy().Find(path)
	if id == model.NoNode {
		m.setError(fmt.Sprintf("bookmark %d: %q not found", n, path))
		return
	}
	m.ctrl.ZoomTo(id, m.now())
	m.setStatus(m.describe(id))
}

func (m Model) markBookmark(s string) Model {
	n, _ := strconv.Atoi(s)
	path := m.focusPath()
	m.cfg.SetBookmark(n, path)
	m.setStatus(fmt.Sprintf("bookmark %d → %s", n, breadcrumb(m.title, m.ctrl.Hierarchy().Path(m.ctrl.Focus()))))
	if m.persist != nil {
		if err := m.persist(m.cfg); err != nil {
			m.setError(fmt.Sprintf("saving bookmark: %v", err))
		}
	}
	return m
}

func (m Model) focusPath() string {
	return strings.Join(m.ctrl.Hierarchy().Path(m.ctrl.Focus()), "/")
}

func (m Model) describe(id model.NodeID) string {
	h := m.ctrl.Hierarchy()
	n := h.Node(id)
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%s · %s · %g", breadcrumb(m.title, h.Path(id)), n.Kind(), n.Value)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
	debug.Log("ui: %s", s)
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	h := m.ctrl.Hierarchy()
	cols, rows := m.canvasSize()

	header := m.theme.Header.Background(m.theme.AccentFor(m.ctrl.Theme()))
	crumb := " " + breadcrumb(m.title, h.Path(m.ctrl.Focus()))

	parts := []string{renderBar(header, m.width, crumb)}
	if rows > 0 {
		canvas := Rasterize(h, m.ctrl.Scene(), m.ctrl.Focus(), cols, rows, m.labels)
		parts = append(parts, canvas.Render(h, m.theme))
	}
	if m.finding {
		parts = append(parts, m.renderFindBar())
	} else {
		parts = append(parts, renderFooter(m.theme, m.keys, m.width, m.status, m.statusErr))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
