package ui_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/packzoom/pkg/config"
	"github.com/vanderheijden86/packzoom/pkg/layout"
	"github.com/vanderheijden86/packzoom/pkg/model"
	"github.com/vanderheijden86/packzoom/pkg/testutil"
	"github.com/vanderheijden86/packzoom/pkg/ui"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func packedSample(t *testing.T) *model.Hierarchy {
	t.Helper()
	h, err := model.Build(testutil.Sample())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := layout.Pack(h, layout.DefaultOptions()); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	return h
}

// newModel returns a 120x50 explorer: a 120x48 canvas covering 120x96
// screen units, so the view box fits at one tenth.
func newModel(t *testing.T, cfg config.Config) ui.Model {
	t.Helper()
	m := ui.NewModel(packedSample(t), cfg).WithClock(func() time.Time { return t0 })
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 50})
	return m
}

func update(m ui.Model, msg tea.Msg) ui.Model {
	next, _ := m.Update(msg)
	return next.(ui.Model)
}

func find(t *testing.T, m ui.Model, path string) model.NodeID {
	t.Helper()
	id := m.Controller().Hierarchy().Find(path)
	if id == model.NoNode {
		t.Fatalf("node %q not found", path)
	}
	return id
}

// cellOf returns the terminal cell over id's circle center.
func cellOf(t *testing.T, m ui.Model, id model.NodeID) (int, int) {
	t.Helper()
	e, ok := m.Controller().Scene().Circle(id)
	if !ok {
		t.Fatalf("no circle for %v", id)
	}
	return int(e.Center.X / ui.CellWidth), int(e.Center.Y/ui.CellHeight) + 1
}

func click(m ui.Model, x, y int) (ui.Model, tea.Cmd) {
	m = update(m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	return next.(ui.Model), cmd
}

func settle(m ui.Model) {
	m.Controller().Step(t0.Add(time.Second))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_StartsAtRoot(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	if got := m.Controller().Focus(); got != model.RootID {
		t.Fatalf("focus = %v, want root", got)
	}
	if m.Controller().Animating() {
		t.Fatal("should not animate before any input")
	}
	if cmd := m.Init(); cmd != nil {
		t.Fatal("Init without a watcher should return nil")
	}
}

func TestMouse_ClickScenario(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	A := find(t, m, "A")
	a2 := find(t, m, "A/a2")

	// a2's center from the root: only A is eligible there.
	x, y := cellOf(t, m, a2)
	m, cmd := click(m, x, y)
	if got := m.Controller().Focus(); got != A {
		t.Fatalf("focus after first click = %v, want A (%v)", got, A)
	}
	if cmd == nil {
		t.Fatal("click should schedule animation frames")
	}
	if !strings.Contains(m.Status(), "A") {
		t.Errorf("status = %q, want the new focus", m.Status())
	}
	settle(m)

	x, y = cellOf(t, m, a2)
	m, _ = click(m, x, y)
	if got := m.Controller().Focus(); got != a2 {
		t.Fatalf("focus after second click = %v, want a2 (%v)", got, a2)
	}
	settle(m)

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Controller().Focus(); got != A {
		t.Fatalf("focus after esc = %v, want A", got)
	}
	m = update(m, runes("r"))
	if got := m.Controller().Focus(); got != model.RootID {
		t.Fatalf("focus after reset = %v, want root", got)
	}
}

func TestMouse_ClickOutsideIsNoop(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	before := m.Controller().Transform()
	m, _ = click(m, 0, 1)
	if got := m.Controller().Focus(); got != model.RootID {
		t.Fatalf("focus = %v, want root", got)
	}
	if m.Controller().Animating() || m.Controller().Transform() != before {
		t.Fatal("empty click should leave the view alone")
	}
}

func TestMouse_ChromeIgnored(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	x, _ := cellOf(t, m, find(t, m, "A"))
	m, _ = click(m, x, 0)
	m, _ = click(m, x, 49)
	if got := m.Controller().Focus(); got != model.RootID {
		t.Fatalf("clicks on header or footer moved focus to %v", got)
	}
}

func TestMouse_DragPans(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	before := m.Controller().Transform()

	m = update(m, tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(m, tea.MouseMsg{X: 42, Y: 21, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = update(m, tea.MouseMsg{X: 42, Y: 21, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	after := m.Controller().Transform()
	// 2 cells across is 2 screen units, 1 row down is 2; at a 0.1 fit both
	// are 20 view-box units.
	if math.Abs(after.X-before.X-20) > 1e-9 || math.Abs(after.Y-before.Y-20) > 1e-9 {
		t.Fatalf("pan moved %v -> %v, want +20,+20", before, after)
	}
	if after.K != before.K {
		t.Fatalf("pan changed scale to %v", after.K)
	}
	if m.Controller().Animating() {
		t.Fatal("a drag must not start a transition")
	}
}

func TestMouse_WheelZooms(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, tea.MouseMsg{X: 60, Y: 25, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if k := m.Controller().Transform().K; math.Abs(k-1.25) > 1e-9 {
		t.Fatalf("K after wheel up = %v, want 1.25", k)
	}
	m = update(m, tea.MouseMsg{X: 60, Y: 25, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	m = update(m, tea.MouseMsg{X: 60, Y: 25, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if k := m.Controller().Transform().K; k != 1 {
		t.Fatalf("K should clamp at the extent minimum, got %v", k)
	}
}

func TestKeys_ZoomAndPan(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, runes("+"))
	if k := m.Controller().Transform().K; math.Abs(k-1.25) > 1e-9 {
		t.Fatalf("K after + = %v", k)
	}
	before := m.Controller().Transform()
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Controller().Transform().X <= before.X {
		t.Fatal("left should move the content right")
	}
	m = update(m, runes("-"))
	if k := m.Controller().Transform().K; math.Abs(k-1) > 1e-9 {
		t.Fatalf("K after - = %v", k)
	}
}

func TestKeys_UpAtRootIsNoop(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Controller().Focus() != model.RootID || m.Controller().Animating() {
		t.Fatal("esc at the root should do nothing")
	}
}

func TestKeys_Quit(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestKeys_Bookmarks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SetBookmark(1, "A/a2")
	cfg.SetBookmark(3, "nope")
	m := newModel(t, cfg)

	m = update(m, runes("1"))
	if got := m.Controller().Focus(); got != find(t, m, "A/a2") {
		t.Fatalf("bookmark 1 focused %v", got)
	}
	m = update(m, runes("2"))
	if !strings.Contains(m.Status(), "empty") {
		t.Errorf("status = %q, want empty bookmark notice", m.Status())
	}
	m = update(m, runes("3"))
	if !strings.Contains(m.Status(), "not found") {
		t.Errorf("status = %q, want not-found notice", m.Status())
	}
}

func TestKeys_MarkBookmark(t *testing.T) {
	var saved config.Config
	calls := 0
	m := newModel(t, config.DefaultConfig()).WithPersist(func(c config.Config) error {
		saved = c
		calls++
		return nil
	})
	m.Controller().Jump(find(t, m, "A"))

	m = update(m, runes("m"))
	m = update(m, runes("4"))
	if p, ok := m.Config().Bookmark(4); !ok || p != "A" {
		t.Fatalf("bookmark 4 = %q, %v", p, ok)
	}
	if calls != 1 {
		t.Fatalf("persist called %d times", calls)
	}
	if p, _ := saved.Bookmark(4); p != "A" {
		t.Fatalf("persisted bookmark 4 = %q", p)
	}

	m = update(m, runes("m"))
	m = update(m, runes("x"))
	if got := len(m.Config().Bookmarks); got != 1 {
		t.Fatalf("a non-digit should cancel marking, have %d bookmarks", got)
	}
	if !strings.Contains(m.Status(), "cancel") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestKeys_MarkPersistError(t *testing.T) {
	m := newModel(t, config.DefaultConfig()).WithPersist(func(config.Config) error {
		return errors.New("disk full")
	})
	m = update(m, runes("m"))
	m = update(m, runes("1"))
	if !strings.Contains(m.Status(), "disk full") {
		t.Fatalf("status = %q", m.Status())
	}
}

func TestDatasetReloaded_KeepsFocus(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m.Controller().Jump(find(t, m, "A/a1"))

	m = update(m, ui.DatasetReloadedMsg{Hierarchy: packedSample(t)})
	h := m.Controller().Hierarchy()
	if got := m.Controller().Focus(); got != h.Find("A/a1") {
		t.Fatalf("focus after reload = %v", got)
	}
	if !strings.Contains(m.Status(), "reloaded 5 nodes") {
		t.Errorf("status = %q", m.Status())
	}

	m = update(m, ui.DatasetReloadedMsg{Err: errors.New("boom")})
	if !strings.Contains(m.Status(), "boom") {
		t.Errorf("status = %q", m.Status())
	}
	if m.Controller().Hierarchy() != h {
		t.Fatal("a failed reload must keep the old hierarchy")
	}
}

func TestFileChanged_WithoutWatcher(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	_, cmd := m.Update(ui.FileChangedMsg{})
	if cmd != nil {
		t.Fatal("no watcher, no reload")
	}
}

func TestView_Layout(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	view := m.View()
	if got := strings.Count(view, "\n") + 1; got != 50 {
		t.Fatalf("view has %d lines, want 50", got)
	}
	lines := strings.Split(view, "\n")
	if !strings.Contains(lines[0], "root") {
		t.Errorf("header %q missing breadcrumb", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "quit") {
		t.Errorf("footer %q missing key hints", lines[len(lines)-1])
	}

	m.Controller().Jump(find(t, m, "A/a2"))
	if !strings.Contains(strings.Split(m.View(), "\n")[0], "a2") {
		t.Error("header should follow the focus")
	}
}

func TestView_Tiny(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, tea.WindowSizeMsg{Width: 10, Height: 2})
	if got := strings.Count(m.View(), "\n") + 1; got != 2 {
		t.Fatalf("tiny view has %d lines, want header and footer only", got)
	}
	m = update(m, tea.WindowSizeMsg{Width: 0, Height: 0})
	if m.View() != "" {
		t.Fatal("zero-size view should be empty")
	}
}

func TestFind_ZoomsToMatch(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, runes("/"))
	if !m.Finding() {
		t.Fatal("/ should open the find prompt")
	}
	m = update(m, runes("a"))
	m = update(m, runes("2"))
	a2 := find(t, m, "A/a2")
	if got := m.Matches(); len(got) != 1 || got[0].Node != a2 {
		t.Fatalf("matches = %+v", got)
	}
	if !strings.Contains(strings.Split(m.View(), "\n")[49], "a2") {
		t.Error("find bar should show the selected match")
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Finding() {
		t.Fatal("enter should close the prompt")
	}
	if got := m.Controller().Focus(); got != a2 {
		t.Fatalf("focus = %v, want a2", got)
	}
}

func TestFind_TypingDoesNotTriggerKeys(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, runes("/"))
	m = update(m, runes("q"))
	if !m.Finding() {
		t.Fatal("q inside the prompt should be typed, not handled")
	}
	if got := len(m.Matches()); got != 0 {
		t.Fatalf("q matched %d nodes", got)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Finding() {
		t.Fatal("esc should close the prompt")
	}
	if m.Controller().Focus() != model.RootID {
		t.Fatal("cancelled find must not move focus")
	}
}

func TestFind_NoMatch(t *testing.T) {
	m := newModel(t, config.DefaultConfig())
	m = update(m, runes("/"))
	m = update(m, runes("zzz"))
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.Status(), "no match") {
		t.Fatalf("status = %q", m.Status())
	}
}
