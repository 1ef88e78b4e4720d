package ui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/config"
	"github.com/vanderheijden86/planetarium/pkg/crew"
	"github.com/vanderheijden86/planetarium/pkg/store"
)

// newTestModel builds a sized model over a store with two planets: p1 at
// the origin, p2 east of it.
func newTestModel(t *testing.T) (Model, *store.Store) {
	t.Helper()
	s := store.New()
	for id, pos := range map[string]r3.Vec{
		"p1": {},
		"p2": {X: 8},
	} {
		if _, err := s.AddDivision(store.DivisionSpec{ID: id, Label: strings.ToUpper(id), Position: pos}); err != nil {
			t.Fatal(err)
		}
	}
	m := NewModel(s, config.DefaultConfig())
	m = apply(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, s
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return got
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// screenCell returns the terminal coordinates of a world position.
func screenCell(t *testing.T, m Model, pos r3.Vec) (int, int) {
	t.Helper()
	x, y, ok := m.proj.cell(pos)
	if !ok {
		t.Fatalf("position %+v off screen", pos)
	}
	return x, y + headerRows
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion}
}

func TestKeyTogglesConnectionMode(t *testing.T) {
	m, _ := newTestModel(t)

	m = apply(t, m, key("c"))
	if !m.Machine().ConnectionMode() {
		t.Fatal("c did not enter connection mode")
	}
	if !strings.Contains(m.View(), "CONNECT") {
		t.Error("header missing connection mode indicator")
	}

	m = apply(t, m, key("c"))
	if m.Machine().ConnectionMode() {
		t.Error("second c did not leave connection mode")
	}
}

func TestKeySetsConnectionType(t *testing.T) {
	m, _ := newTestModel(t)
	m = apply(t, m, key("2"))
	if got := m.Machine().ConnectionType(); got != "collaboration" {
		t.Errorf("type after 2: %s", got)
	}
	m = apply(t, m, key("3"))
	if got := m.Machine().ConnectionType(); got != "information" {
		t.Errorf("type after 3: %s", got)
	}
}

func TestMousePressSelects(t *testing.T) {
	m, _ := newTestModel(t)

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, press(x, y))
	if id, ok := m.Machine().SelectedID(); !ok || id != "p1" {
		t.Fatalf("selected %q, %v", id, ok)
	}

	// Clicking empty space clears the selection.
	m = apply(t, m, press(x, y-8))
	if _, ok := m.Machine().SelectedID(); ok {
		t.Error("empty-space click kept selection")
	}
}

func TestTwoClickConnection(t *testing.T) {
	m, s := newTestModel(t)
	m = apply(t, m, key("c"))

	x1, y1 := screenCell(t, m, r3.Vec{})
	x2, y2 := screenCell(t, m, r3.Vec{X: 8})
	m = apply(t, m, press(x1, y1))
	if src, ok := m.Machine().PendingSource(); !ok || src != "p1" {
		t.Fatalf("pending source %q, %v", src, ok)
	}
	m = apply(t, m, press(x2, y2))

	snap := s.Snapshot()
	if len(snap.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(snap.Connections))
	}
	conn := snap.Connections[0]
	if conn.SourceID != "p1" || conn.TargetID != "p2" || conn.Type != "hierarchy" {
		t.Errorf("unexpected connection %+v", conn)
	}
	if _, ok := m.Machine().PendingSource(); ok {
		t.Error("pending source survived creation")
	}
}

func TestDragCommitsPosition(t *testing.T) {
	m, s := newTestModel(t)
	m = apply(t, m, key("m"))

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, press(x, y))
	if id, ok := m.Machine().Dragging(); !ok || id != "p1" {
		t.Fatalf("drag did not start: %q, %v", id, ok)
	}

	m = apply(t, m, motion(x+10, y-3))
	div, _ := s.Division("p1")
	want := m.proj.world(x+10, y-3-headerRows, 0)
	if math.Abs(div.Position.X-want.X) > 1e-9 || math.Abs(div.Position.Y-want.Y) > 1e-9 {
		t.Errorf("position %+v, want %+v", div.Position, want)
	}
	if div.Position.Z != 0 {
		t.Errorf("drag changed depth: %v", div.Position.Z)
	}

	m = apply(t, m, tea.MouseMsg{X: x + 10, Y: y - 3, Action: tea.MouseActionRelease})
	if _, ok := m.Machine().Dragging(); ok {
		t.Error("release did not end drag")
	}
}

func TestDragRequiresMoveMode(t *testing.T) {
	m, s := newTestModel(t)

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, press(x, y))
	if _, ok := m.Machine().Dragging(); ok {
		t.Fatal("drag started without move mode")
	}
	// The press fell through to selection instead.
	if id, _ := m.Machine().SelectedID(); id != "p1" {
		t.Error("press without move mode should select")
	}
	m = apply(t, m, motion(x+5, y))
	if div, _ := s.Division("p1"); div.Position != (r3.Vec{}) {
		t.Errorf("motion without drag moved the planet: %+v", div.Position)
	}
}

func TestAddAndDeleteKeys(t *testing.T) {
	m, s := newTestModel(t)

	m = apply(t, m, key("a"))
	if divisions, _ := s.Counts(); divisions != 3 {
		t.Fatalf("a did not add a division: %d", divisions)
	}

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, press(x, y))
	m = apply(t, m, key("d"))
	if _, ok := s.Division("p1"); ok {
		t.Error("d did not remove the selected division")
	}
}

func TestRemoveSelectedConnections(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddConnection("p1", "p2", "hierarchy"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddConnection("p2", "p1", "information"); err != nil {
		t.Fatal(err)
	}

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, press(x, y))
	m = apply(t, m, key("x"))

	if _, connections := s.Counts(); connections != 0 {
		t.Errorf("x left %d connections", connections)
	}
	if _, ok := s.Division("p1"); !ok {
		t.Error("x removed the division itself")
	}
}

func TestHoverTooltip(t *testing.T) {
	m, s := newTestModel(t)

	x, y := screenCell(t, m, r3.Vec{})
	m = apply(t, m, motion(x, y))
	tip, ok := m.Machine().Hover()
	if !ok || tip.DivisionID != "p1" {
		t.Fatalf("hover %+v, %v", tip, ok)
	}
	if !strings.Contains(m.View(), "P1") {
		t.Error("tooltip line missing division label")
	}

	// Removing the division behind the hover degrades to no tooltip.
	s.RemoveDivision("p1")
	if _, ok := m.Machine().Hover(); ok {
		t.Error("hover survived division removal")
	}

	m = apply(t, m, motion(x, y-8))
	if _, ok := m.Machine().Hover(); ok {
		t.Error("hover survived leaving the planet")
	}
}

func TestLabelsToggle(t *testing.T) {
	m, s := newTestModel(t)
	m = apply(t, m, key("l"))
	if s.VisualSettings().ShowLabels {
		t.Error("l did not hide labels")
	}
	m = apply(t, m, key("l"))
	if !s.VisualSettings().ShowLabels {
		t.Error("second l did not restore labels")
	}
}

func TestOpacityKeysClamp(t *testing.T) {
	m, s := newTestModel(t)
	for range 5 {
		m = apply(t, m, key("+"))
	}
	if got := s.VisualSettings().ConnectionOpacity; got != 1.0 {
		t.Errorf("opacity after repeated +: %v", got)
	}
	for range 15 {
		m = apply(t, m, key("-"))
	}
	if got := s.VisualSettings().ConnectionOpacity; got != 0.0 {
		t.Errorf("opacity after repeated -: %v", got)
	}
}

func TestConfigChangedAppliesSettings(t *testing.T) {
	m, s := newTestModel(t)

	opacity := 0.4
	cfg := config.DefaultConfig()
	cfg.Visual.ConnectionOpacity = &opacity
	m = apply(t, m, ConfigChangedMsg{Config: cfg})
	if got := s.VisualSettings().ConnectionOpacity; got != 0.4 {
		t.Errorf("opacity after reload: %v", got)
	}

	// An invalid file value is rejected whole; the store keeps its state.
	bad := 1.7
	cfg.Visual.ConnectionOpacity = &bad
	m = apply(t, m, ConfigChangedMsg{Config: cfg})
	if got := s.VisualSettings().ConnectionOpacity; got != 0.4 {
		t.Errorf("invalid reload leaked into store: %v", got)
	}
	if !m.statusErr {
		t.Error("invalid reload should surface an error status")
	}
}

func TestCrewResultLinksDivisions(t *testing.T) {
	m, s := newTestModel(t)

	m = apply(t, m, crewResultMsg{result: crew.Optimization{
		SelectedAgentIDs: []string{"p1", "p2"},
		SuggestedTasks:   []crew.Task{{Title: "sync roadmaps"}},
	}})

	snap := s.Snapshot()
	if len(snap.Connections) != 1 {
		t.Fatalf("expected 1 crew link, got %d", len(snap.Connections))
	}
	if snap.Connections[0].Type != "collaboration" {
		t.Errorf("crew link type %s", snap.Connections[0].Type)
	}
}

func TestViewShowsCounts(t *testing.T) {
	m, s := newTestModel(t)
	if _, err := s.AddConnection("p1", "p2", "hierarchy"); err != nil {
		t.Fatal(err)
	}
	out := m.View()
	if !strings.Contains(out, "2 divisions") || !strings.Contains(out, "1 connections") {
		t.Errorf("header counts missing:\n%s", out)
	}
}
