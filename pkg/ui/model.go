// Package ui is the terminal front-end for pv: it projects the org space
// onto a cell canvas and translates key and mouse events into interaction
// machine calls. The ui only reads store snapshots and raises events; all
// graph semantics live in pkg/store and pkg/interaction.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/config"
	"github.com/vanderheijden86/planetarium/pkg/crew"
	"github.com/vanderheijden86/planetarium/pkg/debug"
	"github.com/vanderheijden86/planetarium/pkg/export"
	"github.com/vanderheijden86/planetarium/pkg/interaction"
	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/scene"
	"github.com/vanderheijden86/planetarium/pkg/store"
)

// Rows reserved around the canvas: title + legend above, tooltip/status +
// key hint below.
const (
	headerRows = 2
	footerRows = 2
)

const statusTimeout = 4 * time.Second

// Model is the bubbletea model for pv.
type Model struct {
	store     *store.Store
	machine   *interaction.Machine
	cfg       config.Config
	optimizer crew.Optimizer

	width, height int
	proj          projection

	status    string
	statusErr bool
	statusSeq int

	renaming    bool
	renameID    string
	renameValue string
	renameForm  *huh.Form

	showHelp bool
	help     helpOverlay

	crewBusy bool
}

// Option configures the Model.
type Option func(*Model)

// WithOptimizer wires a crew optimization service into the UI.
func WithOptimizer(opt crew.Optimizer) Option {
	return func(m *Model) {
		m.optimizer = opt
	}
}

// NewModel creates the UI over an existing store.
func NewModel(s *store.Store, cfg config.Config, opts ...Option) Model {
	m := Model{
		store:   s,
		machine: interaction.NewMachine(s),
		cfg:     cfg,
		proj:    newProjection(80, 24),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Machine exposes the interaction machine, mainly for tests.
func (m *Model) Machine() *interaction.Machine {
	return m.machine
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.cfg.UI.FPS)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.proj = newProjection(msg.Width, m.canvasRows())
		m.help.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		return m, tickCmd(m.cfg.UI.FPS)

	case ConfigChangedMsg:
		m.cfg = msg.Config
		if err := m.store.SetVisualSettings(msg.Config.VisualPatch()); err != nil {
			return m.setStatus(fmt.Sprintf("✗ config reload: %v", err), true)
		}
		return m.setStatus("✓ config reloaded", false)

	case ConfigErrorMsg:
		return m.setStatus(fmt.Sprintf("✗ config: %v", msg.Err), true)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case snapshotDoneMsg:
		if msg.err != nil {
			return m.setStatus(fmt.Sprintf("✗ snapshot: %v", msg.err), true)
		}
		return m.setStatus(fmt.Sprintf("✓ snapshot saved to %s", msg.path), false)

	case crewResultMsg:
		m.crewBusy = false
		return m.applyCrewResult(msg)

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}

	if m.renaming {
		return m.updateRename(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.update(msg)
		return m, cmd
	}

	if m.renaming {
		if msg.String() == "esc" {
			m.renaming = false
			return m, nil
		}
		return m.updateRename(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		m.showHelp = true
		m.help.resize(m.width, m.height)
		return m, m.help.open()

	case "esc":
		if m.machine.ConnectionMode() {
			m.machine.ToggleConnectionMode()
			return m.setStatus("connection mode off", false)
		}
		m.machine.ClearSelection()
		m.machine.PointerLeave()
		return m, nil

	case "c":
		m.machine.ToggleConnectionMode()
		if m.machine.ConnectionMode() {
			return m.setStatus(fmt.Sprintf("connection mode: pick two planets (%s)", m.machine.ConnectionType()), false)
		}
		return m.setStatus("connection mode off", false)

	case "1", "2", "3":
		types := map[string]model.ConnectionType{
			"1": model.ConnectionHierarchy,
			"2": model.ConnectionCollaboration,
			"3": model.ConnectionInformation,
		}
		typ := types[msg.String()]
		if err := m.machine.SetConnectionType(typ); err != nil {
			return m.setStatus(fmt.Sprintf("✗ %v", err), true)
		}
		return m.setStatus(fmt.Sprintf("new connections: %s", typ), false)

	case "m":
		held := !m.machine.MoveModifier()
		m.machine.SetMoveModifier(held)
		if held {
			return m.setStatus("move mode: drag planets with the mouse", false)
		}
		return m.setStatus("move mode off", false)

	case "a":
		return m.addDivision()

	case "d":
		id, ok := m.machine.SelectedID()
		if !ok {
			return m.setStatus("nothing selected", false)
		}
		m.store.RemoveDivision(id)
		return m.setStatus(fmt.Sprintf("✓ removed %s and its connections", id), false)

	case "x":
		return m.removeSelectedConnections()

	case "y":
		id, ok := m.machine.SelectedID()
		if !ok {
			return m.setStatus("nothing selected", false)
		}
		if err := clipboard.WriteAll(id); err != nil {
			return m.setStatus(fmt.Sprintf("✗ clipboard: %v", err), true)
		}
		return m.setStatus(fmt.Sprintf("✓ copied %s", id), false)

	case "e":
		div, ok := m.machine.Selected()
		if !ok {
			return m.setStatus("nothing selected", false)
		}
		m.renaming = true
		m.renameID = div.ID
		m.renameValue = div.Label
		m.renameForm = newRenameForm(&m.renameValue)
		return m, m.renameForm.Init()

	case "l":
		show := !m.store.VisualSettings().ShowLabels
		if err := m.store.SetVisualSettings(store.VisualSettingsPatch{ShowLabels: &show}); err != nil {
			return m.setStatus(fmt.Sprintf("✗ %v", err), true)
		}
		if show {
			return m.setStatus("labels on", false)
		}
		return m.setStatus("labels off", false)

	case "+", "=":
		return m.adjustOpacity(0.1)
	case "-", "_":
		return m.adjustOpacity(-0.1)

	case "s":
		return m, m.snapshotCmd()

	case "w":
		if m.optimizer == nil {
			return m.setStatus("no crew service configured", false)
		}
		if m.crewBusy {
			return m.setStatus("crew optimization already running", false)
		}
		m.crewBusy = true
		cmd := m.optimizeCrewCmd()
		next, statusCmd := m.setStatus("⏳ optimizing crew...", false)
		return next, tea.Batch(cmd, statusCmd)
	}

	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.renaming {
		return m, nil
	}

	cx, cy, inCanvas := m.canvasPos(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inCanvas {
			return m, nil
		}
		snap := m.store.Snapshot()
		id, hit := planetAt(snap.Divisions, m.proj, cx, cy, m.cfg.UI.PickRadius)
		if !hit {
			m.machine.ClearSelection()
			return m, nil
		}
		if m.machine.DragStart(id) {
			debug.Log("drag start %s", id)
			return m, nil
		}
		conn, created, err := m.machine.PointerDown(id)
		if err != nil {
			return m.setStatus(fmt.Sprintf("✗ %v", err), true)
		}
		if created {
			return m.setStatus(fmt.Sprintf("✓ %s %s → %s", conn.Type, conn.SourceID, conn.TargetID), false)
		}
		return m, nil

	case tea.MouseActionMotion:
		if id, dragging := m.machine.Dragging(); dragging {
			if !inCanvas {
				return m, nil
			}
			div, ok := m.store.Division(id)
			if !ok {
				return m, nil
			}
			m.machine.DragMove(m.proj.world(cx, cy, div.Position.Z))
			return m, nil
		}
		if !inCanvas {
			m.machine.PointerLeave()
			return m, nil
		}
		snap := m.store.Snapshot()
		if id, hit := planetAt(snap.Divisions, m.proj, cx, cy, m.cfg.UI.PickRadius); hit {
			m.machine.PointerEnter(id, interaction.ScreenPoint{X: msg.X, Y: msg.Y})
		} else {
			m.machine.PointerLeave()
		}
		return m, nil

	case tea.MouseActionRelease:
		m.machine.DragEnd()
		return m, nil
	}

	return m, nil
}

func (m Model) updateRename(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.renameForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.renameForm = f
	}
	if m.renameForm.State == huh.StateCompleted {
		m.renaming = false
		if m.store.RelabelDivision(m.renameID, m.renameValue) {
			next, statusCmd := m.setStatus(fmt.Sprintf("✓ renamed %s", m.renameID), false)
			return next, tea.Batch(cmd, statusCmd)
		}
		next, statusCmd := m.setStatus(fmt.Sprintf("✗ %s no longer exists", m.renameID), true)
		return next, tea.Batch(cmd, statusCmd)
	}
	if m.renameForm.State == huh.StateAborted {
		m.renaming = false
	}
	return m, cmd
}

// addDivision places a new planet on an outward spiral so consecutive
// additions don't stack on one cell.
func (m Model) addDivision() (tea.Model, tea.Cmd) {
	count, _ := m.store.Counts()
	angle := float64(count) * 2.399963 // golden angle, keeps the spiral even
	radius := 3 + float64(count)*0.9
	pos := r3.Vec{
		X: radius * math.Cos(angle),
		Y: radius * math.Sin(angle) * 0.6,
		Z: float64(count%5) - 2,
	}
	div, err := m.store.AddDivision(store.DivisionSpec{
		Label:    fmt.Sprintf("Division %d", count+1),
		Position: pos,
	})
	if err != nil {
		return m.setStatus(fmt.Sprintf("✗ %v", err), true)
	}
	return m.setStatus(fmt.Sprintf("✓ added %s", div.ID), false)
}

func (m Model) removeSelectedConnections() (tea.Model, tea.Cmd) {
	id, ok := m.machine.SelectedID()
	if !ok {
		return m.setStatus("nothing selected", false)
	}
	snap := m.store.Snapshot()
	removed := 0
	for _, conn := range snap.Connections {
		if conn.SourceID == id || conn.TargetID == id {
			m.store.RemoveConnection(conn.ID)
			removed++
		}
	}
	return m.setStatus(fmt.Sprintf("✓ removed %d connections from %s", removed, id), false)
}

func (m Model) adjustOpacity(delta float64) (tea.Model, tea.Cmd) {
	cur := m.store.VisualSettings().ConnectionOpacity
	next := math.Round((cur+delta)*10) / 10
	next = math.Max(0, math.Min(1, next))
	if err := m.store.SetVisualSettings(store.VisualSettingsPatch{ConnectionOpacity: &next}); err != nil {
		return m.setStatus(fmt.Sprintf("✗ %v", err), true)
	}
	return m.setStatus(fmt.Sprintf("connection opacity %.1f", next), false)
}

// applyCrewResult turns an optimization into one batch of store updates:
// the selected divisions are chained with collaboration connections and
// suggested tasks land in the status line.
func (m Model) applyCrewResult(msg crewResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, crew.ErrService) {
			return m.setStatus(fmt.Sprintf("✗ crew service: %v", msg.err), true)
		}
		return m.setStatus(fmt.Sprintf("✗ crew: %v", msg.err), true)
	}
	linked := 0
	ids := msg.result.SelectedAgentIDs
	for i := 1; i < len(ids); i++ {
		if _, err := m.store.AddConnection(ids[i-1], ids[i], model.ConnectionCollaboration); err != nil {
			debug.Log("crew link %s -> %s: %v", ids[i-1], ids[i], err)
			continue
		}
		linked++
	}
	return m.setStatus(fmt.Sprintf("✓ crew: %d divisions, %d links, %d tasks suggested",
		len(ids), linked, len(msg.result.SuggestedTasks)), false)
}

func (m Model) optimizeCrewCmd() tea.Cmd {
	snap := m.store.Snapshot()
	candidates := make([]crew.Agent, 0, len(snap.Divisions))
	for _, div := range snap.Divisions {
		candidates = append(candidates, crew.Agent{
			ID:   div.ID,
			Name: div.Label,
			Role: div.Metadata["role"],
		})
	}
	opt := m.optimizer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := opt.OptimizeCrew(ctx, "balance collaboration across divisions", candidates)
		return crewResultMsg{result: result, err: err}
	}
}

func (m Model) snapshotCmd() tea.Cmd {
	snap := m.store.Snapshot()
	return func() tea.Msg {
		frame, err := scene.BuildFrame(snap)
		if err != nil {
			return snapshotDoneMsg{err: err}
		}
		path := filepath.Join(config.StateDir(),
			fmt.Sprintf("space-%s.svg", time.Now().Format("20060102-150405")))
		if err := export.SaveSnapshot(export.SnapshotOptions{
			Path:  path,
			Title: "Org Space",
			Frame: frame,
		}); err != nil {
			return snapshotDoneMsg{err: err}
		}
		return snapshotDoneMsg{path: path}
	}
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	return m, clearStatusCmd(m.statusSeq, statusTimeout)
}

func (m Model) canvasRows() int {
	rows := m.height - headerRows - footerRows
	if rows < 2 {
		rows = 2
	}
	return rows
}

// canvasPos translates terminal coordinates into canvas cells.
func (m Model) canvasPos(x, y int) (int, int, bool) {
	cy := y - headerRows
	return x, cy, x >= 0 && x < m.width && cy >= 0 && cy < m.canvasRows()
}
