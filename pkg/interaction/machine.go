// Package interaction implements the view-side state machine: selection,
// modifier-gated dragging, two-pick connection creation and the hover
// tooltip. The machine holds only division ids — weak references into the
// store — and re-resolves them on every event, so a division removed
// behind its back degrades to a no-op plus cleanup, never a crash.
package interaction

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/store"
)

// ScreenPoint is a 2D position in renderer coordinates, used only for
// tooltip placement.
type ScreenPoint struct {
	X, Y int
}

// Tooltip is the transient hover state. Orthogonal to every other mode.
type Tooltip struct {
	DivisionID string
	Screen     ScreenPoint
}

// Machine tracks interaction state against a store. Single active mode at
// a time (idle/selected, dragging, connection mode); hover is orthogonal.
// Never persisted.
type Machine struct {
	store *store.Store

	selectedID     string
	connectionMode bool
	connectionType model.ConnectionType
	pendingSource  string
	draggingID     string
	moveModifier   bool
	hover          *Tooltip
}

// NewMachine creates an idle machine over the given store. New connections
// default to hierarchy until SetConnectionType changes it.
func NewMachine(s *store.Store) *Machine {
	return &Machine{
		store:          s,
		connectionType: model.ConnectionHierarchy,
	}
}

// PointerDown handles a pointer press on the division with the given id.
//
// Idle: selects the division. Connection mode: the first pick becomes the
// pending source, the second pick creates a connection of the current
// type. A pick equal to the pending source is silently ignored (self-loops
// are rejected by policy). On a failed creation the pending source is kept
// so the caller can retry with another target; the error is returned.
//
// Returns the created connection and true when a connection was made.
func (m *Machine) PointerDown(id string) (model.Connection, bool, error) {
	m.revalidate()

	if _, ok := m.store.Division(id); !ok {
		// Stale pick: the division vanished between render and event.
		return model.Connection{}, false, nil
	}

	if !m.connectionMode {
		m.selectedID = id
		return model.Connection{}, false, nil
	}

	if m.pendingSource == "" {
		m.pendingSource = id
		return model.Connection{}, false, nil
	}
	if m.pendingSource == id {
		return model.Connection{}, false, nil
	}

	conn, err := m.store.AddConnection(m.pendingSource, id, m.connectionType)
	if err != nil {
		// Keep the pending source for retry; surface the failure.
		return model.Connection{}, false, err
	}
	m.pendingSource = ""
	return conn, true, nil
}

// DragStart begins dragging the division with the given id. Requires the
// move modifier to be held and no connection mode active; otherwise it is
// ignored and reports false.
func (m *Machine) DragStart(id string) bool {
	m.revalidate()

	if !m.moveModifier || m.connectionMode {
		return false
	}
	if _, ok := m.store.Division(id); !ok {
		return false
	}
	m.draggingID = id
	return true
}

// DragMove commits the dragged division's new position directly to the
// store, so every render during the drag sees the live position. If the
// division disappeared mid-drag the drag is dropped silently.
func (m *Machine) DragMove(pos r3.Vec) {
	if m.draggingID == "" {
		return
	}
	if !m.store.MoveDivision(m.draggingID, pos) {
		m.draggingID = ""
	}
}

// DragEnd leaves drag mode. The final position is already committed by the
// last DragMove; there is nothing to flush.
func (m *Machine) DragEnd() {
	m.draggingID = ""
}

// Dragging reports whether a drag is in progress and for which division.
func (m *Machine) Dragging() (string, bool) {
	return m.draggingID, m.draggingID != ""
}

// ToggleConnectionMode flips connection mode. Entering clears the current
// selection and any pending source; leaving clears the pending source
// unconditionally.
func (m *Machine) ToggleConnectionMode() {
	m.connectionMode = !m.connectionMode
	m.pendingSource = ""
	if m.connectionMode {
		m.selectedID = ""
	}
}

// ConnectionMode reports whether connection mode is active.
func (m *Machine) ConnectionMode() bool {
	return m.connectionMode
}

// SetConnectionType selects the type used for subsequently created
// connections. Unknown types are rejected.
func (m *Machine) SetConnectionType(typ model.ConnectionType) error {
	if !typ.Valid() {
		return model.ErrUnknownConnectionType
	}
	m.connectionType = typ
	return nil
}

// ConnectionType returns the type used for new connections.
func (m *Machine) ConnectionType() model.ConnectionType {
	return m.connectionType
}

// PendingSource returns the first endpoint picked in connection mode, if
// it still exists.
func (m *Machine) PendingSource() (string, bool) {
	m.revalidate()
	return m.pendingSource, m.pendingSource != ""
}

// SetMoveModifier records whether the designated move key is held. Holding
// it has no effect on its own; it only gates DragStart. Releasing it does
// not abort a drag already in progress.
func (m *Machine) SetMoveModifier(held bool) {
	m.moveModifier = held
}

// MoveModifier reports whether the move key is held.
func (m *Machine) MoveModifier() bool {
	return m.moveModifier
}

// PointerEnter sets the hover tooltip for a division. Ignored when the
// division does not exist.
func (m *Machine) PointerEnter(id string, screen ScreenPoint) {
	if _, ok := m.store.Division(id); !ok {
		return
	}
	m.hover = &Tooltip{DivisionID: id, Screen: screen}
}

// PointerLeave clears the hover tooltip.
func (m *Machine) PointerLeave() {
	m.hover = nil
}

// Hover returns the current tooltip, re-validated against the store.
func (m *Machine) Hover() (Tooltip, bool) {
	m.revalidate()
	if m.hover == nil {
		return Tooltip{}, false
	}
	return *m.hover, true
}

// Selected returns the selected division, re-resolved against the store.
func (m *Machine) Selected() (model.Division, bool) {
	m.revalidate()
	if m.selectedID == "" {
		return model.Division{}, false
	}
	div, ok := m.store.Division(m.selectedID)
	return div, ok
}

// SelectedID returns the selected division id, if it still exists.
func (m *Machine) SelectedID() (string, bool) {
	m.revalidate()
	return m.selectedID, m.selectedID != ""
}

// ClearSelection drops the current selection.
func (m *Machine) ClearSelection() {
	m.selectedID = ""
}

// revalidate drops any id reference whose division no longer exists.
// External removals may race the event that carried the id; dangling
// references are cleared rather than reported.
func (m *Machine) revalidate() {
	if m.selectedID != "" {
		if _, ok := m.store.Division(m.selectedID); !ok {
			m.selectedID = ""
		}
	}
	if m.pendingSource != "" {
		if _, ok := m.store.Division(m.pendingSource); !ok {
			m.pendingSource = ""
		}
	}
	if m.draggingID != "" {
		if _, ok := m.store.Division(m.draggingID); !ok {
			m.draggingID = ""
		}
	}
	if m.hover != nil {
		if _, ok := m.store.Division(m.hover.DivisionID); !ok {
			m.hover = nil
		}
	}
}
