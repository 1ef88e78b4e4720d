// Package store holds the graph state: divisions, connections and the
// global visual settings. It is the single source of truth; everything a
// renderer sees is derived from a Snapshot of this store.
//
// The core runs single-threaded on the event loop, but every mutation goes
// through one mutex so multi-threaded hosts get an exclusive-writer path
// for free.
package store

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/model"
)

// DivisionSpec describes a division to add. ID is optional; when empty the
// store assigns a fresh one.
type DivisionSpec struct {
	ID       string
	Label    string
	Position r3.Vec
	Metadata map[string]string
}

// VisualSettingsPatch is a partial update for the visual settings. Nil
// fields are left untouched. A patch is applied all-or-nothing: if any
// provided field is out of range the whole call fails and no field changes.
type VisualSettingsPatch struct {
	ShowLabels        *bool
	ConnectionOpacity *float64
	PlanetSize        *float64
	GlowIntensity     *float64
}

// Snapshot is an immutable copy of the store for renderers. Divisions and
// connections are sorted by id so frame output is deterministic.
type Snapshot struct {
	Divisions   []model.Division
	Connections []model.Connection
	Settings    model.VisualSettings
}

// connKey identifies a connection by its ordered (source, target, type)
// triple, which the store keeps unique.
type connKey struct {
	source string
	target string
	typ    model.ConnectionType
}

// Store owns the division and connection collections. All mutations are
// synchronous and either complete fully or leave prior state untouched.
type Store struct {
	mu          sync.RWMutex
	divisions   map[string]model.Division
	connections map[string]model.Connection
	byTriple    map[connKey]string // triple -> connection id
	settings    model.VisualSettings
	divSeq      int
	connSeq     int
}

// New creates an empty store with default visual settings.
func New() *Store {
	return &Store{
		divisions:   make(map[string]model.Division),
		connections: make(map[string]model.Connection),
		byTriple:    make(map[connKey]string),
		settings:    model.DefaultVisualSettings(),
	}
}

// AddDivision inserts a new division. A fresh "div-N" id is assigned when
// spec.ID is empty; an explicit id that collides fails with ErrDuplicateID.
func (s *Store) AddDivision(spec DivisionSpec) (model.Division, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := spec.ID
	if id == "" {
		for {
			s.divSeq++
			id = fmt.Sprintf("div-%d", s.divSeq)
			if _, taken := s.divisions[id]; !taken {
				break
			}
		}
	} else if _, taken := s.divisions[id]; taken {
		return model.Division{}, fmt.Errorf("%w: %q", model.ErrDuplicateID, id)
	}

	div := model.Division{
		ID:       id,
		Label:    spec.Label,
		Position: spec.Position,
		Metadata: copyMetadata(spec.Metadata),
	}
	s.divisions[id] = div
	return copyDivision(div), nil
}

// RemoveDivision deletes a division and, as a single state transition,
// every connection whose source or target references it. No dangling
// endpoints survive. No-op when the id is absent.
func (s *Store) RemoveDivision(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.divisions[id]; !ok {
		return
	}
	delete(s.divisions, id)
	for cid, conn := range s.connections {
		if conn.SourceID == id || conn.TargetID == id {
			delete(s.connections, cid)
			delete(s.byTriple, connKey{conn.SourceID, conn.TargetID, conn.Type})
		}
	}
}

// MoveDivision updates a division's position in place. Used by drag: each
// pointer-move commits directly so renderers always see live positions.
// Returns false when the id is absent.
func (s *Store) MoveDivision(id string, pos r3.Vec) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	div, ok := s.divisions[id]
	if !ok {
		return false
	}
	div.Position = pos
	s.divisions[id] = div
	return true
}

// RelabelDivision replaces a division's label. Returns false when the id
// is absent.
func (s *Store) RelabelDivision(id, label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	div, ok := s.divisions[id]
	if !ok {
		return false
	}
	div.Label = label
	s.divisions[id] = div
	return true
}

// Division returns a copy of the division with the given id.
func (s *Store) Division(id string) (model.Division, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	div, ok := s.divisions[id]
	if !ok {
		return model.Division{}, false
	}
	return copyDivision(div), true
}

// AddConnection creates a typed connection between two existing divisions.
// Both endpoints must exist (ErrUnknownEndpoint otherwise) and the type
// must be valid (ErrUnknownConnectionType). Creating the same ordered
// (source, target, type) triple twice is a deterministic no-op that
// returns the already-stored connection.
func (s *Store) AddConnection(sourceID, targetID string, typ model.ConnectionType) (model.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !typ.Valid() {
		return model.Connection{}, fmt.Errorf("%w: %q", model.ErrUnknownConnectionType, typ)
	}
	if _, ok := s.divisions[sourceID]; !ok {
		return model.Connection{}, fmt.Errorf("%w: source %q", model.ErrUnknownEndpoint, sourceID)
	}
	if _, ok := s.divisions[targetID]; !ok {
		return model.Connection{}, fmt.Errorf("%w: target %q", model.ErrUnknownEndpoint, targetID)
	}

	key := connKey{sourceID, targetID, typ}
	if existing, ok := s.byTriple[key]; ok {
		return s.connections[existing], nil
	}

	s.connSeq++
	conn := model.Connection{
		ID:       fmt.Sprintf("conn-%d", s.connSeq),
		SourceID: sourceID,
		TargetID: targetID,
		Type:     typ,
	}
	s.connections[conn.ID] = conn
	s.byTriple[key] = conn.ID
	return conn, nil
}

// RemoveConnection deletes a connection by id. No-op when absent.
func (s *Store) RemoveConnection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok {
		return
	}
	delete(s.connections, id)
	delete(s.byTriple, connKey{conn.SourceID, conn.TargetID, conn.Type})
}

// Connection returns a copy of the connection with the given id.
func (s *Store) Connection(id string) (model.Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[id]
	return conn, ok
}

// SetVisualSettings merges the patch into the current settings. Every
// provided field is validated first; any invalid field rejects the whole
// patch with ErrInvalidSetting and leaves the settings untouched.
func (s *Store) SetVisualSettings(patch VisualSettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.ConnectionOpacity != nil {
		if v := *patch.ConnectionOpacity; v < 0 || v > 1 {
			return fmt.Errorf("%w: connection_opacity %v outside [0,1]", model.ErrInvalidSetting, v)
		}
	}
	if patch.PlanetSize != nil {
		if v := *patch.PlanetSize; v <= 0 {
			return fmt.Errorf("%w: planet_size %v must be > 0", model.ErrInvalidSetting, v)
		}
	}
	if patch.GlowIntensity != nil {
		if v := *patch.GlowIntensity; v < 0 {
			return fmt.Errorf("%w: glow_intensity %v must be >= 0", model.ErrInvalidSetting, v)
		}
	}

	if patch.ShowLabels != nil {
		s.settings.ShowLabels = *patch.ShowLabels
	}
	if patch.ConnectionOpacity != nil {
		s.settings.ConnectionOpacity = *patch.ConnectionOpacity
	}
	if patch.PlanetSize != nil {
		s.settings.PlanetSize = *patch.PlanetSize
	}
	if patch.GlowIntensity != nil {
		s.settings.GlowIntensity = *patch.GlowIntensity
	}
	return nil
}

// VisualSettings returns the current settings by value.
func (s *Store) VisualSettings() model.VisualSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Snapshot returns an immutable copy of the full graph state. Mutating the
// returned slices or metadata maps has no effect on the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Divisions:   make([]model.Division, 0, len(s.divisions)),
		Connections: make([]model.Connection, 0, len(s.connections)),
		Settings:    s.settings,
	}
	for _, div := range s.divisions {
		snap.Divisions = append(snap.Divisions, copyDivision(div))
	}
	for _, conn := range s.connections {
		snap.Connections = append(snap.Connections, conn)
	}
	sort.Slice(snap.Divisions, func(i, j int) bool { return snap.Divisions[i].ID < snap.Divisions[j].ID })
	sort.Slice(snap.Connections, func(i, j int) bool { return snap.Connections[i].ID < snap.Connections[j].ID })
	return snap
}

// Counts returns the number of divisions and connections.
func (s *Store) Counts() (divisions, connections int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.divisions), len(s.connections)
}

func copyDivision(div model.Division) model.Division {
	div.Metadata = copyMetadata(div.Metadata)
	return div
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
