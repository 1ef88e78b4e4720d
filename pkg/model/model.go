// Package model defines the core data types for the planetarium graph:
// divisions (nodes, rendered as planets), typed connections between them,
// and the global visual settings consumed by renderers.
package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sentinel errors for graph mutations. Callers match with errors.Is; the
// wrapped message carries the offending id or field.
var (
	ErrDuplicateID           = errors.New("duplicate division id")
	ErrUnknownEndpoint       = errors.New("unknown connection endpoint")
	ErrInvalidSetting        = errors.New("invalid visual setting")
	ErrUnknownConnectionType = errors.New("unknown connection type")
)

// ConnectionType classifies a connection between two divisions.
type ConnectionType string

const (
	ConnectionHierarchy     ConnectionType = "hierarchy"
	ConnectionCollaboration ConnectionType = "collaboration"
	ConnectionInformation   ConnectionType = "information"
)

// ConnectionTypes lists all valid types in a stable order.
var ConnectionTypes = []ConnectionType{
	ConnectionHierarchy,
	ConnectionCollaboration,
	ConnectionInformation,
}

// ParseConnectionType validates a raw string against the known types.
func ParseConnectionType(s string) (ConnectionType, error) {
	switch ConnectionType(s) {
	case ConnectionHierarchy, ConnectionCollaboration, ConnectionInformation:
		return ConnectionType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownConnectionType, s)
}

// Valid reports whether t is one of the three known connection types.
func (t ConnectionType) Valid() bool {
	switch t {
	case ConnectionHierarchy, ConnectionCollaboration, ConnectionInformation:
		return true
	}
	return false
}

// Division is a node in the org graph, visualized as a planet in space.
type Division struct {
	ID       string            `json:"id" yaml:"id"`
	Label    string            `json:"label" yaml:"label"`
	Position r3.Vec            `json:"position" yaml:"position"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Connection is a typed edge between two divisions. Rendering treats it as
// directionless, but source/target order is preserved for curve shaping.
type Connection struct {
	ID       string         `json:"id" yaml:"id"`
	SourceID string         `json:"source" yaml:"source"`
	TargetID string         `json:"target" yaml:"target"`
	Type     ConnectionType `json:"type" yaml:"type"`
}

// VisualSettings holds the global presentation knobs read by the geometry
// engine and renderers. Mutate only through Store.SetVisualSettings.
type VisualSettings struct {
	ShowLabels        bool    `json:"show_labels" yaml:"show_labels"`
	ConnectionOpacity float64 `json:"connection_opacity" yaml:"connection_opacity"`
	PlanetSize        float64 `json:"planet_size" yaml:"planet_size"`
	GlowIntensity     float64 `json:"glow_intensity" yaml:"glow_intensity"`
}

// DefaultVisualSettings returns the settings used before any configuration
// or runtime adjustment.
func DefaultVisualSettings() VisualSettings {
	return VisualSettings{
		ShowLabels:        true,
		ConnectionOpacity: 0.8,
		PlanetSize:        1.0,
		GlowIntensity:     0.5,
	}
}
