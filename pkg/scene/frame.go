// Package scene turns a store snapshot into per-frame renderer input:
// curve points, styles and modulated opacities for every connection.
// Frames are presentation derivations, rebuilt on every render and never
// stored, so they can't desynchronize from live drag updates.
package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/geometry"
	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/store"
)

// RenderedConnection is one connection ready to draw: sampled curve, fixed
// per-type style and the frame's opacity modulation. GlowOpacity is half
// the line opacity and only meaningful when Style.Glow is set.
type RenderedConnection struct {
	Connection  model.Connection
	Points      []r3.Vec
	Style       geometry.Style
	Opacity     float64
	GlowOpacity float64
}

// Frame is the complete read-only renderer input for one render pass.
type Frame struct {
	Divisions   []model.Division
	Connections []RenderedConnection
	Settings    model.VisualSettings
}

// BuildFrame derives a frame from a snapshot. A connection referencing a
// missing division or carrying an unknown type is a broken store invariant
// and fails loudly instead of being skipped.
func BuildFrame(snap store.Snapshot) (Frame, error) {
	byID := make(map[string]model.Division, len(snap.Divisions))
	for _, div := range snap.Divisions {
		byID[div.ID] = div
	}

	frame := Frame{
		Divisions:   snap.Divisions,
		Connections: make([]RenderedConnection, 0, len(snap.Connections)),
		Settings:    snap.Settings,
	}
	for _, conn := range snap.Connections {
		src, ok := byID[conn.SourceID]
		if !ok {
			return Frame{}, fmt.Errorf("connection %s: %w: source %q", conn.ID, model.ErrUnknownEndpoint, conn.SourceID)
		}
		dst, ok := byID[conn.TargetID]
		if !ok {
			return Frame{}, fmt.Errorf("connection %s: %w: target %q", conn.ID, model.ErrUnknownEndpoint, conn.TargetID)
		}
		style, err := geometry.StyleFor(conn.Type)
		if err != nil {
			return Frame{}, fmt.Errorf("connection %s: %w", conn.ID, err)
		}
		frame.Connections = append(frame.Connections, RenderedConnection{
			Connection:  conn,
			Points:      geometry.DeriveCurve(src, dst),
			Style:       style,
			Opacity:     snap.Settings.ConnectionOpacity,
			GlowOpacity: snap.Settings.ConnectionOpacity / 2,
		})
	}
	return frame, nil
}
