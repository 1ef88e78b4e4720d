package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/planetarium/pkg/scene"
)

// sceneNode is one division in the JSON scene dump.
type sceneNode struct {
	ID       string            `json:"id"`
	Label    string            `json:"label"`
	Position [3]float64        `json:"position"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// sceneLink is one rendered connection: endpoints, type, style and the
// sampled curve so external viewers don't need to re-derive geometry.
type sceneLink struct {
	ID      string       `json:"id"`
	Source  string       `json:"source"`
	Target  string       `json:"target"`
	Type    string       `json:"type"`
	Color   string       `json:"color"`
	Width   float64      `json:"width"`
	Dash    bool         `json:"dash"`
	Glow    bool         `json:"glow"`
	Opacity float64      `json:"opacity"`
	Points  [][3]float64 `json:"points"`
}

type sceneDoc struct {
	Nodes    []sceneNode `json:"nodes"`
	Links    []sceneLink `json:"links"`
	Settings struct {
		ShowLabels        bool    `json:"show_labels"`
		ConnectionOpacity float64 `json:"connection_opacity"`
		PlanetSize        float64 `json:"planet_size"`
		GlowIntensity     float64 `json:"glow_intensity"`
	} `json:"settings"`
}

// SaveSceneJSON writes the frame as a JSON document for external 3D
// viewers.
func SaveSceneJSON(frame scene.Frame, path string) error {
	data, err := MarshalScene(frame)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing scene: %w", err)
	}
	return nil
}

// MarshalScene encodes the frame as indented JSON.
func MarshalScene(frame scene.Frame) ([]byte, error) {
	doc := sceneDoc{
		Nodes: make([]sceneNode, 0, len(frame.Divisions)),
		Links: make([]sceneLink, 0, len(frame.Connections)),
	}
	for _, div := range frame.Divisions {
		doc.Nodes = append(doc.Nodes, sceneNode{
			ID:       div.ID,
			Label:    div.Label,
			Position: [3]float64{div.Position.X, div.Position.Y, div.Position.Z},
			Metadata: div.Metadata,
		})
	}
	for _, rc := range frame.Connections {
		link := sceneLink{
			ID:      rc.Connection.ID,
			Source:  rc.Connection.SourceID,
			Target:  rc.Connection.TargetID,
			Type:    string(rc.Connection.Type),
			Color:   rc.Style.Color,
			Width:   rc.Style.Width,
			Dash:    rc.Style.Dash,
			Glow:    rc.Style.Glow,
			Opacity: rc.Opacity,
			Points:  make([][3]float64, len(rc.Points)),
		}
		for i, p := range rc.Points {
			link.Points[i] = [3]float64{p.X, p.Y, p.Z}
		}
		doc.Links = append(doc.Links, link)
	}
	doc.Settings.ShowLabels = frame.Settings.ShowLabels
	doc.Settings.ConnectionOpacity = frame.Settings.ConnectionOpacity
	doc.Settings.PlanetSize = frame.Settings.PlanetSize
	doc.Settings.GlowIntensity = frame.Settings.GlowIntensity

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling scene: %w", err)
	}
	return data, nil
}
