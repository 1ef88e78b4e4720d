package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/planetarium/pkg/model"
)

// Adaptive colors for light and dark terminals. The space canvas itself
// keeps its own dark palette; these cover the chrome around it.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Connection type accents, matching the geometry style table so the
	// legend and the canvas agree.
	ColorHierarchy     = lipgloss.Color("#ffd700")
	ColorCollaboration = lipgloss.Color("#00ff88")
	ColorInformation   = lipgloss.Color("#00bfff")

	ColorPlanet   = lipgloss.Color("#8ca0d7")
	ColorSelected = lipgloss.Color("#ff79c6")
	ColorPending  = lipgloss.Color("#ffb86c")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorDanger)

	modeStyle = lipgloss.NewStyle().
			Foreground(ColorPending).
			Bold(true)

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	tooltipTextStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)

	legendKeyStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// typeColor returns the accent for a connection type.
func typeColor(typ model.ConnectionType) lipgloss.Color {
	switch typ {
	case model.ConnectionHierarchy:
		return ColorHierarchy
	case model.ConnectionCollaboration:
		return ColorCollaboration
	case model.ConnectionInformation:
		return ColorInformation
	}
	return ColorPlanet
}
