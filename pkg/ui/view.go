package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/planetarium/pkg/scene"
)

func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if m.showHelp {
		return m.help.view()
	}
	if m.renaming && m.renameForm != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			tooltipStyle.Render(m.renameForm.View()))
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.canvasView())
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	divisions, connections := m.store.Counts()
	title := titleStyle.Render("pv ◦ org space")
	counts := statusStyle.Render(fmt.Sprintf("  %d divisions · %d connections", divisions, connections))

	legend := lipgloss.JoinHorizontal(lipgloss.Top,
		legendKeyStyle.Render("1 "),
		lipgloss.NewStyle().Foreground(ColorHierarchy).Render("hierarchy  "),
		legendKeyStyle.Render("2 "),
		lipgloss.NewStyle().Foreground(ColorCollaboration).Render("collaboration  "),
		legendKeyStyle.Render("3 "),
		lipgloss.NewStyle().Foreground(ColorInformation).Render("information"),
	)

	var modes []string
	if m.machine.ConnectionMode() {
		label := fmt.Sprintf("CONNECT[%s]", m.machine.ConnectionType())
		if src, ok := m.machine.PendingSource(); ok {
			label += " from " + src
		}
		modes = append(modes, modeStyle.Render(label))
	}
	if m.machine.MoveModifier() {
		modes = append(modes, modeStyle.Render("MOVE"))
	}
	modeLine := ""
	if len(modes) > 0 {
		modeLine = "   " + strings.Join(modes, " ")
	}

	return title + counts + "\n" + legend + modeLine
}

func (m Model) canvasView() string {
	frame, err := scene.BuildFrame(m.store.Snapshot())
	if err != nil {
		return statusErrorStyle.Render(fmt.Sprintf("render failed: %v", err))
	}

	selected, _ := m.machine.SelectedID()
	pending, _ := m.machine.PendingSource()
	dragging, _ := m.machine.Dragging()

	c := newCanvas(m.width, m.canvasRows())
	c.proj = m.proj
	c.drawFrame(frame, selected, pending, dragging)
	return c.render()
}

func (m Model) footerView() string {
	line := m.statusLine()
	hint := statusStyle.Render("q quit · ? help · c connect · m move · a add · d delete · e rename · s snapshot")
	return line + "\n" + hint
}

// statusLine shows the hover tooltip when present, otherwise the transient
// status, otherwise the current selection.
func (m Model) statusLine() string {
	if tip, ok := m.machine.Hover(); ok {
		if div, found := m.store.Division(tip.DivisionID); found {
			text := fmt.Sprintf("%s · %s · (%.1f, %.1f, %.1f)",
				div.ID, div.Label, div.Position.X, div.Position.Y, div.Position.Z)
			if len(div.Metadata) > 0 {
				text += fmt.Sprintf(" · %d metadata", len(div.Metadata))
			}
			return tooltipTextStyle.Render(truncateLabel(text, m.width-2))
		}
	}
	if m.status != "" {
		if m.statusErr {
			return statusErrorStyle.Render(truncateLabel(m.status, m.width))
		}
		return statusStyle.Render(truncateLabel(m.status, m.width))
	}
	if div, ok := m.machine.Selected(); ok {
		return statusStyle.Render(truncateLabel(
			fmt.Sprintf("selected: %s (%s)", div.Label, div.ID), m.width))
	}
	return ""
}

// truncateLabel shortens a string to a display width, honoring wide runes.
func truncateLabel(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
