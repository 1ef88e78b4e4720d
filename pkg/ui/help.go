package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# pv — org space viewer

Divisions are planets; connections are arced curves between them.

## Mouse

| Action | Effect |
|---|---|
| Click a planet | Select it |
| Click empty space | Clear selection |
| Hover a planet | Tooltip (needs mouse_mode: all) |
| Drag a planet | Move it (move mode must be on) |

## Keys

| Key | Effect |
|---|---|
| c | Toggle connection mode (pick two planets to link) |
| 1 / 2 / 3 | Connection type: hierarchy / collaboration / information |
| m | Toggle move mode (gates dragging) |
| a | Add a division |
| d | Delete the selected division and its connections |
| x | Delete the selected division's connections |
| e | Rename the selected division |
| y | Copy the selected division id |
| l | Toggle labels |
| + / - | Connection opacity |
| s | Save an SVG snapshot |
| w | Run crew optimization (if configured) |
| ? | This help |
| q | Quit |

Connection mode keeps the first pick as a pending source; picking the
same planet twice does nothing, and a failed link keeps the source so
you can pick another target.
`

// helpOverlay is the scrollable, glamour-rendered help screen.
type helpOverlay struct {
	vp    viewport.Model
	ready bool
}

func (h *helpOverlay) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	h.vp.Width = width
	h.vp.Height = height - 2
	h.renderContent(width)
}

func (h *helpOverlay) renderContent(width int) {
	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	out, err := glamour.Render(helpMarkdown, "dark")
	if err != nil {
		// Plain markdown still reads fine.
		out = helpMarkdown
	}
	h.vp.SetContent(helpStyle.Width(wrap).Render(out))
	h.ready = true
}

func (h *helpOverlay) open() tea.Cmd {
	h.vp.GotoTop()
	return nil
}

func (h helpOverlay) update(msg tea.Msg) (helpOverlay, tea.Cmd) {
	var cmd tea.Cmd
	h.vp, cmd = h.vp.Update(msg)
	return h, cmd
}

func (h helpOverlay) view() string {
	if !h.ready {
		return helpMarkdown
	}
	return h.vp.View() + "\n" + statusStyle.Render("  ↑/↓ scroll · q/esc close")
}
