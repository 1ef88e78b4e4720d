package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/scene"
)

// World extent mapped onto the canvas. Fixed rather than fitted to the
// graph so the mapping stays stable while a planet is dragged (a fitted
// window would shift under the pointer mid-drag).
const (
	worldWidth  = 40.0
	worldHeight = 24.0
)

// projection maps world space to terminal cells and back. X/Y plane only;
// Z is carried through untouched so dragging never flattens a planet onto
// the camera plane.
type projection struct {
	cols, rows int
}

func newProjection(cols, rows int) projection {
	if cols < 2 {
		cols = 2
	}
	if rows < 2 {
		rows = 2
	}
	return projection{cols: cols, rows: rows}
}

// cell returns the cell for a world position and whether it is on screen.
func (p projection) cell(v r3.Vec) (int, int, bool) {
	x := int(math.Round((v.X + worldWidth/2) / worldWidth * float64(p.cols-1)))
	y := int(math.Round((worldHeight/2 - v.Y) / worldHeight * float64(p.rows-1)))
	return x, y, x >= 0 && x < p.cols && y >= 0 && y < p.rows
}

// world is the inverse of cell for a given depth.
func (p projection) world(x, y int, z float64) r3.Vec {
	return r3.Vec{
		X: float64(x)/float64(p.cols-1)*worldWidth - worldWidth/2,
		Y: worldHeight/2 - float64(y)/float64(p.rows-1)*worldHeight,
		Z: z,
	}
}

// canvasCell is one cell of the render grid.
type canvasCell struct {
	ch    rune
	color lipgloss.TerminalColor
	faint bool
}

// canvas rasterizes a frame into a cell grid.
type canvas struct {
	proj  projection
	cells [][]canvasCell
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]canvasCell, rows)
	for i := range cells {
		cells[i] = make([]canvasCell, cols)
		for j := range cells[i] {
			cells[i][j] = canvasCell{ch: ' '}
		}
	}
	return &canvas{proj: newProjection(cols, rows), cells: cells}
}

func (c *canvas) set(x, y int, cell canvasCell) {
	if y < 0 || y >= len(c.cells) || x < 0 || x >= len(c.cells[y]) {
		return
	}
	c.cells[y][x] = cell
}

// drawFrame paints connections first, then planets on top of them.
// selectedID, pendingID and draggingID tint the matching planets.
func (c *canvas) drawFrame(frame scene.Frame, selectedID, pendingID, draggingID string) {
	for _, rc := range frame.Connections {
		c.drawCurve(rc)
	}
	for _, div := range frame.Divisions {
		x, y, ok := c.proj.cell(div.Position)
		if !ok {
			continue
		}
		cell := canvasCell{ch: '●', color: ColorPlanet}
		switch div.ID {
		case draggingID:
			cell.color = ColorSelected
			cell.ch = '◎'
		case selectedID:
			cell.color = ColorSelected
		case pendingID:
			cell.color = ColorPending
			cell.ch = '◉'
		}
		c.set(x, y, cell)

		if frame.Settings.ShowLabels && div.Label != "" {
			c.writeLabel(x+2, y, truncateLabel(div.Label, 14))
		}
	}
}

// drawCurve plots the sampled points. Dashed styles plot every other
// sample; low opacity renders faint.
func (c *canvas) drawCurve(rc scene.RenderedConnection) {
	glyph := '·'
	if rc.Style.Width >= 2 {
		glyph = '•'
	}
	step := 1
	if rc.Style.Dash {
		step = 2
	}
	faint := rc.Opacity < 0.5
	color := lipgloss.Color(rc.Style.Color)

	for i := 0; i < len(rc.Points); i += step {
		x, y, ok := c.proj.cell(rc.Points[i])
		if !ok {
			continue
		}
		// Planets and labels are drawn later and overwrite; curves only
		// claim empty cells so crossing curves don't flicker.
		if c.cells[y][x].ch == ' ' {
			c.set(x, y, canvasCell{ch: glyph, color: color, faint: faint})
		}
	}
}

func (c *canvas) writeLabel(x, y int, label string) {
	for i, r := range label {
		c.set(x+i, y, canvasCell{ch: r, color: ColorSubtext})
	}
}

// render flattens the grid into styled terminal lines.
func (c *canvas) render() string {
	styles := make(map[lipgloss.TerminalColor]lipgloss.Style)
	style := func(col lipgloss.TerminalColor, faint bool) lipgloss.Style {
		s, ok := styles[col]
		if !ok {
			s = lipgloss.NewStyle().Foreground(col)
			styles[col] = s
		}
		if faint {
			return s.Faint(true)
		}
		return s
	}

	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var runColor lipgloss.TerminalColor
		var runFaint bool
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(style(runColor, runFaint).Render(run.String()))
			}
			run.Reset()
		}
		for _, cell := range row {
			if cell.color != runColor || cell.faint != runFaint {
				flush()
				runColor = cell.color
				runFaint = cell.faint
			}
			run.WriteRune(cell.ch)
		}
		flush()
	}
	return b.String()
}

// planetAt hit-tests a cell against the projected planets, returning the
// nearest division within radius cells.
func planetAt(divs []model.Division, proj projection, x, y, radius int) (string, bool) {
	bestID := ""
	bestDist := math.MaxInt
	for _, div := range divs {
		px, py, ok := proj.cell(div.Position)
		if !ok {
			continue
		}
		dx, dy := abs(px-x), abs(py-y)
		dist := max(dx, dy)
		if dist <= radius && dist < bestDist {
			bestID = div.ID
			bestDist = dist
		}
	}
	return bestID, bestID != ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
