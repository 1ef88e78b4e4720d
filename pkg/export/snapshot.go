// Package export renders static snapshots of the space graph: SVG or PNG
// images of the current frame, and a JSON scene dump for external viewers.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/scene"
)

// SnapshotOptions controls graph snapshot export behaviour.
type SnapshotOptions struct {
	Path   string      // Output path; format inferred from extension when Format empty
	Format string      // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string      // Optional title rendered in the summary block
	Frame  scene.Frame // The frame to render, derived from a live snapshot
}

// SaveSnapshot renders a static snapshot (SVG or PNG) of the frame with a
// small summary block. The visual language is kept minimal so the output
// is parseable without auxiliary docs.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Frame.Divisions) == 0 {
		return fmt.Errorf("no divisions to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		return renderSVG(opts, layout)
	case "png":
		return renderPNG(opts, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

const (
	canvasW      = 1280
	canvasH      = 800
	padding      = 48.0
	headerHeight = 96.0
	baseRadius   = 14.0
)

type planet2D struct {
	ID     string
	Label  string
	X, Y   float64
	Radius float64
}

type curve2D struct {
	Conn   scene.RenderedConnection
	Points [][2]float64
}

type layoutResult struct {
	Planets []planet2D
	Curves  []curve2D
	Width   int
	Height  int
	// GlowWidth is the halo stroke width as a multiple of the line width,
	// scaled by the GlowIntensity setting.
	GlowWidth float64
	Summary   summaryInfo
}

type summaryInfo struct {
	Title      string
	Divisions  int
	Conns      int
	ShowLabels bool
}

// buildLayout projects the 3D frame onto the canvas. The projection is a
// plain X/Y orthographic view (the arcs rise in Y, so they stay visible);
// Z scales planet radius a little for depth.
func buildLayout(opts SnapshotOptions) layoutResult {
	frame := opts.Frame

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	grow := func(p r3.Vec) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}
	for _, div := range frame.Divisions {
		grow(div.Position)
	}
	for _, rc := range frame.Connections {
		for _, p := range rc.Points {
			grow(p)
		}
	}

	spanX := maxX - minX
	spanY := maxY - minY
	spanZ := maxZ - minZ
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	drawW := float64(canvasW) - 2*padding
	drawH := float64(canvasH) - 2*padding - headerHeight
	scale := math.Min(drawW/spanX, drawH/spanY)

	project := func(p r3.Vec) (float64, float64) {
		x := padding + (p.X-minX)*scale
		// Flip Y: graph up is canvas up.
		y := padding + headerHeight + drawH - (p.Y-minY)*scale
		return x, y
	}
	depth := func(p r3.Vec) float64 {
		if spanZ == 0 {
			return 1
		}
		// Nearer (smaller Z) planets render slightly larger.
		return 1.25 - 0.5*(p.Z-minZ)/spanZ
	}

	out := layoutResult{
		Width:     canvasW,
		Height:    canvasH,
		GlowWidth: 2 + 2*frame.Settings.GlowIntensity,
	}
	for _, div := range frame.Divisions {
		x, y := project(div.Position)
		out.Planets = append(out.Planets, planet2D{
			ID:     div.ID,
			Label:  div.Label,
			X:      x,
			Y:      y,
			Radius: baseRadius * frame.Settings.PlanetSize * depth(div.Position),
		})
	}
	for _, rc := range frame.Connections {
		pts := make([][2]float64, len(rc.Points))
		for i, p := range rc.Points {
			x, y := project(p)
			pts[i] = [2]float64{x, y}
		}
		out.Curves = append(out.Curves, curve2D{Conn: rc, Points: pts})
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Space Snapshot"
	}
	out.Summary = summaryInfo{
		Title:      title,
		Divisions:  len(frame.Divisions),
		Conns:      len(frame.Connections),
		ShowLabels: frame.Settings.ShowLabels,
	}
	return out
}

// --- rendering -------------------------------------------------------------

var (
	colorSpace     = color.RGBA{0x0f, 0x0f, 0x1a, 0xff}
	colorHeaderBG  = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	colorPlanet    = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorPlanetRim = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
	colorText      = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
	colorSubtle    = color.RGBA{0x88, 0x88, 0xaa, 0xff}
)

func renderPNG(opts SnapshotOptions, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorSpace)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, headerHeight-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryBlock(dc, layout)

	for _, c := range layout.Curves {
		strokePNGCurve(dc, c, layout.GlowWidth)
	}
	for _, p := range layout.Planets {
		drawPlanet(dc, p, layout.Summary.ShowLabels)
	}

	return dc.SavePNG(opts.Path)
}

func strokePNGCurve(dc *gg.Context, c curve2D, glowWidth float64) {
	rgba := parseHex(c.Conn.Style.Color)

	trace := func() {
		dc.NewSubPath()
		dc.MoveTo(c.Points[0][0], c.Points[0][1])
		for _, p := range c.Points[1:] {
			dc.LineTo(p[0], p[1])
		}
	}

	if c.Conn.Style.Glow {
		dc.SetRGBA(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255, c.Conn.GlowOpacity)
		dc.SetLineWidth(c.Conn.Style.Width * glowWidth)
		dc.SetDash()
		trace()
		dc.Stroke()
	}

	dc.SetRGBA(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255, c.Conn.Opacity)
	dc.SetLineWidth(c.Conn.Style.Width)
	if c.Conn.Style.Dash {
		dc.SetDash(6, 4)
	} else {
		dc.SetDash()
	}
	trace()
	dc.Stroke()
	dc.SetDash()
}

func drawPlanet(dc *gg.Context, p planet2D, showLabels bool) {
	dc.SetColor(colorPlanet)
	dc.DrawCircle(p.X, p.Y, p.Radius)
	dc.Fill()
	dc.SetColor(colorPlanetRim)
	dc.SetLineWidth(1.2)
	dc.DrawCircle(p.X, p.Y, p.Radius)
	dc.Stroke()

	if showLabels {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(p.Label, p.X, p.Y-p.Radius-8, 0.5, 0.5)
	}
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("divisions: %d  connections: %d", layout.Summary.Divisions, layout.Summary.Conns), 32, 64, 0, 0.5)
}

func renderSVG(opts SnapshotOptions, layout layoutResult) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorSpace)))
	canvas.Roundrect(16, 16, layout.Width-32, int(headerHeight-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("divisions: %d  connections: %d", layout.Summary.Divisions, layout.Summary.Conns),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, c := range layout.Curves {
		xs := make([]int, len(c.Points))
		ys := make([]int, len(c.Points))
		for i, p := range c.Points {
			xs[i] = int(p[0])
			ys[i] = int(p[1])
		}
		if c.Conn.Style.Glow {
			canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f;stroke-opacity:%.3f",
				c.Conn.Style.Color, c.Conn.Style.Width*layout.GlowWidth, c.Conn.GlowOpacity))
		}
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f;stroke-opacity:%.3f",
			c.Conn.Style.Color, c.Conn.Style.Width, c.Conn.Opacity)
		if c.Conn.Style.Dash {
			style += ";stroke-dasharray:6 4"
		}
		canvas.Polyline(xs, ys, style)
	}

	for _, p := range layout.Planets {
		canvas.Circle(int(p.X), int(p.Y), int(p.Radius),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(colorPlanet), css(colorPlanetRim)))
		if layout.Summary.ShowLabels {
			canvas.Text(int(p.X), int(p.Y-p.Radius-8), p.Label,
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))
		}
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseHex converts a "#rrggbb" string to RGBA. Malformed input renders
// white.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{r, g, b, 0xff}
}
