package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/TFMV/kolgraph/physics"
)

// JSONRenderer outputs the frame with resolved colors and edge styles
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders the frame as JSON for machine consumption or custom visualizations"
}

// ContentType returns the MIME type
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

type jsonEdge struct {
	physics.FrameEdge
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Width   float64 `json:"width"`
}

type jsonNode struct {
	physics.FrameNode
	Color string `json:"color"`
}

type jsonScene struct {
	Tick     uint64         `json:"tick"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Nodes    []jsonNode     `json:"nodes"`
	Edges    []jsonEdge     `json:"edges"`
	Metadata map[string]any `json:"metadata"`
}

// Render creates a JSON representation of the frame
func (r *JSONRenderer) Render(frame *physics.Frame, opts *OutputOptions) ([]byte, error) {
	opts = options(opts, "json")
	palette := PaletteFor(opts.ColorScheme)
	colors := palette.CategoryColors(frame)
	maxStrength := frame.MaxStrength()

	scene := jsonScene{
		Tick:   frame.Tick,
		Width:  frame.Width,
		Height: frame.Height,
		Nodes:  make([]jsonNode, len(frame.Nodes)),
		Edges:  make([]jsonEdge, len(frame.Edges)),
		Metadata: map[string]any{
			"title":       opts.Title,
			"background":  palette.Background,
			"nodeCount":   len(frame.Nodes),
			"edgeCount":   len(frame.Edges),
			"maxStrength": maxStrength,
			"labelOffset": opts.LabelOffset,
			"kolGradient": palette.KOLGold,
		},
	}
	if opts.Timestamp {
		scene.Metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}

	for i, n := range frame.Nodes {
		scene.Nodes[i] = jsonNode{FrameNode: n, Color: colors[n.Category]}
	}
	for i, e := range frame.Edges {
		style := StyleEdge(e.Strength, maxStrength)
		scene.Edges[i] = jsonEdge{FrameEdge: e, Color: palette.EdgeColor(e.Type), Opacity: style.Opacity, Width: style.Width}
	}

	return json.MarshalIndent(scene, "", "  ")
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the network in Graphviz DOT format with pinned positions"
}

// ContentType returns the MIME type
func (r *DOTRenderer) ContentType() string {
	return "text/vnd.graphviz"
}

// Render creates a DOT representation of the frame. Positions are in points
// with the y axis flipped to Graphviz orientation.
func (r *DOTRenderer) Render(frame *physics.Frame, opts *OutputOptions) ([]byte, error) {
	opts = options(opts, "dot")
	palette := PaletteFor(opts.ColorScheme)
	colors := palette.CategoryColors(frame)
	maxStrength := frame.MaxStrength()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, label=%q, size=\"%g,%g\"];\n",
		palette.Background, opts.Title, frame.Width/72.0, frame.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fontname=\"Arial\", fontsize=%g];\n", opts.FontSize)

	for _, n := range frame.Nodes {
		fill := colors[n.Category]
		label := ""
		extra := ""
		if n.KOL {
			fill = palette.KOLGold[1]
			label = n.Name
			extra = ", penwidth=2"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, tooltip=%q, fillcolor=%q, width=%.3f, pos=\"%.2f,%.2f!\"%s];\n",
			n.ID, label, n.Name, fill, 2*n.Radius/72.0, n.X, frame.Height-n.Y, extra)
	}

	for _, e := range frame.Edges {
		style := StyleEdge(e.Strength, maxStrength)
		fmt.Fprintf(&buf, "  %q -- %q [color=%q, penwidth=%.3f, weight=%g];\n",
			e.Source, e.Target, palette.EdgeColor(e.Type)+alphaHex(style.Opacity), style.Width, e.Strength)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func alphaHex(opacity float64) string {
	return fmt.Sprintf("%02X", int(clampf(opacity, 0, 1)*255+0.5))
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders the network as text for terminal output"
}

// ContentType returns the MIME type
func (r *ASCIIRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Glyphs used on the ASCII grid
const (
	GlyphNode = 'o'
	GlyphKOL  = '@'
	GlyphEdge = '.'
)

// Render creates an ASCII representation of the frame
func (r *ASCIIRenderer) Render(frame *physics.Frame, opts *OutputOptions) ([]byte, error) {
	opts = options(opts, "ascii")
	cols := max(int(frame.Width/10), 40)
	rows := max(int(frame.Height/20), 20)

	grid := Grid(frame, cols, rows)

	title := opts.Title
	if len(title) < cols-4 {
		copy(grid[0][2:], []rune(title))
	}
	if opts.Timestamp {
		ts := time.Now().Format("2006-01-02 15:04")
		if len(ts) < cols-4 {
			copy(grid[rows-1][2:], []rune(ts))
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

// Grid rasterizes the frame onto a bordered cols x rows rune grid: edges,
// then nodes, then KOL labels one row below their node.
func Grid(frame *physics.Frame, cols, rows int) [][]rune {
	cols = max(cols, 3)
	rows = max(rows, 3)

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = make([]rune, cols)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < cols; i++ {
		grid[0][i] = '-'
		grid[rows-1][i] = '-'
	}
	for i := 0; i < rows; i++ {
		grid[i][0] = '|'
		grid[i][cols-1] = '|'
	}
	grid[0][0], grid[0][cols-1] = '+', '+'
	grid[rows-1][0], grid[rows-1][cols-1] = '+', '+'

	for _, e := range frame.Edges {
		a, b := frame.Nodes[e.From], frame.Nodes[e.To]
		x1, y1 := Cell(frame, a.X, a.Y, cols, rows)
		x2, y2 := Cell(frame, b.X, b.Y, cols, rows)
		drawLine(grid, x1, y1, x2, y2)
	}

	for _, n := range frame.Nodes {
		x, y := Cell(frame, n.X, n.Y, cols, rows)
		if n.KOL {
			grid[y][x] = GlyphKOL
		} else if grid[y][x] != GlyphKOL {
			grid[y][x] = GlyphNode
		}
	}

	for _, n := range frame.Nodes {
		if !n.KOL {
			continue
		}
		x, y := Cell(frame, n.X, n.Y, cols, rows)
		if y+1 >= rows-1 {
			continue
		}
		label := []rune(n.Name)
		start := clampInt(x-len(label)/2, 1, cols-2)
		for i := 0; i < len(label) && start+i < cols-1; i++ {
			if c := grid[y+1][start+i]; c == GlyphNode || c == GlyphKOL {
				continue
			}
			grid[y+1][start+i] = label[i]
		}
	}

	return grid
}

// Cell maps viewport coordinates to an interior cell of a cols x rows grid
func Cell(frame *physics.Frame, x, y float64, cols, rows int) (int, int) {
	cx, cy := 1, 1
	if frame.Width > 0 {
		cx = int(x*float64(cols-2)/frame.Width) + 1
	}
	if frame.Height > 0 {
		cy = int(y*float64(rows-2)/frame.Height) + 1
	}
	return clampInt(cx, 1, cols-2), clampInt(cy, 1, rows-2)
}

// Clamp a value between lo and hi
func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Draw a line on the ASCII grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 >= x2 {
		sx = -1
	}
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if grid[y1][x1] == ' ' {
			grid[y1][x1] = GlyphEdge
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
