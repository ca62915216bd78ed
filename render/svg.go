package render

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/TFMV/kolgraph/physics"
)

// kolGradientID is the id of the radial gradient filling KOL nodes
const kolGradientID = "kol-gold"

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders the network as Scalable Vector Graphics, edges beneath nodes"
}

// ContentType returns the MIME type
func (r *SVGRenderer) ContentType() string {
	return "image/svg+xml"
}

// Render creates an SVG representation of the frame
func (r *SVGRenderer) Render(frame *physics.Frame, opts *OutputOptions) ([]byte, error) {
	opts = options(opts, "svg")
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	writeSVG(&buf, frame, opts, PaletteFor(opts.ColorScheme))
	return buf.Bytes(), nil
}

// writeSVG draws the <svg> element without an XML prolog so the HTML page
// can inline it
func writeSVG(buf *bytes.Buffer, frame *physics.Frame, opts *OutputOptions, palette *Palette) {
	fmt.Fprintf(buf, `<svg id="network" width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
  <radialGradient id="%s" cx="35%%" cy="35%%" r="65%%">
    <stop offset="0%%" stop-color="%s"/>
    <stop offset="55%%" stop-color="%s"/>
    <stop offset="100%%" stop-color="%s"/>
  </radialGradient>
</defs>
`, frame.Width, frame.Height, frame.Width, frame.Height, palette.Background,
		kolGradientID, palette.KOLGold[0], palette.KOLGold[1], palette.KOLGold[2])

	// Edges first so nodes sit on top
	maxStrength := frame.MaxStrength()
	buf.WriteString(`<g class="edges">` + "\n")
	for i, e := range frame.Edges {
		from, to := frame.Nodes[e.From], frame.Nodes[e.To]
		style := StyleEdge(e.Strength, maxStrength)
		fmt.Fprintf(buf, `  <line data-edge="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f" stroke-width="%.3f"/>`+"\n",
			i, from.X, from.Y, to.X, to.Y, palette.EdgeColor(e.Type), style.Opacity, style.Width)
	}
	buf.WriteString("</g>\n")

	colors := palette.CategoryColors(frame)
	buf.WriteString(`<g class="nodes">` + "\n")
	for i, n := range frame.Nodes {
		fill := colors[n.Category]
		strokeWidth := 1.0
		if n.KOL {
			fill = "url(#" + kolGradientID + ")"
			strokeWidth = 2
		}
		fmt.Fprintf(buf, `  <circle data-node="%d" data-id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%g"><title>%s</title></circle>`+"\n",
			i, html.EscapeString(n.ID), n.X, n.Y, n.Radius, fill, palette.Stroke, strokeWidth, tooltip(n))
	}
	buf.WriteString("</g>\n")

	buf.WriteString(`<g class="labels">` + "\n")
	for i, n := range frame.Nodes {
		if !n.KOL {
			continue
		}
		fmt.Fprintf(buf, `  <text data-label="%d" x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>`+"\n",
			i, n.X, n.Y+opts.LabelOffset, opts.FontSize, palette.Text, html.EscapeString(n.Name))
	}
	buf.WriteString("</g>\n")

	if opts.Timestamp {
		fmt.Fprintf(buf, `<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>`+"\n",
			frame.Height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	buf.WriteString("</svg>\n")
}

func tooltip(n physics.FrameNode) string {
	s := fmt.Sprintf("%s\n%s\nInfluence: %g", n.Name, n.Category, n.InfluenceScore)
	if n.KOL {
		s += "\nKey Opinion Leader"
	}
	return html.EscapeString(s)
}
