// Package render draws simulation frames as SVG, HTML, JSON, DOT or ASCII.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TFMV/kolgraph/physics"
)

// ErrUnsupportedFormat is returned by GetRenderer for unknown formats
var ErrUnsupportedFormat = errors.New("unsupported output format")

// DefaultLabelOffset is the vertical distance from a KOL node's center to
// its label baseline
const DefaultLabelOffset = 25.0

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format      string  // Output format (svg, html, json, dot, ascii)
	Title       string  // Document title
	ColorScheme string  // Palette name (default, dark)
	FontSize    float64 // Font size for labels
	LabelOffset float64 // Vertical offset of KOL labels from node center
	Timestamp   bool    // Include a generation timestamp

	// SessionURL makes the HTML page live: it polls SessionURL+"/frame" and
	// sends pin updates while a node is dragged
	SessionURL string
	PollMillis int
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render draws one frame using the provided options
	Render(frame *physics.Frame, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string

	// ContentType is the MIME type of the rendered output
	ContentType() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:      format,
		Title:       "HCP Influence Network",
		ColorScheme: "default",
		FontSize:    11,
		LabelOffset: DefaultLabelOffset,
		PollMillis:  100,
	}
}

// Formats lists the supported output formats
func Formats() []string {
	return []string{"svg", "html", "json", "dot", "ascii"}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "ascii", "text":
		return &ASCIIRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Generate advances state by steps and renders the resulting frame in format
func Generate(ctx context.Context, state *physics.State, steps int, format string) ([]byte, error) {
	return GenerateWithOptions(ctx, state, steps, NewDefaultOptions(format))
}

// GenerateWithOptions advances state by steps and renders the result. The
// context is checked between steps.
func GenerateWithOptions(ctx context.Context, state *physics.State, steps int, options *OutputOptions) ([]byte, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("layout interrupted after %d steps: %w", i, err)
		}
		state.Step()
	}

	return renderer.Render(state.Snapshot(), options)
}

// EdgeStyle is the stroke used for one edge
type EdgeStyle struct {
	Opacity float64
	Width   float64
}

// StyleEdge maps strength to stroke. Both opacity and width grow with
// strength/maxStrength; a non-positive max draws every edge at the minimum.
func StyleEdge(strength, maxStrength float64) EdgeStyle {
	s := 0.0
	if maxStrength > 0 {
		s = strength / maxStrength
	}
	s = clampf(s, 0, 1)
	return EdgeStyle{
		Opacity: 0.15 + 0.75*s,
		Width:   0.5 + 3.5*s,
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func options(o *OutputOptions, format string) *OutputOptions {
	if o == nil {
		return NewDefaultOptions(format)
	}
	return o
}
