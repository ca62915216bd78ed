package render

import (
	"strings"

	"github.com/TFMV/kolgraph/physics"
)

// Palette provides color schemes for network visualization
type Palette struct {
	NodeColors []string
	EdgeColors map[string]string // by edge type; "" is the fallback
	Background string
	Text       string
	Stroke     string
	KOLGold    [3]string // radial gradient stops, center to rim
}

// DefaultPalette returns the light dashboard palette
func DefaultPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#4285F4", // Blue
			"#EA4335", // Red
			"#34A853", // Green
			"#673AB7", // Purple
			"#00BCD4", // Cyan
			"#FF5722", // Deep Orange
			"#3F51B5", // Indigo
			"#009688", // Teal
		},
		EdgeColors: map[string]string{
			"":            "#888888",
			"research":    "#5C6BC0",
			"referral":    "#26A69A",
			"conference":  "#AB47BC",
			"advisory":    "#8D6E63",
			"publication": "#42A5F5",
			"trial":       "#EF5350",
		},
		Background: "#f8f8f8",
		Text:       "#333333",
		Stroke:     "rgba(0,0,0,0.35)",
		KOLGold:    [3]string{"#FFF6C2", "#F5C518", "#B8860B"},
	}
}

// DarkPalette returns a palette for dark backgrounds
func DarkPalette() *Palette {
	return &Palette{
		NodeColors: []string{
			"#2979FF", // Blue
			"#F50057", // Pink
			"#00E676", // Green
			"#651FFF", // Deep Purple
			"#00B0FF", // Light Blue
			"#FF3D00", // Deep Orange
			"#C6FF00", // Lime
			"#00BFA5", // Teal
		},
		EdgeColors: map[string]string{
			"": "#9E9E9E",
		},
		Background: "#212121",
		Text:       "#EEEEEE",
		Stroke:     "rgba(255,255,255,0.4)",
		KOLGold:    [3]string{"#FFF8D6", "#FFD54F", "#C79100"},
	}
}

// PaletteFor returns the palette for a color scheme name
func PaletteFor(scheme string) *Palette {
	switch strings.ToLower(scheme) {
	case "dark":
		return DarkPalette()
	default:
		return DefaultPalette()
	}
}

// EdgeColor returns the stroke color for an edge type
func (p *Palette) EdgeColor(edgeType string) string {
	if c, ok := p.EdgeColors[strings.ToLower(edgeType)]; ok {
		return c
	}
	return p.EdgeColors[""]
}

// CategoryColors assigns palette colors to categories in order of first
// appearance in the frame
func (p *Palette) CategoryColors(frame *physics.Frame) map[string]string {
	colors := make(map[string]string)
	for _, n := range frame.Nodes {
		if _, ok := colors[n.Category]; !ok {
			colors[n.Category] = p.NodeColors[len(colors)%len(p.NodeColors)]
		}
	}
	return colors
}
