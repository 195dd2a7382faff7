package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/stickygrid/geometry"
)

// Typesetter measures text in terminal cells: one unit per column, one per line.
type Typesetter struct{}

var _ geometry.Typesetter = Typesetter{}

// LayoutLines wraps content to width columns. style.Wrap "nowrap" only splits
// on explicit newlines.
func (Typesetter) LayoutLines(content string, width float64, style geometry.TextStyle) ([]geometry.TextLine, error) {
	w := int(width)
	if w < 1 {
		w = 1
	}
	wrapped := content
	if style.Wrap != "nowrap" {
		wrapped = lipgloss.NewStyle().Width(w).Render(content)
	}
	parts := strings.Split(wrapped, "\n")
	lines := make([]geometry.TextLine, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(p, " ")
		lines = append(lines, geometry.TextLine{Content: p, Width: float64(lipgloss.Width(p)), Height: 1})
	}
	return lines, nil
}

// Metrics returns grid metrics in terminal cells.
func Metrics() geometry.Metrics {
	return geometry.Metrics{
		PinnedColumnWidth: 14,
		BodyColumnWidth:   12,
		MinimumRowHeight:  1,
		VerticalPadding:   0,
		HorizontalPadding: 1,
		MaxMeasureHeight:  3,
		Style:             geometry.TextStyle{Size: 1, LineHeight: 1, Wrap: "anywhere"},
	}
}
