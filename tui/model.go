package tui

import (
	"fmt"
	"io"
	"log"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
)

const (
	headerHeight = 1
	wheelStep    = 3
)

// Options configures the terminal host.
type Options struct {
	Title string
	Snap  bool
	// Logger receives missing-content diagnostics; nil discards them so the
	// alternate screen is not corrupted.
	Logger *log.Logger
}

type Model struct {
	width  int
	height int

	title  string
	status string

	engine *layout.Engine
	cells  *geometry.Provider
	shape  layout.GridShape
	offset layout.ScrollOffset
	snap   bool

	keys keyMap
	help help.Model
}

// New measures src in terminal cells and prepares a scrollable grid view.
func New(src geometry.Content, opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cells, err := geometry.New(src, Typesetter{}, Metrics(), geometry.Options{Logger: logger})
	if err != nil {
		return Model{}, err
	}
	m := Model{
		title:  opts.Title,
		cells:  cells,
		shape:  cells.Shape(),
		snap:   opts.Snap,
		keys:   defaultKeys(),
		help:   help.New(),
		engine: layout.NewEngine(cells, layout.Options{DefaultSize: layout.CellSize{Width: 12, Height: 1}}),
	}
	if m.title == "" {
		m.title = "stickygrid"
	}
	m.status = fmt.Sprintf("%dx%d cells", m.shape.Rows, m.shape.Columns)
	if n := len(cells.Diagnostics()); n > 0 {
		m.status += fmt.Sprintf("  %d missing", n)
	}
	m.engine.Recompute(m.shape, m.offset, layout.Rect{})
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

// Offset returns the current scroll offset in terminal cells.
func (m Model) Offset() layout.ScrollOffset { return m.offset }

// Snapshot returns the engine state behind the current view.
func (m Model) Snapshot() layout.Snapshot { return m.engine.Snapshot() }

func (m Model) gridSize() (int, int) {
	h := m.height - headerHeight - m.helpHeight()
	return max(m.width, 0), max(h, 0)
}

func (m Model) helpHeight() int {
	if m.help.ShowAll {
		return len(m.keys.FullHelp()[0])
	}
	return 1
}

func (m *Model) relayout() {
	w, h := m.gridSize()
	m.engine.Recompute(m.shape, m.offset, layout.Rect{Width: float64(w), Height: float64(h)})
}

// scrollTo clamps (and optionally snaps) a proposed offset, then recomputes.
func (m *Model) scrollTo(proposed layout.ScrollOffset, v layout.Velocity) {
	target := m.engine.ClampOffset(proposed)
	if m.snap {
		target = m.engine.ClampOffset(m.engine.SnapTarget(target, v))
	}
	m.offset = target
	m.relayout()
}

func (m *Model) scrollBy(dx, dy float64) {
	if m.snap {
		dx = m.boundaryDelta(m.columnWidths(), m.offset.X, dx)
		dy = m.boundaryDelta(m.rowHeights(), m.offset.Y, dy)
	}
	m.scrollTo(layout.ScrollOffset{X: m.offset.X + dx, Y: m.offset.Y + dy}, layout.Velocity{X: dx, Y: dy})
}

// boundaryDelta returns the distance from offset to the neighbouring cell
// boundary in the direction of d. sizes[0] is the pinned cell.
func (m *Model) boundaryDelta(sizes []float64, offset, d float64) float64 {
	if d == 0 || len(sizes) < 2 {
		return d
	}
	const eps = 1e-9
	bounds := make([]float64, 0, len(sizes))
	acc := 0.0
	for _, size := range sizes[1:] {
		bounds = append(bounds, acc)
		acc += size
	}
	bounds = append(bounds, acc)
	if d > 0 {
		for _, b := range bounds {
			if b > offset+eps {
				return b - offset
			}
		}
		return d
	}
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < offset-eps {
			return bounds[i] - offset
		}
	}
	return d
}

func (m *Model) rowHeights() []float64 {
	out := make([]float64, m.shape.Rows)
	if m.shape.Columns == 0 {
		return out
	}
	for r := range out {
		out[r] = m.engine.FrameFor(layout.CellCoordinate{Row: r}).Size.Height
	}
	return out
}

func (m *Model) columnWidths() []float64 {
	out := make([]float64, m.shape.Columns)
	if m.shape.Rows == 0 {
		return out
	}
	for c := range out {
		out[c] = m.engine.FrameFor(layout.CellCoordinate{Column: c}).Size.Width
	}
	return out
}

func (m Model) pinnedSize() layout.CellSize {
	if m.shape.Count() == 0 {
		return layout.CellSize{}
	}
	return m.engine.FrameFor(layout.CellCoordinate{}).Size
}
