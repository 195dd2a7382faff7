package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/stickygrid/layout"
)

type screenCell struct {
	r      rune
	class  layout.CellClass
	border bool
	// cont marks the second column of a double-width rune.
	cont bool
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	w, h := m.gridSize()

	header := titleStyle.Render(" "+m.title+" ") + dimStyle.Render(" "+m.status)
	header = lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).Render(header)

	parts := []string{header}
	if h > 0 && w > 0 {
		parts = append(parts, m.renderGrid(w, h))
	}
	parts = append(parts, m.help.View(m.keys))
	ui := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return appStyle.Width(m.width).Height(m.height).Render(ui)
}

// renderGrid paints visible frames in stack order into a w×h buffer, so the
// pinned row, pinned column and corner overwrite whatever scrolled beneath them.
func (m Model) renderGrid(w, h int) string {
	buf := make([][]screenCell, h)
	for y := range buf {
		buf[y] = make([]screenCell, w)
		for x := range buf[y] {
			buf[y][x] = screenCell{r: ' ', class: layout.ClassBody}
		}
	}
	set := func(x, y int, c screenCell) {
		if y < 0 || y >= h || x < 0 || x >= w {
			return
		}
		buf[y][x] = c
	}

	snap := m.engine.Snapshot()
	viewport := layout.Rect{X: snap.Offset.X, Y: snap.Offset.Y, Width: float64(w), Height: float64(h)}
	frames := make([]layout.CellFrame, 0, len(snap.Frames))
	for _, f := range snap.Frames {
		if f.Rect().Intersects(viewport) {
			frames = append(frames, f)
		}
	}
	layout.SortByStack(frames)

	metrics := m.cells.Metrics()
	padX := int(metrics.HorizontalPadding)
	padY := int(metrics.VerticalPadding)
	for _, f := range frames {
		x0 := int(math.Round(f.Origin.X - snap.Offset.X))
		y0 := int(math.Round(f.Origin.Y - snap.Offset.Y))
		fw := int(math.Round(f.Size.Width))
		fh := int(math.Round(f.Size.Height))
		if fw <= 0 || fh <= 0 {
			continue
		}
		class := f.Coordinate.Class()
		for y := y0; y < y0+fh; y++ {
			for x := x0; x < x0+fw-1; x++ {
				set(x, y, screenCell{r: ' ', class: class})
			}
			set(x0+fw-1, y, screenCell{r: '│', class: class, border: true})
		}

		textRight := x0 + fw - 1
		ty := y0 + padY
		for _, ln := range m.cells.Lines(f.Coordinate) {
			ty += int(math.Round(ln.GapBefore))
			if ty >= y0+fh-padY {
				break
			}
			tx := x0 + padX
			for _, r := range ln.Content {
				rw := runewidth.RuneWidth(r)
				if rw == 0 {
					continue
				}
				if tx+rw > textRight {
					break
				}
				set(tx, ty, screenCell{r: r, class: class})
				if rw == 2 {
					set(tx+1, ty, screenCell{class: class, cont: true})
				}
				tx += rw
			}
			ty += max(1, int(math.Round(ln.Height)))
		}
	}

	rows := make([]string, h)
	for y, row := range buf {
		rows[y] = renderRow(row)
	}
	return strings.Join(rows, "\n")
}

// renderRow groups runs of equally styled cells. Wide runes that were split by
// an overlapping frame degrade to spaces so the row keeps its width.
func renderRow(row []screenCell) string {
	var out strings.Builder
	var run strings.Builder
	var current lipgloss.Style
	started := false
	flush := func() {
		if run.Len() > 0 {
			out.WriteString(current.Render(run.String()))
			run.Reset()
		}
	}
	for x, c := range row {
		r := c.r
		switch {
		case c.cont:
			if x > 0 && runewidth.RuneWidth(row[x-1].r) == 2 && !row[x-1].cont {
				continue
			}
			r = ' '
		case runewidth.RuneWidth(r) == 2:
			if x+1 >= len(row) || !row[x+1].cont {
				r = ' '
			}
		}
		style := styleFor(c.class, c.border)
		if !started || !sameStyle(style, current) {
			flush()
			current = style
			started = true
		}
		run.WriteRune(r)
	}
	flush()
	return out.String()
}

func styleFor(class layout.CellClass, border bool) lipgloss.Style {
	var s lipgloss.Style
	switch class {
	case layout.ClassCorner:
		s = cornerStyle
	case layout.ClassPinnedRow:
		s = headerStyle
	case layout.ClassPinnedColumn:
		s = columnStyle
	default:
		s = bodyStyle
	}
	if border {
		s = s.Foreground(borderStyle.GetForeground())
	}
	return s
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.GetBackground() == b.GetBackground() &&
		a.GetForeground() == b.GetForeground() &&
		a.GetBold() == b.GetBold()
}
