package geometry

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/ByLCY/stickygrid/layout"
)

// PlaceholderText 替代缺失内容的可见占位文本。
const PlaceholderText = "⚠ missing"

// Options 配置 Provider 的诊断行为。
type Options struct {
	// Logger 接收内容缺失等诊断信息，nil 时使用 log.Default()。
	Logger *log.Logger
	// Strict 为 true 时，内容缺失按断言处理：经 Logger.Panicf 记录后 panic。
	Strict bool
}

// Provider 预先计算并缓存每个单元格的固有尺寸。构造完成后不可变。
type Provider struct {
	shape      layout.GridShape
	metrics    Metrics
	rowHeights []float64
	texts      []string
	lines      [][]TextLine
	missing    []error
}

var _ layout.SizeSource = (*Provider)(nil)

// New 测量所有单元格并缓存行高。缺失内容会被占位文本替换并记录诊断，
// 不会中断其余单元格的布局；排版后端出错则直接返回错误。
func New(src Content, ts Typesetter, m Metrics, opts Options) (*Provider, error) {
	if src == nil {
		return nil, fmt.Errorf("geometry: 缺少数据源")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	shape := src.Shape()
	p := &Provider{
		shape:      shape,
		metrics:    m,
		rowHeights: make([]float64, max(shape.Rows, 0)),
		texts:      make([]string, shape.Count()),
		lines:      make([][]TextLine, shape.Count()),
	}

	for row := 0; row < shape.Rows; row++ {
		rowHeight := m.MinimumRowHeight
		for col := 0; col < shape.Columns; col++ {
			coord := layout.CellCoordinate{Row: row, Column: col}
			text, ok := src.Text(coord)
			if !ok {
				err := &MissingContentError{Coordinate: coord}
				if opts.Strict {
					logger.Panicf("%v", err)
				}
				logger.Printf("%v，使用占位内容", err)
				p.missing = append(p.missing, err)
				text = PlaceholderText
			}
			lines, err := layoutLines(text, p.constrainedWidth(col), m.Style, ts)
			if err != nil {
				return nil, fmt.Errorf("geometry: 测量单元格 (%d,%d) 失败: %w", row, col, err)
			}
			idx := row*shape.Columns + col
			p.texts[idx] = text
			p.lines[idx] = lines
			rowHeight = math.Max(rowHeight, p.contentHeight(lines))
		}
		p.rowHeights[row] = rowHeight
	}
	return p, nil
}

// SizeOf 实现 layout.SizeSource；坐标不在网格内时返回 false。
func (p *Provider) SizeOf(c layout.CellCoordinate) (layout.CellSize, bool) {
	if !p.shape.Contains(c) {
		return layout.CellSize{}, false
	}
	return layout.CellSize{Width: p.columnWidth(c.Column), Height: p.rowHeights[c.Row]}, true
}

// Shape 返回构造时的网格形状。
func (p *Provider) Shape() layout.GridShape { return p.shape }

// Text 返回单元格的显示文本（缺失时为占位文本）。
func (p *Provider) Text(c layout.CellCoordinate) string {
	if !p.shape.Contains(c) {
		return ""
	}
	return p.texts[c.Row*p.shape.Columns+c.Column]
}

// Lines 返回测量时得到的文本行，渲染器可直接绘制。
func (p *Provider) Lines(c layout.CellCoordinate) []TextLine {
	if !p.shape.Contains(c) {
		return nil
	}
	return p.lines[c.Row*p.shape.Columns+c.Column]
}

// Metrics 返回构造时使用的度量。
func (p *Provider) Metrics() Metrics { return p.metrics }

// Diagnostics 返回构造期间记录的内容缺失错误。
func (p *Provider) Diagnostics() []error {
	out := make([]error, len(p.missing))
	copy(out, p.missing)
	return out
}

func (p *Provider) columnWidth(col int) float64 {
	if col == 0 {
		return p.metrics.PinnedColumnWidth
	}
	return p.metrics.BodyColumnWidth
}

func (p *Provider) constrainedWidth(col int) float64 {
	w := p.columnWidth(col) - 2*p.metrics.HorizontalPadding
	if w <= 0 {
		w = p.columnWidth(col)
	}
	return w
}

// contentHeight = ceil(min(文本总高, 软上限)) + 上下内边距。
func (p *Provider) contentHeight(lines []TextLine) float64 {
	total := 0.0
	for _, ln := range lines {
		total += ln.GapBefore + ln.Height
	}
	if limit := p.metrics.MaxMeasureHeight; limit > 0 && total > limit {
		total = limit
	}
	return math.Ceil(total) + 2*p.metrics.VerticalPadding
}

func layoutLines(content string, width float64, style TextStyle, ts Typesetter) ([]TextLine, error) {
	textHeight := style.Size
	if textHeight <= 0 {
		textHeight = 12
	}
	if ts == nil {
		parts := strings.Split(content, "\n")
		leading := math.Max(style.LineHeight-textHeight, 0)
		out := make([]TextLine, 0, len(parts))
		for i, l := range parts {
			gap := leading
			if i == 0 {
				gap = 0
			}
			out = append(out, TextLine{Content: l, Width: width, Height: textHeight, GapBefore: gap})
		}
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, style)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: textHeight}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}
