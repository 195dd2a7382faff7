package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrCoordinateOutOfRange 表示请求的坐标不在当前网格内，属于调用方违约。
var ErrCoordinateOutOfRange = errors.New("layout: 坐标超出网格范围")

// CoordinateOutOfRangeError 携带越界的坐标与当时的网格形状。
type CoordinateOutOfRangeError struct {
	Coordinate CellCoordinate
	Shape      GridShape
}

func (e *CoordinateOutOfRangeError) Error() string {
	return fmt.Sprintf("layout: 坐标 (%d,%d) 超出网格 %dx%d", e.Coordinate.Row, e.Coordinate.Column, e.Shape.Rows, e.Shape.Columns)
}

func (e *CoordinateOutOfRangeError) Unwrap() error { return ErrCoordinateOutOfRange }

// Engine 计算并缓存每个单元格的帧，让第 0 行/第 0 列跟随滚动偏移固定在视口边缘。
// Engine 不是并发安全的：所有调用须在同一条控制流上串行进行。
type Engine struct {
	source SizeSource
	opts   Options

	shape  GridShape
	offset ScrollOffset
	bounds Rect
	extent ContentExtent

	// frames 按 row*Columns+column 索引；形状不变时原地复用。
	frames []CellFrame
}

// NewEngine 创建布局引擎；source 只被查询，从不被修改。
func NewEngine(source SizeSource, opts Options) *Engine {
	return &Engine{source: source, opts: opts.withDefaults()}
}

// Shape 返回最近一次 Recompute 使用的网格形状。
func (e *Engine) Shape() GridShape { return e.shape }

// Offset 返回最近一次 Recompute 使用的滚动偏移。
func (e *Engine) Offset() ScrollOffset { return e.offset }

// Bounds 返回最近一次 Recompute 使用的视口。
func (e *Engine) Bounds() Rect { return e.bounds }

// ContentExtent 返回可滚动内容的总尺寸，与滚动偏移无关。
func (e *Engine) ContentExtent() ContentExtent { return e.extent }

// Recompute 重新计算所有帧。相同输入重复调用结果不变，
// 且形状不变时复用已有的帧存储。
func (e *Engine) Recompute(shape GridShape, offset ScrollOffset, bounds Rect) {
	if shape.Rows < 0 {
		shape.Rows = 0
	}
	if shape.Columns < 0 {
		shape.Columns = 0
	}
	if shape != e.shape || len(e.frames) != shape.Count() {
		e.frames = make([]CellFrame, shape.Count())
	}
	e.shape = shape
	e.offset = offset
	e.bounds = bounds

	// 尺寸来源只缺部分单元格时，默认尺寸与实际尺寸混在一起；
	// 先取每行最高、每列最宽，保证同行等高、同列等宽。
	columnWidths := make([]float64, shape.Columns)
	rowHeights := make([]float64, shape.Rows)
	for row := 0; row < shape.Rows; row++ {
		for col := 0; col < shape.Columns; col++ {
			size := e.sizeOf(CellCoordinate{Row: row, Column: col})
			columnWidths[col] = math.Max(columnWidths[col], size.Width)
			rowHeights[row] = math.Max(rowHeights[row], size.Height)
		}
	}

	contentWidth := 0.0
	contentHeight := 0.0
	for row := 0; row < shape.Rows; row++ {
		yPos := contentHeight
		if row == 0 {
			yPos = offset.Y
		}
		sectionContentWidth := 0.0
		for col := 0; col < shape.Columns; col++ {
			coord := CellCoordinate{Row: row, Column: col}
			xPos := sectionContentWidth
			if col == 0 {
				xPos = offset.X
			}
			f := &e.frames[row*shape.Columns+col]
			f.Coordinate = coord
			f.Origin = Point{X: xPos, Y: yPos}
			f.Size = CellSize{Width: columnWidths[col], Height: rowHeights[row]}
			f.StackOrder = coord.Class().StackOrder()

			sectionContentWidth += columnWidths[col]
		}
		contentHeight += rowHeights[row]
		contentWidth = sectionContentWidth
	}
	e.extent = ContentExtent{Width: contentWidth, Height: contentHeight}
}

func (e *Engine) sizeOf(c CellCoordinate) CellSize {
	if e.source != nil {
		if size, ok := e.source.SizeOf(c); ok {
			return size
		}
	}
	return e.opts.DefaultSize
}

// FrameFor 返回单元格在当前布局状态下的帧。
// 坐标越界是调用方违约，直接 panic（*CoordinateOutOfRangeError）。
func (e *Engine) FrameFor(c CellCoordinate) CellFrame {
	if !e.shape.Contains(c) {
		panic(&CoordinateOutOfRangeError{Coordinate: c, Shape: e.shape})
	}
	return e.frames[c.Row*e.shape.Columns+c.Column]
}

// VisibleFrames 返回与 query 相交的所有帧的拷贝，顺序不作保证。
func (e *Engine) VisibleFrames(query Rect) []CellFrame {
	out := make([]CellFrame, 0)
	for _, f := range e.frames {
		if f.Rect().Intersects(query) {
			out = append(out, f)
		}
	}
	return out
}

// Snapshot 拷贝当前完整布局状态。
func (e *Engine) Snapshot() Snapshot {
	frames := make([]CellFrame, len(e.frames))
	copy(frames, e.frames)
	return Snapshot{
		Shape:  e.shape,
		Offset: e.offset,
		Bounds: e.bounds,
		Extent: e.extent,
		Frames: frames,
	}
}

// ClampOffset 把偏移限制在 [0, extent-bounds] 内（按轴独立处理）。
func (e *Engine) ClampOffset(o ScrollOffset) ScrollOffset {
	clamp := func(v, extent, viewport float64) float64 {
		limit := math.Max(extent-viewport, 0)
		return math.Min(math.Max(v, 0), limit)
	}
	return ScrollOffset{
		X: clamp(o.X, e.extent.Width, e.bounds.Width),
		Y: clamp(o.Y, e.extent.Height, e.bounds.Height),
	}
}

// SortByStack 按叠放次序升序排列（低层先画），同层按行列排序，保证输出稳定。
func SortByStack(frames []CellFrame) {
	sort.SliceStable(frames, func(i, j int) bool {
		a, b := frames[i], frames[j]
		if a.StackOrder != b.StackOrder {
			return a.StackOrder < b.StackOrder
		}
		if a.Coordinate.Row != b.Coordinate.Row {
			return a.Coordinate.Row < b.Coordinate.Row
		}
		return a.Coordinate.Column < b.Coordinate.Column
	})
}
