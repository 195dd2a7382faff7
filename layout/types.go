package layout

// 该文件定义网格布局的基础类型，供布局计算、渲染与调试 JSON 共用。

// GridShape 描述网格的行列数，在一次布局会话内保持不变。
type GridShape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Count 返回单元格总数。
func (s GridShape) Count() int {
	if s.Rows <= 0 || s.Columns <= 0 {
		return 0
	}
	return s.Rows * s.Columns
}

// Contains 判断坐标是否落在网格内。
func (s GridShape) Contains(c CellCoordinate) bool {
	return c.Row >= 0 && c.Row < s.Rows && c.Column >= 0 && c.Column < s.Columns
}

// CellCoordinate 唯一标识一个单元格；第 0 行与第 0 列为固定行/列。
type CellCoordinate struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// CellClass 区分单元格在固定关系中的类别。
type CellClass int

const (
	ClassBody         CellClass = iota // row > 0 且 column > 0
	ClassPinnedColumn                  // column == 0, row > 0
	ClassPinnedRow                     // row == 0, column > 0
	ClassCorner                        // row == 0 且 column == 0
)

func (c CellClass) String() string {
	switch c {
	case ClassCorner:
		return "corner"
	case ClassPinnedRow:
		return "pinned-row"
	case ClassPinnedColumn:
		return "pinned-column"
	default:
		return "body"
	}
}

// Class 返回坐标所属的类别。
func (c CellCoordinate) Class() CellClass {
	switch {
	case c.Row == 0 && c.Column == 0:
		return ClassCorner
	case c.Row == 0:
		return ClassPinnedRow
	case c.Column == 0:
		return ClassPinnedColumn
	default:
		return ClassBody
	}
}

// 叠放次序：数值越大越靠上。
const (
	StackBody         = 1
	StackPinnedColumn = 2
	StackPinnedRow    = 3
	StackCorner       = 4
)

// StackOrder 返回类别对应的叠放次序。
func (c CellClass) StackOrder() int {
	switch c {
	case ClassCorner:
		return StackCorner
	case ClassPinnedRow:
		return StackPinnedRow
	case ClassPinnedColumn:
		return StackPinnedColumn
	default:
		return StackBody
	}
}

// CellSize 是单元格的固有尺寸，只由内容决定，与滚动状态无关。
type CellSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point 表示内容平面中的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 以左上角 + 宽高描述矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right 返回右边缘的 x 坐标（不含）。
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom 返回下边缘的 y 坐标（不含）。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty 判断矩形面积是否为零或负。
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects 判断两个矩形是否有重叠面积；仅共享边不算相交。
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// CellFrame 是某个单元格在当前滚动偏移下可直接渲染的几何信息。
type CellFrame struct {
	Coordinate CellCoordinate `json:"coordinate"`
	Origin     Point          `json:"origin"`
	Size       CellSize       `json:"size"`
	StackOrder int            `json:"stackOrder"`
}

// Rect 返回帧在内容平面中的矩形。
func (f CellFrame) Rect() Rect {
	return Rect{X: f.Origin.X, Y: f.Origin.Y, Width: f.Size.Width, Height: f.Size.Height}
}

// ContentExtent 是可滚动内容的总尺寸：所有列宽之和 × 所有行高之和。
type ContentExtent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScrollOffset 是视口左上角在内容平面中的位置。
type ScrollOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Velocity 是滚动手势结束时的速度，目前吸附算法不使用它。
type Velocity struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Snapshot 是某一时刻布局状态的完整拷贝，供渲染器与调试输出使用。
type Snapshot struct {
	Shape  GridShape     `json:"shape"`
	Offset ScrollOffset  `json:"offset"`
	Bounds Rect          `json:"bounds"`
	Extent ContentExtent `json:"extent"`
	Frames []CellFrame   `json:"frames"`
}
