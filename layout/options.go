package layout

// 默认单元格尺寸：尺寸来源无法提供某个单元格的尺寸时使用。
const (
	DefaultCellWidth  = 100.0
	DefaultCellHeight = 44.0
)

// SizeSource 按坐标提供单元格尺寸；返回 false 表示暂时无法提供，
// 引擎会退回到 Options.DefaultSize 而不是报错。
type SizeSource interface {
	SizeOf(c CellCoordinate) (CellSize, bool)
}

// SizeSourceFunc 把普通函数适配为 SizeSource。
type SizeSourceFunc func(c CellCoordinate) (CellSize, bool)

func (f SizeSourceFunc) SizeOf(c CellCoordinate) (CellSize, bool) { return f(c) }

// Options 配置布局引擎。
type Options struct {
	DefaultSize CellSize
}

func (o Options) withDefaults() Options {
	if o.DefaultSize.Width <= 0 {
		o.DefaultSize.Width = DefaultCellWidth
	}
	if o.DefaultSize.Height <= 0 {
		o.DefaultSize.Height = DefaultCellHeight
	}
	return o
}
