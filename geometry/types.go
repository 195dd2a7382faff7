package geometry

import "github.com/ByLCY/stickygrid/layout"

// Content 是网格数据源：提供形状与每个单元格的文本。
// Text 返回 false 表示该坐标缺少内容。
type Content interface {
	Shape() layout.GridShape
	Text(c layout.CellCoordinate) (string, bool)
}

// FontResource 描述字体资源，src 可以是文件路径或 embed:* 形式。
type FontResource struct {
	Name  string `json:"name" toml:"name"`
	Src   string `json:"src" toml:"src"`
	Style string `json:"style" toml:"style"`
}

// TextStyle 汇总测量文本所需的字体参数，长度单位均为 pt。
type TextStyle struct {
	Font       FontResource `json:"font"`
	Size       float64      `json:"size"`
	LineHeight float64      `json:"lineHeight"`
	Wrap       string       `json:"wrap,omitempty"` // anywhere(默认)/break-word/nowrap
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
type Typesetter interface {
	LayoutLines(content string, width float64, style TextStyle) ([]TextLine, error)
}

// Metrics 描述列宽与行高计算所用的常量（单位 pt）。
type Metrics struct {
	PinnedColumnWidth float64
	BodyColumnWidth   float64
	MinimumRowHeight  float64
	VerticalPadding   float64
	HorizontalPadding float64
	// MaxMeasureHeight 是测量时的软上限，超出部分按截断处理；<=0 表示不限制。
	MaxMeasureHeight float64
	Style            TextStyle
}

// DefaultMetrics 返回与默认单元格尺寸相匹配的度量。
func DefaultMetrics() Metrics {
	return Metrics{
		PinnedColumnWidth: 100,
		BodyColumnWidth:   120,
		MinimumRowHeight:  44,
		VerticalPadding:   8,
		HorizontalPadding: 6,
		MaxMeasureHeight:  400,
		Style: TextStyle{
			Font:       FontResource{Name: "Body", Src: "embed:goregular"},
			Size:       12,
			LineHeight: 12 * 1.4,
			Wrap:       "anywhere",
		},
	}
}
