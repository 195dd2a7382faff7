package renderer

import (
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
)

// Cells 提供绘制所需的单元格文本行与度量，geometry.Provider 满足该接口。
type Cells interface {
	Lines(c layout.CellCoordinate) []geometry.TextLine
	Metrics() geometry.Metrics
}

// Renderer 将某一时刻的布局快照输出为最终文件，例如 PDF、SVG 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(snap layout.Snapshot, cells Cells) ([]byte, error)
}
