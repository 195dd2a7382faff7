package layout

// SnapTarget 计算离 proposed 最近的单元格边界对齐的偏移，两个轴独立处理。
//
// 搜索前先加上固定列宽（固定行高），因为固定列始终占据视口左侧；
// 找到第一个满足 proposed+pinned < b + size(b)/2 的边界 b 后再减回去。
// 判定使用严格小于；越过最后一个单元格时该轴保持 proposed 不变。
// velocity 目前不参与计算。
func (e *Engine) SnapTarget(proposed ScrollOffset, velocity Velocity) ScrollOffset {
	_ = velocity
	if e.source == nil || e.shape.Count() == 0 {
		return proposed
	}
	if _, ok := e.source.SizeOf(CellCoordinate{Row: 0, Column: 0}); !ok {
		return proposed
	}

	// 使用 Recompute 统一后的列宽与行高，与帧保持一致。
	corner := e.frames[0].Size
	x := snapAxis(proposed.X, corner.Width, e.shape.Columns, func(i int) float64 {
		return e.frames[i].Size.Width
	})
	y := snapAxis(proposed.Y, corner.Height, e.shape.Rows, func(i int) float64 {
		return e.frames[i*e.shape.Columns].Size.Height
	})
	return ScrollOffset{X: x, Y: y}
}

func snapAxis(proposed, pinned float64, count int, sizeAt func(int) float64) float64 {
	target := proposed + pinned
	boundary := 0.0
	for i := 0; i < count; i++ {
		size := sizeAt(i)
		if target < boundary+size/2 {
			return boundary - pinned
		}
		boundary += size
	}
	return proposed
}
