package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将布局快照输出为 JSON，便于调试或可视化。
// 帧按叠放次序排列，方便对照绘制顺序。
func WriteDebugJSON(snap Snapshot, path string) error {
	frames := make([]CellFrame, len(snap.Frames))
	copy(frames, snap.Frames)
	SortByStack(frames)
	snap.Frames = frames
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
