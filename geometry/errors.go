package geometry

import (
	"errors"
	"fmt"

	"github.com/ByLCY/stickygrid/layout"
)

// ErrContentMissing 表示数据源没有为某个坐标提供内容，通常是数据源的 bug。
var ErrContentMissing = errors.New("geometry: 单元格内容缺失")

// MissingContentError 记录缺失内容的坐标。
type MissingContentError struct {
	Coordinate layout.CellCoordinate
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("geometry: 单元格 (%d,%d) 内容缺失", e.Coordinate.Row, e.Coordinate.Column)
}

func (e *MissingContentError) Unwrap() error { return ErrContentMissing }
