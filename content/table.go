package content

import (
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
)

// Table 是按行存放单元格文本的数据源。行长度可以不同：
// 短行中缺少的单元格会被报告为内容缺失。
type Table struct {
	Name    string
	rows    [][]string
	columns int
}

var _ geometry.Content = (*Table)(nil)

// FromRows 以二维切片构造 Table，列数取最长的一行。
func FromRows(rows [][]string) *Table {
	t := &Table{}
	for _, r := range rows {
		t.appendRow(r)
	}
	return t
}

func (t *Table) appendRow(cells []string) {
	row := make([]string, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	if len(row) > t.columns {
		t.columns = len(row)
	}
}

// Shape 实现 geometry.Content。
func (t *Table) Shape() layout.GridShape {
	return layout.GridShape{Rows: len(t.rows), Columns: t.columns}
}

// Text 实现 geometry.Content；短行之外的坐标返回 false。
func (t *Table) Text(c layout.CellCoordinate) (string, bool) {
	if c.Row < 0 || c.Row >= len(t.rows) || c.Column < 0 {
		return "", false
	}
	row := t.rows[c.Row]
	if c.Column >= len(row) {
		return "", false
	}
	return row[c.Column], true
}

// Rows 返回所有行的拷贝。
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
