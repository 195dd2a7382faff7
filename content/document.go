package content

import (
	"fmt"
	"strings"

	"github.com/ByLCY/stickygrid/binding"
	"github.com/ByLCY/stickygrid/dsl"
)

// Settings 保存 grid 文件 config 段中的原始键值，由 config 包解释。
type Settings map[string]string

// FromDocument 根据 DSL AST 生成 Table。header/row/rows 段按出现顺序生成行，
// 单元格文本中的 ${path} 使用 data 插值；rows 段对数据数组中的每个元素重复一次。
func FromDocument(doc *dsl.Document, data any) (*Table, Settings, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("文档为空")
	}
	t := &Table{Name: doc.Name}
	settings := Settings{}
	for _, sec := range doc.Sections {
		switch {
		case sec.Config != nil:
			if err := collectSettings(sec.Config.Block, settings); err != nil {
				return nil, nil, err
			}
		case sec.Header != nil:
			cells, err := rowCells(sec.Header.Block, data)
			if err != nil {
				return nil, nil, fmt.Errorf("header: %w", err)
			}
			t.appendRow(cells)
		case sec.Row != nil:
			cells, err := rowCells(sec.Row.Block, data)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", len(t.rows), err)
			}
			t.appendRow(cells)
		case sec.Rows != nil:
			path := sec.Rows.Path()
			items, ok := binding.Items(data, path)
			if !ok {
				return nil, nil, fmt.Errorf("rows %s: 数据中找不到数组", path)
			}
			for i, item := range items {
				cells, err := rowCells(sec.Rows.Block, binding.Scope(data, item, i))
				if err != nil {
					return nil, nil, fmt.Errorf("rows %s[%d]: %w", path, i, err)
				}
				t.appendRow(cells)
			}
		}
	}
	if len(t.rows) == 0 {
		return nil, nil, fmt.Errorf("grid %s 中没有任何行", doc.Name)
	}
	return t, settings, nil
}

func collectSettings(block *dsl.Block, settings Settings) error {
	if block == nil {
		return nil
	}
	for _, st := range block.Statements {
		if st.Assignment == nil {
			return fmt.Errorf("config 段只允许 key: value 形式")
		}
		settings[strings.ToLower(st.Assignment.Key)] = st.Assignment.Value.Text()
	}
	return nil
}

// rowCells 展开一行中的单元格：文本字面量与 cell 指令的每个字符串参数各占一格，
// cell { ... } 的块内文本合并为一格。
func rowCells(block *dsl.Block, data any) ([]string, error) {
	if block == nil {
		return nil, fmt.Errorf("缺少单元格定义")
	}
	var cells []string
	add := func(s string) {
		cells = append(cells, binding.Interpolate(s, data))
	}
	for _, st := range block.Statements {
		switch {
		case st.Text != nil:
			add(string(st.Text.Value))
		case st.Command != nil:
			cmd := st.Command
			if cmd.Name != "cell" {
				return nil, fmt.Errorf("未知指令 %s（第 %d 行）", cmd.Name, cmd.Pos.Line)
			}
			n := 0
			for _, arg := range cmd.Args {
				if arg.Type == "String" {
					add(arg.Value)
					n++
				}
			}
			if cmd.Block != nil {
				add(extractText(cmd.Block))
				n++
			}
			if n == 0 {
				add("")
			}
		case st.Assignment != nil:
			return nil, fmt.Errorf("行内不支持赋值 %s", st.Assignment.Key)
		}
	}
	return cells, nil
}

func extractText(block *dsl.Block) string {
	var parts []string
	for _, st := range block.Statements {
		if st.Text != nil {
			parts = append(parts, string(st.Text.Value))
		}
	}
	return strings.Join(parts, "\n")
}
