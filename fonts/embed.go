package fonts

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 为未指定字体时使用的内置字体。
// Go 字体是 TrueType 轮廓，PDF/SVG/PNG 三种输出都能绘制。
const Default = "embed:goregular"

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"goitalic":  goitalic.TTF,
	// Latin Modern 为 CFF 轮廓，光栅化部分字形会失败，建议只用于 PDF/SVG。
	"lmroman10-regular": lmroman10regular.TTF,
	"lmroman10-bold":    lmroman10bold.TTF,
	"lmroman10-italic":  lmroman10italic.TTF,
}

// Load 返回字体的字节数据。path 可写为 "embed:gobold"，其余按文件路径读取。
func Load(path string) ([]byte, error) {
	if path == "" {
		path = Default
	}
	if name, ok := strings.CutPrefix(path, "embed:"); ok {
		data, ok := builtin[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("未知的内置字体 %s", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// ForStyle 返回与样式名对应的内置字体（bold/italic，其余为 regular）。
func ForStyle(style string) string {
	switch strings.ToLower(style) {
	case "bold":
		return "embed:gobold"
	case "italic":
		return "embed:goitalic"
	default:
		return Default
	}
}
