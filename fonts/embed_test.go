package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, style := range []string{"", "bold", "italic"} {
		data, err := Load(ForStyle(style))
		if err != nil {
			t.Fatalf("加载内置字体 %q 失败: %v", style, err)
		}
		if len(data) == 0 {
			t.Fatalf("内置字体 %q 为空", style)
		}
	}
	if ForStyle("") != Default || Default != "embed:goregular" {
		t.Fatalf("默认字体应为 TrueType 的 Go Regular，实际 %s", Default)
	}
	for _, name := range []string{"embed:lmroman10-regular", "embed:LMRoman10-Bold"} {
		if data, err := Load(name); err != nil || len(data) == 0 {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
	}
	if _, err := Load("embed:comic-sans"); err == nil {
		t.Fatalf("未知内置字体应返回错误")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.otf")
	if err := os.WriteFile(path, []byte("OTTO"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	data, err := Load(path)
	if err != nil || string(data) != "OTTO" {
		t.Fatalf("读取文件字体失败: %q %v", data, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.otf")); err == nil {
		t.Fatalf("文件不存在应返回错误")
	}
}
