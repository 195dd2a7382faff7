package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stickygrid.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestDefaultMetrics(t *testing.T) {
	m, err := Default().Metrics()
	if err != nil {
		t.Fatalf("默认配置应有效: %v", err)
	}
	if m.PinnedColumnWidth != 100 || m.BodyColumnWidth != 120 || m.MinimumRowHeight != 44 {
		t.Fatalf("默认度量不正确: %+v", m)
	}
	if math.Abs(m.Style.LineHeight-16.8) > 1e-9 || m.Style.Wrap != "anywhere" {
		t.Fatalf("默认字体设置不正确: %+v", m.Style)
	}
	if _, err := Load(""); err != nil {
		t.Fatalf("空路径应返回默认值: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
[layout]
pinned-width = "1in"
body-width = "50mm"

[font]
size = "10pt"
line-height = "14pt"
wrap = "nowrap"

[theme]
border = "#000"

[viewport]
width = "320"
height = "240"
x = 12.5
snap = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 出错: %v", err)
	}
	m, err := cfg.Metrics()
	if err != nil {
		t.Fatalf("Metrics 出错: %v", err)
	}
	if m.PinnedColumnWidth != 72 {
		t.Fatalf("1in 应为 72pt，实际 %g", m.PinnedColumnWidth)
	}
	if math.Abs(m.BodyColumnWidth-50*(1/0.352777)) > 1e-6 {
		t.Fatalf("50mm 换算不正确: %g", m.BodyColumnWidth)
	}
	if m.Style.Size != 10 || m.Style.LineHeight != 14 || m.Style.Wrap != "nowrap" {
		t.Fatalf("字体覆盖不正确: %+v", m.Style)
	}
	if m.MinimumRowHeight != 44 {
		t.Fatalf("未覆盖的字段应保留默认值")
	}
	bounds, err := cfg.ViewportBounds()
	if err != nil || bounds.Width != 320 || bounds.Height != 240 {
		t.Fatalf("视口不正确: %+v %v", bounds, err)
	}
	if cfg.Viewport.X != 12.5 || !cfg.Viewport.Snap {
		t.Fatalf("视口滚动设置不正确: %+v", cfg.Viewport)
	}
	if r, g, b, err := ParseColor(cfg.Theme.Border); err != nil || r != 0 || g != 0 || b != 0 {
		t.Fatalf("颜色解析不正确")
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"未知字段": "[layout]\nwidth = \"1pt\"\n",
		"非法长度": "[layout]\nbody-width = \"wide\"\n",
		"语法错误": "[layout\n",
		"宽度为零": "[layout]\npinned-width = \"0\"\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: 期望返回错误", name)
		}
	}
}

func TestApplyGridSettings(t *testing.T) {
	cfg := Default()
	if err := cfg.Apply(map[string]string{"body-width": "80", "wrap": "break-word", "font-size": "9pt"}); err != nil {
		t.Fatalf("Apply 出错: %v", err)
	}
	m, _ := cfg.Metrics()
	if m.BodyColumnWidth != 80 || m.Style.Wrap != "break-word" || m.Style.Size != 9 {
		t.Fatalf("覆盖未生效: %+v", m)
	}
	if err := cfg.Apply(map[string]string{"colour": "red"}); err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("未知键应返回错误，实际 %v", err)
	}
	bad := Default()
	if err := bad.Apply(map[string]string{"min-row-height": "-3"}); err == nil {
		t.Fatalf("负的行高应返回错误")
	}
}

func TestEngineOptions(t *testing.T) {
	opts, err := Default().EngineOptions()
	if err != nil {
		t.Fatalf("EngineOptions 出错: %v", err)
	}
	if opts.DefaultSize.Width != 100 || opts.DefaultSize.Height != 44 {
		t.Fatalf("默认尺寸不正确: %+v", opts.DefaultSize)
	}
}

func TestParseColor(t *testing.T) {
	r, g, b, err := ParseColor("#0F62FE")
	if err != nil || r != 0x0F || g != 0x62 || b != 0xFE {
		t.Fatalf("解析 #0F62FE 失败: %d %d %d %v", r, g, b, err)
	}
	if _, _, _, err := ParseColor("blue"); err == nil {
		t.Fatalf("非法颜色应返回错误")
	}
}
