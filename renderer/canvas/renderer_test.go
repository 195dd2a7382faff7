package canvasrenderer

import (
	"bytes"
	"image/png"
	"io"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/stickygrid/config"
	"github.com/ByLCY/stickygrid/content"
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
)

func bodyStyle(lineFactor float64) geometry.TextStyle {
	return geometry.TextStyle{
		Font:       geometry.FontResource{Name: "Body", Src: "embed:goregular"},
		Size:       12,
		LineHeight: 12 * lineFactor,
	}
}

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer(".")
	// 宽度/字号/行高均为 pt
	lines, err := r.LayoutLines("hello world again", 28, bodyStyle(1.2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer(".")
	lines, err := r.LayoutLines("foo\n\nbar", 280, bodyStyle(1.2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// TestLineHeightsInvariant 验证：
// 1) 首行 GapBefore == 0；
// 2) 其余行 GapBefore ≈ max(lineHeight - textHeight, 0)；
// 3) 各行的 Height 与 textHeight 一致（渲染器会用字体度量回填）。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer(".")
	style := bodyStyle(1.6)
	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 110, style)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}

	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(style.LineHeight-textHeight, 0)

	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g diff=%g", i, lines[i].GapBefore, wantLeading, diff)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g diff=%g", i, lines[i].Height, textHeight, diff)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（pt）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer(".")
	limit := 85.0
	content := strings.Repeat("a", 53)
	for _, wrap := range []string{"anywhere", "break-word"} {
		style := bodyStyle(1.2)
		style.Wrap = wrap
		lines, err := r.LayoutLines(content, limit, style)
		if err != nil {
			t.Fatalf("LayoutLines error: %v", err)
		}
		if len(lines) < 2 {
			t.Fatalf("%s: expected the long token to be split, got %d lines", wrap, len(lines))
		}
		for i, ln := range lines {
			if ln.Width-limit > 1e-6 {
				t.Fatalf("%s: line %d width exceeds limit: width=%g limit=%g", wrap, i, ln.Width, limit)
			}
		}
	}
}

func TestNoWrapKeepsLongLines(t *testing.T) {
	r := NewRenderer(".")
	style := bodyStyle(1.2)
	style.Wrap = "nowrap"
	lines, err := r.LayoutLines("a fairly long sentence that would wrap\nsecond", 20, style)
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("nowrap should only split on newlines, got %d lines", len(lines))
	}
	if lines[0].Width <= 20 {
		t.Fatalf("nowrap line should overflow the limit, width=%g", lines[0].Width)
	}
}

func TestUnknownFontFallsBack(t *testing.T) {
	r := NewRenderer("")
	style := bodyStyle(1.2)
	style.Font = geometry.FontResource{Name: "Ghost", Src: "embed:ghost-font"}
	lines, err := r.LayoutLines("fallback", 200, style)
	if err != nil {
		t.Fatalf("fallback font should be used, got %v", err)
	}
	if len(lines) != 1 || lines[0].Width <= 0 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func renderFixture(t *testing.T, r *Renderer) (layout.Snapshot, *geometry.Provider) {
	t.Helper()
	tbl := content.FromRows([][]string{
		{"Region", "Q1", "Q2", "Q3"},
		{"North", "12", "14", "a longer note that wraps"},
		{"South", "9"},
	})
	p, err := geometry.New(tbl, r, geometry.DefaultMetrics(), geometry.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("geometry.New error: %v", err)
	}
	e := layout.NewEngine(p, layout.Options{})
	e.Recompute(tbl.Shape(), layout.ScrollOffset{X: 40, Y: 10}, layout.Rect{Width: 260, Height: 120})
	return e.Snapshot(), p
}

func TestRenderFormats(t *testing.T) {
	for _, tc := range []struct {
		format string
		check  func([]byte) bool
	}{
		{FormatPDF, func(b []byte) bool { return bytes.HasPrefix(b, []byte("%PDF")) }},
		{FormatSVG, func(b []byte) bool { return bytes.Contains(b, []byte("<svg")) }},
		{FormatPNG, func(b []byte) bool {
			cfg, err := png.DecodeConfig(bytes.NewReader(b))
			return err == nil && cfg.Width > cfg.Height && cfg.Height > 0
		}},
	} {
		r := NewRendererWithOptions(Options{Format: tc.format, DPMM: 2, Title: "fixture"})
		snap, p := renderFixture(t, r)
		out, err := r.Render(snap, p)
		if err != nil {
			t.Fatalf("%s: Render error: %v", tc.format, err)
		}
		if !tc.check(out) {
			t.Fatalf("%s: unexpected output header %q", tc.format, out[:min(len(out), 16)])
		}
	}
}

func TestRenderRejectsEmptyViewport(t *testing.T) {
	r := NewRenderer(".")
	snap, p := renderFixture(t, r)
	snap.Bounds = layout.Rect{}
	if _, err := r.Render(snap, p); err == nil {
		t.Fatalf("expected error for empty viewport")
	}
	if _, err := r.Render(snap, nil); err == nil {
		t.Fatalf("expected error for nil cells")
	}
	bad := NewRendererWithOptions(Options{Format: "gif"})
	snap, p = renderFixture(t, bad)
	if _, err := bad.Render(snap, p); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]string{"a.pdf": FormatPDF, "b.SVG": FormatSVG, "c/d.png": FormatPNG} {
		got, err := FormatForPath(path)
		if err != nil || got != want {
			t.Fatalf("FormatForPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatForPath("out.docx"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestThemeFromConfig(t *testing.T) {
	th := DefaultTheme()
	if th.Corner == nil || th.Text == nil {
		t.Fatalf("default theme should be complete: %+v", th)
	}
	r := NewRenderer(".")
	if got := r.fillFor(layout.ClassCorner); got != th.Corner {
		t.Fatalf("corner fill mismatch")
	}
	if got := r.fillFor(layout.ClassBody); got != th.Body {
		t.Fatalf("body fill mismatch")
	}
	cfg := config.Default().Theme
	cfg.Border = "grey"
	if _, err := ThemeFromConfig(cfg); err == nil || !strings.Contains(err.Error(), "border") {
		t.Fatalf("expected border colour error, got %v", err)
	}
}

func renderPNG(t *testing.T, dpmm float64, style geometry.TextStyle, text string) ([]byte, error) {
	t.Helper()
	r := NewRendererWithOptions(Options{Format: FormatPNG, DPMM: dpmm})
	m := geometry.DefaultMetrics()
	m.Style = style
	tbl := content.FromRows([][]string{{text, text}, {text, text}})
	p, err := geometry.New(tbl, r, m, geometry.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("geometry.New error: %v", err)
	}
	e := layout.NewEngine(p, layout.Options{})
	e.Recompute(tbl.Shape(), layout.ScrollOffset{}, layout.Rect{Width: 200, Height: 100})
	return r.Render(e.Snapshot(), p)
}

func TestRenderPNGWithDefaultFont(t *testing.T) {
	for _, dpmm := range []float64{0, 2, 5} {
		for _, text := range []string{"a", "Region", "North", "12", "wraps"} {
			out, err := renderPNG(t, dpmm, geometry.DefaultMetrics().Style, text)
			if err != nil {
				t.Fatalf("dpmm=%g text=%q: Render error: %v", dpmm, text, err)
			}
			if _, err := png.DecodeConfig(bytes.NewReader(out)); err != nil {
				t.Fatalf("dpmm=%g text=%q: invalid png: %v", dpmm, text, err)
			}
		}
	}
}

// Latin Modern 的 CFF 轮廓在光栅化 "Region" 时会让库 panic，Render 必须把它转成错误。
func TestRenderPNGReportsRasterizerFailure(t *testing.T) {
	style := bodyStyle(1.2)
	style.Font = geometry.FontResource{Name: "Serif", Src: "embed:lmroman10-regular"}
	_, err := renderPNG(t, 2, style, "Region")
	if err == nil || !strings.Contains(err.Error(), "渲染 PNG 失败") {
		t.Fatalf("expected wrapped rasterizer error, got %v", err)
	}
}
