package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

// TestParseLengthToPoints 覆盖常见单位到 pt 的转换。
func TestParseLengthToPoints(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"120", 120},
		{"12pt", 12},
		{"1in", 72},
		{"25.4mm", 72},
		{"2.54cm", 72},
		{" 10PT ", 10},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("ParseLength(%q) 出错: %v", c.in, err)
		}
		if diff := math.Abs(l.Points() - c.want); diff > 1e-3 {
			t.Fatalf("ParseLength(%q) 期望 %gpt，实际 %g", c.in, c.want, l.Points())
		}
	}
	if _, err := ParseLength("abc"); err == nil {
		t.Fatalf("非法长度应返回错误")
	}
	if _, err := ParseLength(""); err == nil {
		t.Fatalf("空长度应返回错误")
	}
}

// TestLineHeightResolve 验证行高解析：倍数与绝对值两种语义。
func TestLineHeightResolve(t *testing.T) {
	spec, err := ParseLineHeight("1.2x")
	if err != nil {
		t.Fatalf("解析 1.2x 失败: %v", err)
	}
	if got := spec.Resolve(12); math.Abs(got-14.4) > 1e-9 {
		t.Fatalf("1.2x 行高期望 14.4，实际 %g", got)
	}
	spec, err = ParseLineHeight("18pt")
	if err != nil {
		t.Fatalf("解析 18pt 失败: %v", err)
	}
	if got := spec.Resolve(12); got != 18 {
		t.Fatalf("18pt 行高期望 18，实际 %g", got)
	}
	if got := (LineHeightSpec{Kind: LineHeightFactor}).Resolve(10); math.Abs(got-14) > 1e-9 {
		t.Fatalf("未指定倍数时应回退到 1.4x，实际 %g", got)
	}
	if _, err := ParseLineHeight("zx"); err == nil {
		t.Fatalf("非法倍数应返回错误")
	}
}
