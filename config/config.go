package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/stickygrid/fonts"
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
)

// Config 汇总度量、字体、主题与视口设置。长度字段使用带单位的字符串（"100pt"、"35mm"）。
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Font     FontConfig     `toml:"font"`
	Theme    Theme          `toml:"theme"`
	Viewport ViewportConfig `toml:"viewport"`
}

// LayoutConfig 对应 geometry.Metrics 与引擎的默认尺寸。
type LayoutConfig struct {
	PinnedWidth      string `toml:"pinned-width"`
	BodyWidth        string `toml:"body-width"`
	MinRowHeight     string `toml:"min-row-height"`
	PaddingX         string `toml:"padding-x"`
	PaddingY         string `toml:"padding-y"`
	MaxMeasureHeight string `toml:"max-measure-height"`
	DefaultWidth     string `toml:"default-width"`
	DefaultHeight    string `toml:"default-height"`
}

// FontConfig 描述测量与绘制所用的字体。
type FontConfig struct {
	Name       string `toml:"name"`
	Src        string `toml:"src"`
	Style      string `toml:"style"`
	Size       string `toml:"size"`
	LineHeight string `toml:"line-height"`
	Wrap       string `toml:"wrap"`
}

// Theme 以 #RRGGBB 描述各类单元格的填充色与边框色。
type Theme struct {
	CornerFill string `toml:"corner-fill"`
	HeaderFill string `toml:"header-fill"`
	ColumnFill string `toml:"column-fill"`
	BodyFill   string `toml:"body-fill"`
	Border     string `toml:"border"`
	Text       string `toml:"text"`
}

// ViewportConfig 描述渲染时的视口尺寸与滚动状态。
type ViewportConfig struct {
	Width  string  `toml:"width"`
	Height string  `toml:"height"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Snap   bool    `toml:"snap"`
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			PinnedWidth:      "100pt",
			BodyWidth:        "120pt",
			MinRowHeight:     "44pt",
			PaddingX:         "6pt",
			PaddingY:         "8pt",
			MaxMeasureHeight: "400pt",
			DefaultWidth:     "100pt",
			DefaultHeight:    "44pt",
		},
		Font: FontConfig{
			Name:       "Body",
			Src:        fonts.Default,
			Size:       "12pt",
			LineHeight: "1.4x",
			Wrap:       "anywhere",
		},
		Theme: Theme{
			CornerFill: "#D9DEE7",
			HeaderFill: "#E8ECF2",
			ColumnFill: "#F1F3F7",
			BodyFill:   "#FFFFFF",
			Border:     "#C8C8C8",
			Text:       "#1E1E1E",
		},
		Viewport: ViewportConfig{Width: "400pt", Height: "300pt"},
	}
}

// Load 读取 TOML 文件并覆盖默认配置；path 为空时直接返回默认值。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("配置 %s 含有未知字段: %s", path, strings.Join(keys, ", "))
	}
	if _, err := cfg.Metrics(); err != nil {
		return Config{}, fmt.Errorf("配置 %s 无效: %w", path, err)
	}
	return cfg, nil
}

// Apply 用 grid 文件 config 段中的键值覆盖配置，键名与 TOML 中 [layout]/[font]/[theme] 的字段相同。
func (c *Config) Apply(settings map[string]string) error {
	fields := map[string]*string{
		"pinned-width":       &c.Layout.PinnedWidth,
		"body-width":         &c.Layout.BodyWidth,
		"min-row-height":     &c.Layout.MinRowHeight,
		"padding-x":          &c.Layout.PaddingX,
		"padding-y":          &c.Layout.PaddingY,
		"max-measure-height": &c.Layout.MaxMeasureHeight,
		"default-width":      &c.Layout.DefaultWidth,
		"default-height":     &c.Layout.DefaultHeight,
		"font":               &c.Font.Name,
		"font-src":           &c.Font.Src,
		"font-style":         &c.Font.Style,
		"font-size":          &c.Font.Size,
		"line-height":        &c.Font.LineHeight,
		"wrap":               &c.Font.Wrap,
		"corner-fill":        &c.Theme.CornerFill,
		"header-fill":        &c.Theme.HeaderFill,
		"column-fill":        &c.Theme.ColumnFill,
		"body-fill":          &c.Theme.BodyFill,
		"border":             &c.Theme.Border,
		"text":               &c.Theme.Text,
	}
	for key, val := range settings {
		dst, ok := fields[key]
		if !ok {
			return fmt.Errorf("未知的 config 键 %s", key)
		}
		*dst = val
	}
	_, err := c.Metrics()
	return err
}

// Metrics 把配置解析为 geometry.Metrics（单位 pt）。
func (c Config) Metrics() (geometry.Metrics, error) {
	var m geometry.Metrics
	var err error
	parse := func(name, value string, dst *float64, min float64) {
		if err != nil {
			return
		}
		l, perr := layout.ParseLength(value)
		if perr != nil {
			err = fmt.Errorf("%s: %w", name, perr)
			return
		}
		if l.Points() < min {
			err = fmt.Errorf("%s 不能小于 %g", name, min)
			return
		}
		*dst = l.Points()
	}
	parse("pinned-width", c.Layout.PinnedWidth, &m.PinnedColumnWidth, 1)
	parse("body-width", c.Layout.BodyWidth, &m.BodyColumnWidth, 1)
	parse("min-row-height", c.Layout.MinRowHeight, &m.MinimumRowHeight, 0)
	parse("padding-x", c.Layout.PaddingX, &m.HorizontalPadding, 0)
	parse("padding-y", c.Layout.PaddingY, &m.VerticalPadding, 0)
	parse("max-measure-height", c.Layout.MaxMeasureHeight, &m.MaxMeasureHeight, 0)
	parse("font-size", c.Font.Size, &m.Style.Size, 1)
	if err != nil {
		return geometry.Metrics{}, err
	}
	lh, err := layout.ParseLineHeight(c.Font.LineHeight)
	if err != nil {
		return geometry.Metrics{}, fmt.Errorf("line-height: %w", err)
	}
	m.Style.LineHeight = lh.Resolve(m.Style.Size)
	m.Style.Font = geometry.FontResource{Name: c.Font.Name, Src: c.Font.Src, Style: c.Font.Style}
	m.Style.Wrap = normalizeWrap(c.Font.Wrap)
	return m, nil
}

// EngineOptions 返回布局引擎的默认尺寸设置。
func (c Config) EngineOptions() (layout.Options, error) {
	w, err := layout.ParseLength(c.Layout.DefaultWidth)
	if err != nil {
		return layout.Options{}, fmt.Errorf("default-width: %w", err)
	}
	h, err := layout.ParseLength(c.Layout.DefaultHeight)
	if err != nil {
		return layout.Options{}, fmt.Errorf("default-height: %w", err)
	}
	return layout.Options{DefaultSize: layout.CellSize{Width: w.Points(), Height: h.Points()}}, nil
}

// ViewportBounds 返回视口矩形（pt）。
func (c Config) ViewportBounds() (layout.Rect, error) {
	w, err := layout.ParseLength(c.Viewport.Width)
	if err != nil {
		return layout.Rect{}, fmt.Errorf("viewport.width: %w", err)
	}
	h, err := layout.ParseLength(c.Viewport.Height)
	if err != nil {
		return layout.Rect{}, fmt.Errorf("viewport.height: %w", err)
	}
	if w.Points() <= 0 || h.Points() <= 0 {
		return layout.Rect{}, fmt.Errorf("视口尺寸必须为正数")
	}
	return layout.Rect{Width: w.Points(), Height: h.Points()}, nil
}

// ParseColor 解析 #RGB / #RRGGBB。
func ParseColor(value string) (r, g, b uint8, err error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return 0, 0, 0, fmt.Errorf("颜色格式不正确: %s", value)
	}
	n, perr := strconv.ParseUint(v, 16, 32)
	if perr != nil {
		return 0, 0, 0, fmt.Errorf("颜色格式不正确: %s", value)
	}
	return uint8(n >> 16), uint8(n >> 8), uint8(n), nil
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}
