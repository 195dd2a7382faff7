package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/stickygrid/config"
	"github.com/ByLCY/stickygrid/fonts"
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
	"github.com/ByLCY/stickygrid/renderer"
)

const (
	cellBorderWidth = 0.2 // mm
	// wrapTolerance 吸收 pt↔mm 往返换算的浮点误差，避免等宽文本被误折行。
	wrapTolerance = 1e-9
)

// 输出格式。
const (
	FormatPDF = "pdf"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Renderer draws grid snapshots via github.com/tdewolff/canvas and doubles as
// the text measurer used by the geometry provider.
type Renderer struct {
	baseDir string
	format  string
	dpmm    float64
	theme   Theme
	title   string

	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ geometry.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Theme 为各类单元格指定颜色。
type Theme struct {
	Corner       color.Color
	PinnedRow    color.Color
	PinnedColumn color.Color
	Body         color.Color
	Border       color.Color
	Text         color.Color
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  string  // pdf(默认)/svg/png
	DPMM    float64 // PNG 分辨率（像素/毫米），默认 4
	Theme   *Theme  // nil 时使用 DefaultTheme
	Title   string
	Fonts   map[string][]byte // built-in fonts accessible via built-in:<name>
}

// DefaultTheme 返回内置配色。
func DefaultTheme() Theme {
	th, _ := ThemeFromConfig(config.Default().Theme)
	return th
}

// ThemeFromConfig 解析配置中的十六进制颜色。
func ThemeFromConfig(t config.Theme) (Theme, error) {
	var out Theme
	for _, item := range []struct {
		name  string
		value string
		dst   *color.Color
	}{
		{"corner-fill", t.CornerFill, &out.Corner},
		{"header-fill", t.HeaderFill, &out.PinnedRow},
		{"column-fill", t.ColumnFill, &out.PinnedColumn},
		{"body-fill", t.BodyFill, &out.Body},
		{"border", t.Border, &out.Border},
		{"text", t.Text, &out.Text},
	} {
		r, g, b, err := config.ParseColor(item.value)
		if err != nil {
			return Theme{}, fmt.Errorf("%s: %w", item.name, err)
		}
		*item.dst = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out, nil
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and output settings.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       strings.ToLower(opts.Format),
		dpmm:         opts.DPMM,
		title:        opts.Title,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = FormatPDF
	}
	if r.dpmm <= 0 {
		r.dpmm = 4
	}
	if opts.Theme != nil {
		r.theme = *opts.Theme
	} else {
		r.theme = DefaultTheme()
	}
	for name, blob := range opts.Fonts {
		if name == "" || len(blob) == 0 {
			continue
		}
		r.fontBlobs[name] = blob
	}
	return r
}

// FormatForPath 根据文件扩展名推断输出格式。
func FormatForPath(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case FormatPDF, FormatSVG, FormatPNG:
		return ext, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %q（可选 pdf/svg/png）", ext)
	}
}

// Render 把视口内可见的单元格按叠放次序绘制到与视口等大的画布上。
func (r *Renderer) Render(snap layout.Snapshot, cells renderer.Cells) ([]byte, error) {
	if cells == nil {
		return nil, fmt.Errorf("缺少单元格内容")
	}
	if snap.Bounds.IsEmpty() {
		return nil, fmt.Errorf("视口尺寸为空")
	}
	width, height := toMm(snap.Bounds.Width), toMm(snap.Bounds.Height)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetFillColor(r.theme.Body)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	if err := r.drawFrames(ctx, snap, cells); err != nil {
		return nil, err
	}
	return r.encode(c, width, height)
}

func (r *Renderer) encode(c *canvas.Canvas, width, height float64) ([]byte, error) {
	var buf bytes.Buffer
	switch r.format {
	case FormatPDF:
		writer := pdf.New(&buf, width, height, nil)
		writer.SetInfo(r.title, "", "", "", "stickygrid")
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case FormatSVG:
		writer := svg.New(&buf, width, height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case FormatPNG:
		img, err := rasterize(c, canvas.DPMM(r.dpmm))
		if err != nil {
			return nil, fmt.Errorf("渲染 PNG 失败: %w", err)
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", r.format)
	}
	return buf.Bytes(), nil
}

// rasterize 包装 rasterizer.Draw：字体轮廓无法解析时库会直接 panic（例如部分 CFF 字形），
// 这里转换成错误返回。
func rasterize(c *canvas.Canvas, resolution canvas.Resolution) (img *image.RGBA, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", rec)
		}
	}()
	return rasterizer.Draw(c, resolution, canvas.DefaultColorSpace), nil
}

// drawFrames 先画正文，再画固定列、固定行，最后画左上角，后画的覆盖先画的。
func (r *Renderer) drawFrames(ctx *canvas.Context, snap layout.Snapshot, cells renderer.Cells) error {
	viewport := layout.Rect{X: snap.Offset.X, Y: snap.Offset.Y, Width: snap.Bounds.Width, Height: snap.Bounds.Height}
	frames := make([]layout.CellFrame, 0, len(snap.Frames))
	for _, f := range snap.Frames {
		if f.Rect().Intersects(viewport) {
			frames = append(frames, f)
		}
	}
	layout.SortByStack(frames)

	m := cells.Metrics()
	face, err := r.fontFace(m.Style.Font, m.Style.Size, r.theme.Text)
	if err != nil {
		return err
	}
	for _, f := range frames {
		x := toMm(f.Origin.X - snap.Offset.X)
		y := toMm(f.Origin.Y - snap.Offset.Y)
		w, h := toMm(f.Size.Width), toMm(f.Size.Height)

		ctx.SetFillColor(r.fillFor(f.Coordinate.Class()))
		ctx.SetStrokeColor(r.theme.Border)
		ctx.SetStrokeWidth(cellBorderWidth)
		ctx.DrawPath(x, y, canvas.Rectangle(w, h))

		r.drawLines(ctx, face, cells.Lines(f.Coordinate),
			x+toMm(m.HorizontalPadding), y+toMm(m.VerticalPadding), y+h-toMm(m.VerticalPadding))
	}
	return nil
}

// drawLines 从 top 开始逐行绘制，放不下的行直接截断。坐标单位为 mm，行数据为 pt。
func (r *Renderer) drawLines(ctx *canvas.Context, face *canvas.FontFace, lines []geometry.TextLine, x, top, bottom float64) {
	ascent := face.Metrics().Ascent
	cursorY := top
	for _, line := range lines {
		cursorY += toMm(line.GapBefore)
		lineHeight := toMm(line.Height)
		if cursorY+lineHeight > bottom+wrapTolerance && cursorY > top {
			return
		}
		if line.Content != "" {
			ctx.DrawText(x, cursorY+ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
		}
		cursorY += lineHeight
	}
}

func (r *Renderer) fillFor(class layout.CellClass) color.Color {
	switch class {
	case layout.ClassCorner:
		return r.theme.Corner
	case layout.ClassPinnedRow:
		return r.theme.PinnedRow
	case layout.ClassPinnedColumn:
		return r.theme.PinnedColumn
	default:
		return r.theme.Body
	}
}

// LayoutLines 实现 geometry.Typesetter 接口，使用贪心换行算法。
// 约定：width 与 style 中的长度均为 pt，返回的行尺寸也为 pt；canvas 字体度量使用 mm，在边界处换算。
func (r *Renderer) LayoutLines(content string, width float64, style geometry.TextStyle) ([]geometry.TextLine, error) {
	face, err := r.fontFace(style.Font, style.Size, r.theme.Text)
	if err != nil {
		return nil, err
	}

	wrap := style.Wrap
	if wrap == "" {
		wrap = "anywhere"
	}
	// 在贪心换行中，所有宽度比较与累计均使用 mm
	lines := greedyWrapTokens(content, toMm(width), face, wrap)
	textHeight := toPt(face.Metrics().LineHeight)
	if textHeight <= 0 {
		textHeight = style.LineHeight
	}
	leading := math.Max(style.LineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []geometry.TextLine{{Content: ""}}
	}
	for i := range lines {
		lines[i].Width = toPt(lines[i].Width)
		lines[i].Height = textHeight
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) fontFace(font geometry.FontResource, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	if sizePt <= 0 {
		sizePt = 12
	}
	return family.Face(sizePt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font geometry.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font geometry.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font geometry.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = fonts.ForStyle(font.Style)
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	// Path based
	path := src
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 built-in: 或 embed:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return fonts.Load(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("stickygrid-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font geometry.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }

func greedyWrapTokens(content string, width float64, face *canvas.FontFace, wrap string) []geometry.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	} else {
		limit += wrapTolerance
	}

	// nowrap：仅按显式换行划分，不基于宽度折行
	if wrap == "nowrap" {
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]geometry.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, geometry.TextLine{Content: p, Width: face.TextWidth(p)})
		}
		return lines
	}

	// break-word：忽略空白机会，纯按宽度切分（但仍然尊重显式换行）
	if wrap == "break-word" {
		var lines []geometry.TextLine
		var builder strings.Builder
		current := 0.0
		emit := func(force bool) {
			if builder.Len() == 0 {
				if force {
					lines = append(lines, geometry.TextLine{Content: "", Width: 0})
				}
				return
			}
			lines = append(lines, geometry.TextLine{Content: builder.String(), Width: current})
			builder.Reset()
			current = 0
		}
		for _, r := range content {
			if r == '\r' {
				continue
			}
			if r == '\n' {
				emit(true)
				continue
			}
			s := string(r)
			cw := face.TextWidth(s)
			if current > 0 && current+cw > limit {
				emit(false)
			}
			builder.WriteString(s)
			current += cw
			if current > limit {
				emit(false)
			}
		}
		emit(true)
		return lines
	}

	// 默认（anywhere）：优先在空白处分割，超过限制时在词内拆分
	tokens := tokenizeContent(content)
	var lines []geometry.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, geometry.TextLine{Content: "", Width: 0})
			}
			return
		}
		lines = append(lines, geometry.TextLine{
			Content: builder.String(),
			Width:   currentWidth,
		})
		builder.Reset()
		currentWidth = 0
	}

	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}

		tokenWidth := face.TextWidth(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth > limit {
				emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
			if currentWidth > limit {
				emit(false)
			}
		}
	}

	emit(true)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
