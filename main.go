package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/stickygrid/config"
	"github.com/ByLCY/stickygrid/content"
	"github.com/ByLCY/stickygrid/dsl"
	"github.com/ByLCY/stickygrid/geometry"
	"github.com/ByLCY/stickygrid/layout"
	canvasrenderer "github.com/ByLCY/stickygrid/renderer/canvas"
	"github.com/ByLCY/stickygrid/tui"
)

type options struct {
	input      string
	csv        string
	data       any
	configPath string
	output     string
	offset     string
	viewport   string
	velocity   string
	snap       bool
	debug      string
	strict     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "", "grid DSL 文件路径")
	flag.StringVar(&opts.csv, "csv", "", "CSV 文件路径（与 -in 二选一）")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，@path 表示从文件读取")
	flag.StringVar(&opts.configPath, "config", "", "TOML 配置文件路径")
	flag.StringVar(&opts.output, "out", "output/grid.pdf", "输出路径（.pdf/.svg/.png）")
	flag.StringVar(&opts.offset, "offset", "", "滚动偏移 x,y（pt），覆盖配置")
	flag.StringVar(&opts.viewport, "viewport", "", "视口尺寸 WxH，支持单位，例如 400x300 或 140mmx100mm")
	flag.StringVar(&opts.velocity, "velocity", "0,0", "吸附时的滚动速度 x,y")
	flag.BoolVar(&opts.snap, "snap", false, "把偏移吸附到最近的单元格边界")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&opts.strict, "strict", false, "内容缺失时按断言中止（调试用）")
	interactive := flag.Bool("tui", false, "在终端中交互浏览")
	flag.Parse()

	data, err := loadData(*dataJSON)
	if err != nil {
		log.Fatalf("解析 data JSON 失败: %v", err)
	}
	opts.data = data

	if *interactive {
		if err := runTUI(opts); err != nil {
			log.Fatalf("终端界面退出: %v", err)
		}
		return
	}
	if err := run(opts); err != nil {
		log.Fatalf("生成网格失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", opts.output)
}

// run 串联数据加载、测量、布局与渲染。
func run(opts options) error {
	tbl, cfg, err := loadTable(opts)
	if err != nil {
		return err
	}
	metrics, err := cfg.Metrics()
	if err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	theme, err := canvasrenderer.ThemeFromConfig(cfg.Theme)
	if err != nil {
		return fmt.Errorf("主题颜色无效: %w", err)
	}
	format, err := canvasrenderer.FormatForPath(opts.output)
	if err != nil {
		return err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir(opts),
		Format:  format,
		Theme:   &theme,
		Title:   tbl.Name,
	})

	provider, err := geometry.New(tbl, r, metrics, geometry.Options{Logger: log.Default(), Strict: opts.strict})
	if err != nil {
		return fmt.Errorf("测量单元格失败: %w", err)
	}
	engineOpts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	bounds, offset, velocity, err := viewState(opts, cfg)
	if err != nil {
		return err
	}

	engine := layout.NewEngine(provider, engineOpts)
	shape := tbl.Shape()
	engine.Recompute(shape, layout.ScrollOffset{}, bounds)
	offset = engine.ClampOffset(offset)
	if opts.snap || cfg.Viewport.Snap {
		offset = engine.ClampOffset(engine.SnapTarget(offset, velocity))
	}
	engine.Recompute(shape, offset, bounds)
	snap := engine.Snapshot()

	if opts.debug != "" {
		if err := writeDebug(snap, opts.debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := r.Render(snap, provider)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func runTUI(opts options) error {
	tbl, cfg, err := loadTable(opts)
	if err != nil {
		return err
	}
	m, err := tui.New(tbl, tui.Options{Title: tbl.Name, Snap: opts.snap || cfg.Viewport.Snap})
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// loadTable 读取配置与数据源；grid 文件中的 config 段覆盖 TOML 配置。
func loadTable(opts options) (*content.Table, config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	switch {
	case opts.csv != "" && opts.input != "":
		return nil, config.Config{}, fmt.Errorf("-in 与 -csv 不能同时使用")
	case opts.csv != "":
		tbl, err := content.LoadCSV(opts.csv)
		if err != nil {
			return nil, config.Config{}, err
		}
		return tbl, cfg, nil
	case opts.input != "":
		file, err := os.Open(opts.input)
		if err != nil {
			return nil, config.Config{}, fmt.Errorf("无法打开 DSL 文件 %s: %w", opts.input, err)
		}
		defer file.Close()
		doc, err := dsl.Parse(file)
		if err != nil {
			return nil, config.Config{}, fmt.Errorf("解析 DSL 失败: %w", err)
		}
		tbl, settings, err := content.FromDocument(doc, opts.data)
		if err != nil {
			return nil, config.Config{}, fmt.Errorf("生成表格失败: %w", err)
		}
		if err := cfg.Apply(settings); err != nil {
			return nil, config.Config{}, fmt.Errorf("grid config 段无效: %w", err)
		}
		return tbl, cfg, nil
	default:
		return nil, config.Config{}, fmt.Errorf("需要 -in 或 -csv")
	}
}

func viewState(opts options, cfg config.Config) (layout.Rect, layout.ScrollOffset, layout.Velocity, error) {
	bounds, err := cfg.ViewportBounds()
	if err != nil {
		return layout.Rect{}, layout.ScrollOffset{}, layout.Velocity{}, err
	}
	if opts.viewport != "" {
		if bounds, err = parseViewport(opts.viewport); err != nil {
			return layout.Rect{}, layout.ScrollOffset{}, layout.Velocity{}, err
		}
	}
	offset := layout.ScrollOffset{X: cfg.Viewport.X, Y: cfg.Viewport.Y}
	if opts.offset != "" {
		x, y, err := parsePair(opts.offset)
		if err != nil {
			return layout.Rect{}, layout.ScrollOffset{}, layout.Velocity{}, fmt.Errorf("-offset: %w", err)
		}
		offset = layout.ScrollOffset{X: x, Y: y}
	}
	var velocity layout.Velocity
	if opts.velocity != "" {
		x, y, err := parsePair(opts.velocity)
		if err != nil {
			return layout.Rect{}, layout.ScrollOffset{}, layout.Velocity{}, fmt.Errorf("-velocity: %w", err)
		}
		velocity = layout.Velocity{X: x, Y: y}
	}
	return bounds, offset, velocity, nil
}

func parsePair(value string) (float64, float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("需要 x,y 形式，实际 %q", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseViewport(value string) (layout.Rect, error) {
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		return layout.Rect{}, fmt.Errorf("视口需要 WxH 形式，实际 %q", value)
	}
	wl, err := layout.ParseLength(w)
	if err != nil {
		return layout.Rect{}, fmt.Errorf("视口宽度: %w", err)
	}
	hl, err := layout.ParseLength(h)
	if err != nil {
		return layout.Rect{}, fmt.Errorf("视口高度: %w", err)
	}
	if wl.Points() <= 0 || hl.Points() <= 0 {
		return layout.Rect{}, fmt.Errorf("视口尺寸必须为正数")
	}
	return layout.Rect{Width: wl.Points(), Height: hl.Points()}, nil
}

func loadData(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	raw := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func baseDir(opts options) string {
	if opts.input != "" {
		return filepath.Dir(opts.input)
	}
	return filepath.Dir(opts.csv)
}

func writeDebug(snap layout.Snapshot, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(snap, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
