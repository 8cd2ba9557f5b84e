package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/cvpress/generator"
	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/resume"
	"github.com/ByLCY/cvpress/theme"
)

type config struct {
	input         string
	output        string
	theme         string
	assets        string
	debug         string
	debugRawUnits bool
	format        string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "", "简历 JSON 路径，留空使用内置示例")
	flag.StringVar(&cfg.output, "out", "resume.pdf", "PDF 输出路径")
	flag.StringVar(&cfg.theme, "theme", theme.DefaultPreset, "主题："+strings.Join(theme.Presets(), "|")+" 或主题文件路径")
	flag.StringVar(&cfg.assets, "assets", "assets", "字体与图标所在目录")
	flag.StringVar(&cfg.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&cfg.debugRawUnits, "debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	flag.StringVar(&cfg.format, "format", "", "自由文本格式 markup|plain|markdown，覆盖简历中的 text_format")
	verbose := flag.Bool("verbose", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("生成 PDF 失败", "error", err)
		os.Exit(1)
	}
	fmt.Printf("PDF file '%s' created successfully!\n", cfg.output)
}

// run 串联读取数据、生成与写出。
func run(cfg config, logger *slog.Logger) error {
	data := resume.Example()
	if cfg.input != "" {
		loaded, err := resume.LoadFile(cfg.input)
		if err != nil {
			return fmt.Errorf("读取简历数据失败: %w", err)
		}
		data = loaded
	}

	out, err := generator.Generate(data, generator.Options{
		Theme:     cfg.theme,
		AssetsDir: cfg.assets,
		Format:    cfg.format,
		RawUnits:  cfg.debugRawUnits,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if cfg.debug != "" {
		if err := writeDebug(out.Layout, cfg.debug); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(cfg.output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(cfg.output, out.PDF, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	logger.Debug("PDF 已写出", "path", cfg.output, "bytes", len(out.PDF), "pages", len(out.Layout.Pages))
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
