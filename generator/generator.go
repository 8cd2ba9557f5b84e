// Package generator 串联主题、story、布局与渲染，把简历数据转换为 PDF。
package generator

import (
	"fmt"
	"log/slog"

	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/renderer"
	canvasrenderer "github.com/ByLCY/cvpress/renderer/canvas"
	"github.com/ByLCY/cvpress/resume"
	"github.com/ByLCY/cvpress/story"
	"github.com/ByLCY/cvpress/theme"
)

// Engine 同时负责测量与输出。
type Engine interface {
	renderer.Renderer
	layout.Typesetter
}

// Options 配置一次生成。
type Options struct {
	Theme     string // 内置主题名或主题文件路径，空值为 brand
	AssetsDir string // 字体与图片的相对路径基准
	Format    string // 覆盖简历中的 text_format
	RawUnits  bool   // 调试 JSON 中输出 rawUnits
	Logger    *slog.Logger
	Engine    Engine // 为空时使用 canvas 渲染器
}

// Output 是一次生成的结果。
type Output struct {
	PDF    []byte
	Layout *layout.Result
}

// Generate 依次完成：打开主题、编译资源、生成 story、布局、渲染。
func Generate(r *resume.Resume, opts Options) (*Output, error) {
	if r == nil {
		return nil, fmt.Errorf("简历数据为空")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := theme.Open(opts.Theme)
	if err != nil {
		return nil, fmt.Errorf("加载主题失败: %w", err)
	}
	res, err := layout.Compile(doc, r.ToMap())
	if err != nil {
		return nil, fmt.Errorf("编译主题 %s 失败: %w", doc.Name, err)
	}

	labels := map[string]string{}
	for k, v := range res.Labels {
		labels[k] = v
	}
	for k, v := range r.Labels {
		labels[k] = v
	}
	flowables, err := story.Build(r, story.Options{Labels: labels, Format: opts.Format})
	if err != nil {
		return nil, fmt.Errorf("生成内容失败: %w", err)
	}

	engine := opts.Engine
	if engine == nil {
		engine = canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			BaseDir: opts.AssetsDir,
			Logger:  logger,
		})
	}

	result, err := layout.Build(flowables, res, layout.BuildOptions{
		Typesetter: engine,
		Debug:      layout.DebugOptions{RawUnits: opts.RawUnits},
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Debug("布局完成", "theme", doc.Name, "pages", len(result.Pages), "flowables", len(flowables))

	pdfBytes, err := engine.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return &Output{PDF: pdfBytes, Layout: result}, nil
}
