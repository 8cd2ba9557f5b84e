package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/cvpress/fonts"
	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas and measures
// text for the layout stage.
type Renderer struct {
	baseDir string
	logger  *slog.Logger

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
	faces        map[faceKey]*canvas.FontFace
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

type faceKey struct {
	font  string
	size  float64
	color layout.Color
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via builtin:<name>
	Images  map[string]Resource // built-in images accessible via builtin:<name>
	Logger  *slog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		baseDir:      opts.BaseDir,
		logger:       logger,
		fontBlobs:    ingest(opts.Fonts, logger),
		imageBlobs:   ingest(opts.Images, logger),
		fontFamilies: map[string]*fontFamilyEntry{},
		faces:        map[faceKey]*canvas.FontFace{},
	}
}

func ingest(resources map[string]Resource, logger *slog.Logger) map[string][]byte {
	out := map[string][]byte{}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			out[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				logger.Warn("读取注入资源失败", "name", name, "path", res.Path, "error", err)
				continue
			}
			out[name] = data
		}
	}
	return out
}

// TextWidth 实现 layout.Typesetter。fontSize 与返回值均为 mm。
func (r *Renderer) TextWidth(text string, font layout.FontResource, fontSize float64) (float64, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text), nil
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
		addLinks(writer, page)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// addLinks 写入 URI 注释；布局坐标以左上角为原点，PDF 以左下角为原点。
func addLinks(writer *pdf.PDF, page layout.Page) {
	for _, l := range page.Links {
		if l.URI == "" || l.Width <= 0 || l.Height <= 0 {
			continue
		}
		y0 := page.Height - (l.Y + l.Height)
		writer.AddLink(l.URI, canvas.Rect{X0: l.X, Y0: y0, X1: l.X + l.Width, Y1: y0 + l.Height})
	}
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	// 表格背景在最底层
	r.drawTables(ctx, page.Tables)
	r.drawLines(ctx, page.Lines)
	if err := r.drawImages(ctx, page.Images); err != nil {
		return err
	}
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb, resources.Fonts); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fonts map[string]layout.FontResource) error {
	for _, line := range tb.Lines {
		for _, run := range line.Runs {
			if run.Content == "" {
				continue
			}
			// TextRun 的字号为 mm；创建字体面需要 pt。
			face, err := r.fontFace(resolveFontResource(run.Font, fonts), toPt(run.FontSize), run.Color)
			if err != nil {
				return err
			}
			ctx.DrawText(run.X, line.Baseline, canvas.NewTextLine(face, run.Content, canvas.Left))
		}
	}
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, img := range images {
		if img.Path == "" {
			continue
		}
		data, err := r.loadImage(img.Path)
		if err != nil {
			if img.Optional {
				r.logger.Warn("跳过无法加载的可选图片", "image", img.Name, "path", img.Path, "error", err)
				continue
			}
			return err
		}

		width := img.Width
		if width <= 0 {
			width = float64(data.Bounds().Dx()) / 4.0
		}
		dpmm := float64(data.Bounds().Dx()) / width
		if dpmm <= 0 {
			dpmm = 1
		}
		// CartesianIV 下 (x, y) 即图片左上角
		ctx.DrawImage(img.X, img.Y, data, canvas.DPMM(dpmm))
	}
	return nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	if name, ok := builtinName(src); ok {
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 builtin:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 builtin:%s 失败: %w", name, err)
		}
		return img, nil
	}
	path, err := r.resolvePath(src)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox) {
	for _, table := range tables {
		if table.Background == nil || table.Width <= 0 || table.Height <= 0 {
			continue
		}
		ctx.SetFillColor(colorFromLayout(*table.Background))
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.DrawPath(table.X, table.Y, canvas.Rectangle(table.Width, table.Height))
	}
}

// drawLines 绘制直线列表（毫米单位）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		if ln.Width <= 0 {
			continue
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(ln.Width)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	key := faceKey{font: fontCacheKey(font), size: size, color: col}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face := family.Face(size, colorFromLayout(col), style, canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

// ensureFontFamily 依次尝试 src、fallback 与内置后备字体。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}

	sources := []string{font.Src}
	if font.Fallback != "" {
		sources = append(sources, font.Fallback)
	}
	sources = append(sources, "embed:"+fonts.Fallback)

	var firstErr error
	for i, src := range sources {
		family := canvas.NewFontFamily(familyName)
		err := r.loadFontIntoFamily(family, src, style)
		if err == nil {
			if i > 0 {
				r.logger.Warn("字体加载失败，使用后备字体", "font", font.Name, "src", font.Src, "fallback", src, "error", firstErr)
			}
			r.fontFamilies[key] = &fontFamilyEntry{family: family, style: style}
			return family, style, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", font.Name, firstErr)
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if name, ok := builtinName(src); ok {
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 builtin:%s", name)
	}
	if strings.HasPrefix(src, "embed:") {
		return fonts.Load(src)
	}
	path, err := r.resolvePath(src)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func (r *Renderer) resolvePath(src string) (string, error) {
	if filepath.IsAbs(src) {
		return src, nil
	}
	if r.baseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许使用相对路径：%s（请改用 builtin: 或 embed:）", src)
	}
	return filepath.Join(r.baseDir, src), nil
}

func builtinName(src string) (string, bool) {
	for _, prefix := range []string{"built-in:", "builtin:"} {
		if strings.HasPrefix(src, prefix) {
			return strings.TrimPrefix(src, prefix), true
		}
	}
	return "", false
}

func resolveFontResource(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	return layout.FontResource{Name: name}
}

func parseFontStyle(style string) canvas.FontStyle {
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

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Fallback, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
