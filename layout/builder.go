package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/cvpress/markup"
)

// Build 按顺序把 story 中的元素放入页面内容框，返回分页后的布局结果。
// 段落可在行边界处跨页拆分；表格与图片整体移到下一页。
func Build(story []Flowable, res ResourceSet, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if res.Page.Width <= 0 || res.Page.Height <= 0 {
		return nil, fmt.Errorf("layout: 资源中缺少页面模板")
	}

	collector := newPageCollector(res.Page)
	root := &flowContext{
		baseX:      collector.frameLeft(),
		width:      collector.frameWidth(),
		cursorY:    collector.contentTop(),
		typesetter: opts.Typesetter,
		debug:      opts.Debug,
		res:        res,
		collector:  collector,
		atTop:      true,
	}
	for i, f := range story {
		if err := root.add(f); err != nil {
			return nil, fmt.Errorf("第 %d 个元素: %w", i+1, err)
		}
	}

	return &Result{
		Pages:     collector.pages(),
		Resources: res,
		Meta:      res.Meta,
	}, nil
}

func (ctx *flowContext) add(f Flowable) error {
	switch v := f.(type) {
	case nil:
		return nil
	case *Paragraph:
		return ctx.handleParagraph(v)
	case Spacer:
		return ctx.handleSpacer(v)
	case *Spacer:
		return ctx.handleSpacer(*v)
	case HRule:
		return ctx.handleRule(v)
	case *HRule:
		return ctx.handleRule(*v)
	case *Image:
		return ctx.handleImage(v)
	case *Table:
		return ctx.handleTable(v)
	default:
		return fmt.Errorf("不支持的元素类型 %T", f)
	}
}

type pageAccumulator struct {
	texts  []TextBox
	images []ImageBox
	tables []TableBox
	lines  []Line
	links  []Link
}

type pageCollector struct {
	tpl     PageTemplate
	accs    []*pageAccumulator
	current int
}

func newPageCollector(tpl PageTemplate) *pageCollector {
	pc := &pageCollector{tpl: tpl}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 {
	return pc.tpl.Margin.Top + pc.tpl.Padding.Top
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.tpl.Height - pc.tpl.Margin.Bottom - pc.tpl.Padding.Bottom
}

func (pc *pageCollector) frameLeft() float64 {
	return pc.tpl.Margin.Left + pc.tpl.Padding.Left
}

func (pc *pageCollector) frameWidth() float64 {
	return pc.tpl.Width - pc.tpl.Margin.Left - pc.tpl.Margin.Right - pc.tpl.Padding.Left - pc.tpl.Padding.Right
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.tpl.Width,
			Height: pc.tpl.Height,
			Margin: pc.tpl.Margin,
			Texts:  acc.texts,
			Images: acc.images,
			Tables: acc.tables,
			Lines:  acc.lines,
			Links:  acc.links,
		}
	}
	return out
}

type flowContext struct {
	baseX      float64
	width      float64
	cursorY    float64
	typesetter Typesetter
	debug      DebugOptions
	res        ResourceSet
	collector  *pageCollector
	// atTop 为 true 时位于页首，段前距被忽略。
	atTop bool
	// prevAfter 是上一个元素的段后距（mm），与下一个元素的段前距重叠。
	prevAfter float64
}

func (ctx *flowContext) fits(height float64) bool {
	return ctx.cursorY+height <= ctx.collector.contentBottom()+widthEpsilon
}

func (ctx *flowContext) ensureSpace(height float64) {
	if ctx.atTop || ctx.fits(height) {
		return
	}
	ctx.pageBreak()
}

func (ctx *flowContext) pageBreak() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
	ctx.atTop = true
	ctx.prevAfter = 0
}

func (ctx *flowContext) acc() *pageAccumulator {
	return ctx.collector.curr()
}

// gapBefore 返回实际段前距（mm）：页首为 0，否则扣除上一元素已经留出的段后距。
func (ctx *flowContext) gapBefore(spaceBefore float64) float64 {
	if ctx.atTop {
		return 0
	}
	return math.Max(spaceBefore-ctx.prevAfter, 0)
}

func (ctx *flowContext) advance(height, spaceAfter float64) {
	ctx.cursorY += height + spaceAfter
	ctx.prevAfter = spaceAfter
	ctx.atTop = false
}

func (ctx *flowContext) paragraphLines(p *Paragraph, width float64) ([]wrappedLine, ParagraphStyle, error) {
	style, err := ctx.res.Style(p.Style)
	if err != nil {
		return nil, style, err
	}
	spans := p.Spans
	if spans == nil && p.Markup != "" {
		spans, err = markup.Parse(p.Markup)
		if err != nil {
			return nil, style, fmt.Errorf("段落 (%s): %w", p.Style, err)
		}
	}
	textWidth := width - (style.LeftIndent+style.RightIndent)*PtToMm
	if textWidth <= 0 {
		return nil, style, fmt.Errorf("段落 (%s): 缩进后没有可用宽度", p.Style)
	}
	lines, err := newWrapper(ctx.typesetter, ctx.res, style).wrap(spans, textWidth)
	if err != nil {
		return nil, style, err
	}
	return lines, style, nil
}

func (ctx *flowContext) handleParagraph(p *Paragraph) error {
	lines, style, err := ctx.paragraphLines(p, ctx.width)
	if err != nil {
		return err
	}
	leading := style.Leading * PtToMm
	if leading <= 0 {
		return fmt.Errorf("段落 (%s): 行距必须大于 0", style.Name)
	}
	spaceBefore := style.SpaceBefore * PtToMm
	spaceAfter := style.SpaceAfter * PtToMm

	if len(lines) == 0 {
		gap := ctx.gapBefore(spaceBefore)
		ctx.advance(gap, spaceAfter)
		return nil
	}

	for len(lines) > 0 {
		gap := ctx.gapBefore(spaceBefore)
		avail := ctx.collector.contentBottom() - ctx.cursorY - gap
		n := int(math.Floor(avail/leading + widthEpsilon))
		if n >= len(lines) {
			tb := ctx.emitText(lines, style, ctx.baseX, ctx.cursorY+gap, ctx.width)
			ctx.acc().texts = append(ctx.acc().texts, tb)
			ctx.advance(gap+tb.Height, spaceAfter)
			return nil
		}
		if !ctx.atTop && (n < 1 || (n == 1 && len(lines) > 1)) {
			// 页底只放得下一行时整段移到下一页，避免孤行
			ctx.pageBreak()
			continue
		}
		if n < 1 {
			n = 1
		}
		tb := ctx.emitText(lines[:n], style, ctx.baseX, ctx.cursorY+gap, ctx.width)
		ctx.acc().texts = append(ctx.acc().texts, tb)
		lines = lines[n:]
		ctx.pageBreak()
	}
	return nil
}

// emitText 生成文本框；x、width 为缩进前的区域。
func (ctx *flowContext) emitText(lines []wrappedLine, style ParagraphStyle, x, y, width float64) TextBox {
	leading := style.Leading * PtToMm
	fontSize := style.FontSize * PtToMm
	textX := x + style.LeftIndent*PtToMm
	textWidth := width - (style.LeftIndent+style.RightIndent)*PtToMm

	tb := TextBox{
		Style:  style.Name,
		X:      textX,
		Y:      y,
		Width:  textWidth,
		Height: float64(len(lines)) * leading,
		Align:  style.Alignment,
	}
	for i, l := range lines {
		baseline := y + float64(i)*leading + fontSize
		lineWidth, runs := l.place(textX, textWidth, style.Alignment)
		tb.Lines = append(tb.Lines, TextLine{Baseline: baseline, Width: lineWidth, Runs: runs})
		for _, run := range runs {
			if run.Href == "" {
				continue
			}
			ctx.acc().links = append(ctx.acc().links, Link{
				X:      run.X,
				Y:      baseline - fontSize,
				Width:  run.Width,
				Height: leading,
				URI:    run.Href,
			})
		}
	}
	if ctx.debug.RawUnits {
		tb.Debug = &TextBoxDebug{RawUnits: rawUnits(style)}
	}
	return tb
}

func rawUnits(style ParagraphStyle) *RawUnits {
	out := &RawUnits{}
	size := ParseRawLengthStr(style.Raw["size"])
	if size.Value > 0 {
		unit := UnitToString(size.Unit)
		if unit == "" {
			unit = "pt"
		}
		out.FontSize = &RawLengthJSON{Value: size.Value, Unit: unit}
	} else {
		out.FontSize = &RawLengthJSON{Value: style.FontSize, Unit: "pt"}
	}
	if spec, ok := ParseLineHeight(style.Raw["leading"]); ok {
		if spec.Kind == LineHeightFactor {
			out.Leading = &RawLineHeightJSON{Kind: "factor", Factor: spec.Factor}
		} else {
			out.Leading = &RawLineHeightJSON{Kind: "absolute", Value: spec.Len.Value, Unit: UnitToString(spec.Len.Unit)}
		}
	} else {
		out.Leading = &RawLineHeightJSON{Kind: "factor", Factor: DefaultLeadingFactor}
	}
	return out
}

func (ctx *flowContext) handleSpacer(s Spacer) error {
	if s.Height <= 0 {
		return nil
	}
	if !ctx.fits(s.Height) {
		// 放不下的空白直接丢弃
		ctx.pageBreak()
		return nil
	}
	ctx.advance(s.Height, 0)
	return nil
}

func (ctx *flowContext) handleRule(r HRule) error {
	thickness := r.Thickness * PtToMm
	if thickness <= 0 {
		thickness = PtToMm
	}
	pct := r.Width
	if pct <= 0 || pct > 100 {
		pct = 100
	}
	width := ctx.width * pct / 100
	color, err := resolveColor(r.Color, ctx.res)
	if err != nil {
		return fmt.Errorf("分隔线: %w", err)
	}

	gap := ctx.gapBefore(r.SpaceBefore * PtToMm)
	if !ctx.atTop && !ctx.fits(gap+thickness) {
		ctx.pageBreak()
		gap = 0
	}
	y := ctx.cursorY + gap + thickness/2
	x := ctx.baseX + alignOffset(ctx.width, width, "center")
	ctx.acc().lines = append(ctx.acc().lines, Line{
		X1: x, Y1: y, X2: x + width, Y2: y,
		Color: color,
		Width: thickness,
	})
	ctx.advance(gap+thickness, r.SpaceAfter*PtToMm)
	return nil
}

func (ctx *flowContext) imageBox(img *Image, maxWidth float64) (ImageBox, error) {
	box := ImageBox{Name: img.Name, Path: img.Src, Optional: img.Optional}
	if img.Name != "" {
		resImg, ok := ctx.res.Images[img.Name]
		if !ok {
			return box, fmt.Errorf("image %s 未定义", img.Name)
		}
		if box.Path == "" {
			box.Path = resImg.Src
		}
		box.Width, box.Height = resImg.Width, resImg.Height
		box.Optional = box.Optional || resImg.Optional
	}
	if img.Width > 0 {
		box.Width = img.Width
	}
	if img.Height > 0 {
		box.Height = img.Height
	}
	if box.Path == "" {
		return box, fmt.Errorf("image 语句缺少资源或 src")
	}
	if box.Width <= 0 {
		box.Width = maxWidth
	}
	if box.Height <= 0 {
		box.Height = box.Width * 0.6
	}
	return box, nil
}

func (ctx *flowContext) handleImage(img *Image) error {
	box, err := ctx.imageBox(img, ctx.width)
	if err != nil {
		return err
	}
	ctx.ensureSpace(box.Height)
	box.X = ctx.baseX + alignOffset(ctx.width, box.Width, "center")
	box.Y = ctx.cursorY
	ctx.acc().images = append(ctx.acc().images, box)
	ctx.advance(box.Height, 0)
	return nil
}

// cellLayout 是单元格内容的预排结果。
type cellLayout struct {
	lines  []wrappedLine
	style  ParagraphStyle
	image  *ImageBox
	height float64
}

func (ctx *flowContext) handleTable(t *Table) error {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}
	widths := resolveColumnWidths(t.ColWidths, cols, ctx.width)
	pad := t.Style.Padding
	padL, padR, padT, padB := pad.Left*PtToMm, pad.Right*PtToMm, pad.Top*PtToMm, pad.Bottom*PtToMm

	cells := make([][]cellLayout, len(t.Rows))
	rowHeights := make([]float64, len(t.Rows))
	total := 0.0
	for ri, row := range t.Rows {
		cells[ri] = make([]cellLayout, len(row))
		contentH := 0.0
		for ci, f := range row {
			inner := math.Max(widths[ci]-padL-padR, widthEpsilon)
			cell, err := ctx.layoutCell(f, inner)
			if err != nil {
				return fmt.Errorf("表格第 %d 行第 %d 列: %w", ri+1, ci+1, err)
			}
			cells[ri][ci] = cell
			contentH = math.Max(contentH, cell.height)
		}
		rowHeights[ri] = contentH + padT + padB
		total += rowHeights[ri]
	}

	tableWidth := 0.0
	for _, w := range widths {
		tableWidth += w
	}
	ctx.ensureSpace(total)
	x0 := ctx.baseX + alignOffset(ctx.width, tableWidth, "center")
	y := ctx.cursorY

	box := TableBox{X: x0, Y: y, Width: tableWidth, Height: total, ColumnWidths: widths, RowHeights: rowHeights}
	if t.Style.Background != "" {
		c, err := resolveColor(t.Style.Background, ctx.res)
		if err != nil {
			return fmt.Errorf("表格背景: %w", err)
		}
		box.Background = &c
	}
	ctx.acc().tables = append(ctx.acc().tables, box)

	for ri := range t.Rows {
		x := x0
		for ci, cell := range cells[ri] {
			inner := widths[ci] - padL - padR
			var off float64
			switch t.Style.VAlign {
			case "middle", "center":
				off = padT + (rowHeights[ri]-padT-padB-cell.height)/2
			case "bottom":
				off = rowHeights[ri] - padB - cell.height
			default:
				off = padT
			}
			switch {
			case cell.image != nil:
				img := *cell.image
				img.X = x + padL + alignOffset(inner, img.Width, t.Style.Align)
				img.Y = y + off
				ctx.acc().images = append(ctx.acc().images, img)
			case len(cell.lines) > 0:
				tb := ctx.emitText(cell.lines, cell.style, x+padL, y+off, inner)
				ctx.acc().texts = append(ctx.acc().texts, tb)
			}
			x += widths[ci]
		}
		y += rowHeights[ri]
	}
	ctx.advance(total, 0)
	return nil
}

func (ctx *flowContext) layoutCell(f Flowable, width float64) (cellLayout, error) {
	switch v := f.(type) {
	case nil:
		return cellLayout{}, nil
	case *Paragraph:
		lines, style, err := ctx.paragraphLines(v, width)
		if err != nil {
			return cellLayout{}, err
		}
		return cellLayout{lines: lines, style: style, height: float64(len(lines)) * style.Leading * PtToMm}, nil
	case *Image:
		box, err := ctx.imageBox(v, width)
		if err != nil {
			return cellLayout{}, err
		}
		return cellLayout{image: &box, height: box.Height}, nil
	case Spacer:
		return cellLayout{height: v.Height}, nil
	case *Spacer:
		return cellLayout{height: v.Height}, nil
	default:
		return cellLayout{}, fmt.Errorf("表格单元格不支持 %T", f)
	}
}

// resolveColumnWidths 为 0 的列平分剩余宽度。
func resolveColumnWidths(spec []float64, cols int, avail float64) []float64 {
	widths := make([]float64, cols)
	fixed, auto := 0.0, 0
	for i := range widths {
		if i < len(spec) && spec[i] > 0 {
			widths[i] = spec[i]
			fixed += spec[i]
			continue
		}
		auto++
	}
	if auto > 0 {
		share := math.Max((avail-fixed)/float64(auto), 0)
		for i := range widths {
			if i >= len(spec) || spec[i] <= 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch align {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}
