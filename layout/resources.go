package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/cvpress/binding"
	"github.com/ByLCY/cvpress/theme"
)

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// styleDecl 是继承解析前的样式声明。
type styleDecl struct {
	Name    string
	Extends string
	Props   map[string]string
}

// baseStyles 对应示例样式表中的 Normal / Heading1 / Heading2，主题中的同名样式会替换它们。
var baseStyles = []styleDecl{
	{Name: "Normal", Props: map[string]string{
		"font": "Helvetica", "size": "10pt", "leading": "12pt", "color": "#000000", "align": "left",
	}},
	{Name: "Heading1", Extends: "Normal", Props: map[string]string{
		"font": "Helvetica-Bold", "size": "18pt", "leading": "22pt", "space-after": "6pt",
	}},
	{Name: "Heading2", Extends: "Normal", Props: map[string]string{
		"font": "Helvetica-Bold", "size": "14pt", "leading": "18pt", "space-before": "12pt", "space-after": "6pt",
	}},
}

var baseFonts = []FontResource{
	{Name: "Helvetica", Src: "embed:liberation/sans-regular", Family: "Helvetica"},
	{Name: "Helvetica-Bold", Src: "embed:liberation/sans-bold", Family: "Helvetica", Style: "bold"},
	{Name: "Helvetica-Oblique", Src: "embed:liberation/sans-italic", Family: "Helvetica", Style: "italic"},
	{Name: "Helvetica-BoldOblique", Src: "embed:liberation/sans-bold-italic", Family: "Helvetica", Style: "bold italic"},
}

// Compile 将主题 AST 编译为布局可用的资源集合。data 用于 meta 与 labels 中的 ${path} 插值，可为 nil。
func Compile(doc *theme.Document, data any) (ResourceSet, error) {
	if doc == nil {
		return ResourceSet{}, fmt.Errorf("主题为空")
	}
	res, err := collectResources(doc)
	if err != nil {
		return res, err
	}
	pageSection := firstPage(doc)
	if pageSection == nil {
		return res, fmt.Errorf("主题 %s 缺少 page 段落", doc.Name)
	}
	page, err := resolvePage(pageSection)
	if err != nil {
		return res, err
	}
	res.Page = page
	res.Meta = collectMeta(doc, data)
	res.Labels = collectLabels(doc, data)
	return res, nil
}

// AddStyle 注册段落样式；同名样式会被替换。
func (rs *ResourceSet) AddStyle(style ParagraphStyle) {
	if rs.Styles == nil {
		rs.Styles = map[string]ParagraphStyle{}
	}
	rs.Styles[style.Name] = style
}

// Style 按名称查找段落样式。
func (rs ResourceSet) Style(name string) (ParagraphStyle, error) {
	style, ok := rs.Styles[name]
	if !ok {
		return ParagraphStyle{}, fmt.Errorf("style %s 未定义", name)
	}
	return style, nil
}

// StyleNames 按字母序返回全部样式名。
func (rs ResourceSet) StyleNames() []string {
	out := make([]string, 0, len(rs.Styles))
	for name := range rs.Styles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectResources(doc *theme.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]ParagraphStyle{},
	}
	for _, font := range baseFonts {
		res.Fonts[font.Name] = font
	}
	rawStyles := map[string]styleDecl{}
	for _, style := range baseStyles {
		rawStyles[style.Name] = style
	}

	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, decl := range section.Resources.Decls {
			switch decl.Kind {
			case "font":
				res.Fonts[decl.Name] = parseFontResource(decl)
			case "color":
				c, err := parseColorResource(decl)
				if err != nil {
					return res, fmt.Errorf("%s: color %s: %w", decl.Pos, decl.Name, err)
				}
				res.Colors[decl.Name] = c
			case "image":
				res.Images[decl.Name] = parseImageResource(decl)
			case "style":
				rawStyles[decl.Name] = parseStyleResource(decl)
			}
		}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	for name, decl := range resolved {
		style, err := paragraphStyle(decl, res)
		if err != nil {
			return res, err
		}
		res.Styles[name] = style
	}
	return res, nil
}

func collectMeta(doc *theme.Document, data any) DocumentMeta {
	meta := DocumentMeta{
		Creator: "cvpress",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil {
			continue
		}
		for _, entry := range section.Meta.Entries {
			value := binding.Interpolate(entry.Value.Text(), data)
			switch strings.ToLower(entry.Key) {
			case "title":
				meta.Title = value
			case "author":
				meta.Author = value
			case "subject":
				meta.Subject = value
			case "creator":
				meta.Creator = value
			case "keywords":
				meta.Keywords = meta.Keywords[:0]
				for _, kw := range entry.Value.Strings() {
					meta.Keywords = append(meta.Keywords, binding.Interpolate(kw, data))
				}
			}
		}
	}
	return meta
}

func collectLabels(doc *theme.Document, data any) map[string]string {
	labels := map[string]string{}
	for _, section := range doc.Sections {
		if section.Labels == nil {
			continue
		}
		for _, entry := range section.Labels.Entries {
			labels[entry.Key] = binding.Interpolate(entry.Value.Text(), data)
		}
	}
	return labels
}

func firstPage(doc *theme.Document) *theme.PageSection {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return section.Page
		}
	}
	return nil
}

func parseFontResource(decl *theme.Declaration) FontResource {
	font := FontResource{
		Name:     decl.Name,
		Family:   decl.Name,
		Src:      decl.Prop("src").Text(),
		Style:    decl.Prop("style").Text(),
		Fallback: decl.Prop("fallback").Text(),
	}
	if family := decl.Prop("family").Text(); family != "" {
		font.Family = family
	}
	return font
}

func parseImageResource(decl *theme.Declaration) ImageResource {
	image := ImageResource{
		Name:   decl.Name,
		Src:    decl.Prop("src").Text(),
		Width:  parseLength(decl.Prop("width").Text()),
		Height: parseLength(decl.Prop("height").Text()),
	}
	if image.Src == "" {
		image.Src = decl.Name
	}
	if v, err := strconv.ParseBool(decl.Prop("optional").Text()); err == nil {
		image.Optional = v
	}
	return image
}

func parseStyleResource(decl *theme.Declaration) styleDecl {
	style := styleDecl{
		Name:    decl.Name,
		Extends: decl.Extends,
		Props:   map[string]string{},
	}
	for _, prop := range decl.Props {
		val := prop.Value.Text()
		if val == "" {
			continue
		}
		style.Props[strings.ToLower(prop.Key)] = val
	}
	return style
}

func parseColorResource(decl *theme.Declaration) (Color, error) {
	value := decl.Value.Text()
	if value == "" {
		value = decl.Prop("value").Text()
	}
	return parseColor(value)
}

func resolveStyles(styles map[string]styleDecl) (map[string]styleDecl, error) {
	resolved := map[string]styleDecl{}
	visiting := map[string]bool{}

	var dfs func(name string) (styleDecl, error)
	dfs = func(name string) (styleDecl, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return styleDecl{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return styleDecl{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return styleDecl{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// paragraphStyle 把已合并的属性转换为样式记录并检查字体、颜色引用。
func paragraphStyle(decl styleDecl, res ResourceSet) (ParagraphStyle, error) {
	props := decl.Props
	style := ParagraphStyle{
		Name:        decl.Name,
		Parent:      decl.Extends,
		Font:        props["font"],
		SpaceBefore: parsePoints(props["space-before"]),
		SpaceAfter:  parsePoints(props["space-after"]),
		LeftIndent:  parsePoints(props["left-indent"]),
		RightIndent: parsePoints(props["right-indent"]),
		Raw:         props,
	}
	if _, ok := res.Fonts[style.Font]; !ok {
		return style, fmt.Errorf("style %s 引用了未定义的字体 %q", decl.Name, style.Font)
	}

	size := ParseRawLengthStr(props["size"])
	if size.Value <= 0 {
		size = Length{Value: 10, Unit: UnitPT}
	}
	style.FontSize = size.ToPT()
	leading, ok := ParseLineHeight(props["leading"])
	if !ok {
		leading = LineHeightSpec{Kind: LineHeightFactor, Factor: DefaultLeadingFactor}
	}
	style.Leading = leading.Resolve(size, UnitPT)

	color, err := resolveColor(props["color"], res)
	if err != nil {
		return style, fmt.Errorf("style %s: %w", decl.Name, err)
	}
	style.TextColor = color

	align, err := normalizeAlign(props["align"])
	if err != nil {
		return style, fmt.Errorf("style %s: %w", decl.Name, err)
	}
	style.Alignment = align
	return style, nil
}

func normalizeAlign(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "left", "start":
		return "left", nil
	case "center", "centre", "middle":
		return "center", nil
	case "right", "end":
		return "right", nil
	case "justify", "justified":
		return "justify", nil
	default:
		return "", fmt.Errorf("不支持的对齐方式 %s", v)
	}
}

func resolvePage(section *theme.PageSection) (PageTemplate, error) {
	base, ok := pagePresets[strings.ToUpper(section.Size)]
	if !ok {
		return PageTemplate{}, fmt.Errorf("暂不支持的纸张尺寸：%s", section.Size)
	}
	page := PageTemplate{
		Size:    strings.ToUpper(section.Size),
		Width:   base[0],
		Height:  base[1],
		Margin:  resolveBox(section.Params, "margin", Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}),
		Padding: resolveBox(section.Params, "padding", Margin{}),
	}
	for _, token := range section.Params {
		if strings.EqualFold(token, "landscape") {
			page.Width, page.Height = page.Height, page.Width
		}
	}
	if page.Margin.Left+page.Margin.Right+page.Padding.Left+page.Padding.Right >= page.Width ||
		page.Margin.Top+page.Margin.Bottom+page.Padding.Top+page.Padding.Bottom >= page.Height {
		return PageTemplate{}, fmt.Errorf("页边距超出纸张尺寸 %s", page.Size)
	}
	return page, nil
}

// resolveBox 读取 keyword 之后的 1-4 个长度，语义与 CSS margin 相同。
func resolveBox(params []string, keyword string, def Margin) Margin {
	box := def
	for i := 0; i < len(params); i++ {
		if !strings.EqualFold(params[i], keyword) {
			continue
		}
		vals := []float64{}
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			if !isLength(params[j]) {
				break
			}
			vals = append(vals, parseLength(params[j]))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			box = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			box = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			box = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			box = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return box
}

func resolveColor(value string, res ResourceSet) (Color, error) {
	if value == "" {
		return Color{}, nil
	}
	if c, ok := res.Colors[value]; ok {
		return c, nil
	}
	if strings.HasPrefix(value, "#") {
		return parseColor(value)
	}
	return Color{}, fmt.Errorf("颜色 %s 未定义", value)
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	for _, r := range value {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
		}
	}
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 #%s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}
