package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 页面坐标以左上角为原点，单位 mm。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 是主题编译后的结果：字体、颜色、图片、段落样式与页面模板。
type ResourceSet struct {
	Fonts  map[string]FontResource   `json:"fonts"`
	Colors map[string]Color          `json:"colors"`
	Images map[string]ImageResource  `json:"images"`
	Styles map[string]ParagraphStyle `json:"styles"`
	Page   PageTemplate              `json:"page"`
	Meta   DocumentMeta              `json:"meta"`
	Labels map[string]string         `json:"labels,omitempty"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:* 或 builtin:* 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style,omitempty"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称，也用于查找粗体/斜体变体
	Fallback string `json:"fallback,omitempty"`
}

// ImageResource 记录图片资源，宽高以毫米为单位保存。
type ImageResource struct {
	Name     string  `json:"name"`
	Src      string  `json:"src"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Optional bool    `json:"optional,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParagraphStyle is a resolved style record. Font sizes and spacing are in points.
type ParagraphStyle struct {
	Name        string            `json:"name"`
	Parent      string            `json:"parent,omitempty"`
	Font        string            `json:"font"`
	FontSize    float64           `json:"fontSize"`
	Leading     float64           `json:"leading"`
	SpaceBefore float64           `json:"spaceBefore,omitempty"`
	SpaceAfter  float64           `json:"spaceAfter,omitempty"`
	LeftIndent  float64           `json:"leftIndent,omitempty"`
	RightIndent float64           `json:"rightIndent,omitempty"`
	TextColor   Color             `json:"textColor"`
	Alignment   string            `json:"alignment"`
	Raw         map[string]string `json:"-"`
}

// PageTemplate 描述纸张尺寸、页边距与内容框内边距（mm）。
type PageTemplate struct {
	Size    string  `json:"size"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Margin  Margin  `json:"margin"`
	Padding Margin  `json:"padding"`
}

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
type Page struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin Margin     `json:"margin"`
	Texts  []TextBox  `json:"texts"`
	Images []ImageBox `json:"images"`
	Tables []TableBox `json:"tables,omitempty"`
	Lines  []Line     `json:"lines,omitempty"`
	Links  []Link     `json:"links,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的段落（或其跨页后的一部分）。
type TextBox struct {
	Style  string        `json:"style"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Align  string        `json:"align,omitempty"`
	Lines  []TextLine    `json:"lines"`
	Debug  *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 是排好的一行；Baseline 为页面坐标。
type TextLine struct {
	Baseline float64   `json:"baseline"`
	Width    float64   `json:"width"`
	Runs     []TextRun `json:"runs"`
}

// TextRun 是一行中字体、颜色一致的一段文字，X 为页面坐标，FontSize 为 mm。
type TextRun struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Width    float64 `json:"width"`
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Href     string  `json:"href,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize *RawLengthJSON     `json:"fontSize,omitempty"`
	Leading  *RawLineHeightJSON `json:"leading,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// ImageBox 用于描述图片位置与尺寸。
type ImageBox struct {
	Name     string  `json:"name,omitempty"`
	Path     string  `json:"path"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Optional bool    `json:"optional,omitempty"`
}

// TableBox 保存表格外框与行列几何，单元格内容已展开为页面上的文本与图片。
type TableBox struct {
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Width        float64   `json:"width"`
	Height       float64   `json:"height"`
	ColumnWidths []float64 `json:"columnWidths"`
	RowHeights   []float64 `json:"rowHeights"`
	Background   *Color    `json:"background,omitempty"`
}

// Line 表示一条线段，Width 为线宽（mm）。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Link 是可点击区域。
type Link struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	URI    string  `json:"uri"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
