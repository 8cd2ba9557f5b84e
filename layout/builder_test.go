package layout

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/cvpress/theme"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个字符宽度为字号的一半。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(text string, font FontResource, fontSize float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5, nil
}

const testTheme = `
theme T v1 {
  meta { title: "${name} - Resume"; author: "${name}"; keywords: ["a", "${missing:-b}"] }
  labels { skills: "Tools:" }
  resources {
    font Body { src: "embed:go/regular"; family: "Body" }
    font Body-Bold { src: "embed:go/bold"; family: "Body"; style: "bold" }
    font Body-Italic { src: "embed:go/italic"; family: "Body"; style: "italic" }
    color Accent = #9C7A2C
    image Icon { src: "icon.png"; width: 5mm; height: 5mm; optional: true }
    style Normal { font: Body; size: 10pt; leading: 12pt }
    style Text extends Normal { space-before: 6pt; space-after: 3pt; align: justify }
    style Indented extends Normal { left-indent: 10pt }
    style Link extends Normal { size: 7pt; leading: 8pt; color: Accent }
    style Bold extends Normal { font: Body-Bold }
  }
  page A4 portrait margin 10mm
}`

func compileTheme(t *testing.T, src string) ResourceSet {
	t.Helper()
	doc, err := theme.ParseString(src)
	if err != nil {
		t.Fatalf("解析主题失败: %v", err)
	}
	res, err := Compile(doc, map[string]any{"name": "John Doe"})
	if err != nil {
		t.Fatalf("编译主题失败: %v", err)
	}
	return res
}

func buildStory(t *testing.T, story ...Flowable) *Result {
	t.Helper()
	res := compileTheme(t, testTheme)
	out, err := Build(story, res, BuildOptions{Typesetter: stubTypesetter{}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return out
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func lineEnd(line TextLine) float64 {
	last := line.Runs[len(line.Runs)-1]
	return last.X + last.Width
}

func TestWrappedLinesStayWithinWidth(t *testing.T) {
	res := buildStory(t, NewParagraph(words(80), "Normal"))
	tb := res.Pages[0].Texts[0]
	if len(tb.Lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(tb.Lines))
	}
	for i, line := range tb.Lines {
		if line.Width > tb.Width+1e-6 {
			t.Fatalf("line %d width %g exceeds %g", i, line.Width, tb.Width)
		}
		if strings.HasSuffix(line.Runs[len(line.Runs)-1].Content, " ") {
			t.Fatalf("line %d keeps trailing space", i)
		}
	}
	if diff := math.Abs(tb.Height - float64(len(tb.Lines))*12*PtToMm); diff > 1e-9 {
		t.Fatalf("TextBox.Height 应等于行数×行距，diff=%g", diff)
	}
	// 首行基线 = 顶部 + 字号，其后按行距递增
	if diff := math.Abs(tb.Lines[0].Baseline - (tb.Y + 10*PtToMm)); diff > 1e-9 {
		t.Fatalf("unexpected first baseline %g", tb.Lines[0].Baseline)
	}
	if diff := math.Abs(tb.Lines[1].Baseline - tb.Lines[0].Baseline - 12*PtToMm); diff > 1e-9 {
		t.Fatalf("unexpected baseline step")
	}
}

func TestJustifyStretchesAllButLastLine(t *testing.T) {
	res := buildStory(t, NewParagraph(words(80), "Text"))
	tb := res.Pages[0].Texts[0]
	if tb.Align != "justify" || len(tb.Lines) < 2 {
		t.Fatalf("unexpected text box %+v", tb)
	}
	right := tb.X + tb.Width
	for i, line := range tb.Lines[:len(tb.Lines)-1] {
		if diff := math.Abs(lineEnd(line) - right); diff > 1e-6 {
			t.Fatalf("line %d ends at %g, want %g", i, lineEnd(line), right)
		}
	}
	last := tb.Lines[len(tb.Lines)-1]
	if lineEnd(last) >= right-1e-6 {
		t.Fatalf("last line must not be stretched")
	}
}

func TestInlineBoldUsesFamilyVariant(t *testing.T) {
	res := buildStory(t, NewParagraph("<b>Skills:</b> Go, <i>Docker</i>", "Normal"))
	runs := res.Pages[0].Texts[0].Lines[0].Runs
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %+v", runs)
	}
	if runs[0].Font != "Body-Bold" || runs[0].Content != "Skills:" {
		t.Fatalf("expected bold prefix, got %+v", runs[0])
	}
	if runs[1].Font != "Body" || runs[1].Content != " Go, " {
		t.Fatalf("expected regular body, got %+v", runs[1])
	}
	if runs[2].Font != "Body-Italic" {
		t.Fatalf("expected italic run, got %+v", runs[2])
	}
	// 没有粗斜体变体时沿用样式字体
	res = buildStory(t, NewParagraph("<b>x</b>", "Bold"), NewParagraph("<i>y</i>", "Bold"))
	if f := res.Pages[0].Texts[1].Lines[0].Runs[0].Font; f != "Body-Bold" {
		t.Fatalf("expected fallback to style font, got %s", f)
	}
}

func TestLeftIndent(t *testing.T) {
	res := buildStory(t, NewParagraph("• item", "Indented"))
	tb := res.Pages[0].Texts[0]
	if diff := math.Abs(tb.X - (10 + 10*PtToMm)); diff > 1e-9 {
		t.Fatalf("expected indented x, got %g", tb.X)
	}
	if diff := math.Abs(tb.Width - (190 - 10*PtToMm)); diff > 1e-9 {
		t.Fatalf("expected reduced width, got %g", tb.Width)
	}
}

func TestSpacingCollapsesAndIsSuppressedAtTop(t *testing.T) {
	res := buildStory(t,
		NewParagraph("first", "Text"),
		NewParagraph("second", "Text"),
		NewParagraph("third", "Normal"),
	)
	texts := res.Pages[0].Texts
	if texts[0].Y != 10 {
		t.Fatalf("space before must be dropped at the top of the page, got y=%g", texts[0].Y)
	}
	// 6pt 段前距与上一段 3pt 段后距重叠，总间距为 6pt
	want := texts[0].Y + texts[0].Height + 6*PtToMm
	if diff := math.Abs(texts[1].Y - want); diff > 1e-9 {
		t.Fatalf("second paragraph at %g, want %g", texts[1].Y, want)
	}
	want = texts[1].Y + texts[1].Height + 3*PtToMm
	if diff := math.Abs(texts[2].Y - want); diff > 1e-9 {
		t.Fatalf("third paragraph at %g, want %g", texts[2].Y, want)
	}
}

func TestParagraphsFlowOntoNewPages(t *testing.T) {
	var story []Flowable
	for i := 0; i < 120; i++ {
		story = append(story, NewParagraph("entry", "Text"))
	}
	res := buildStory(t, story...)
	if len(res.Pages) < 2 {
		t.Fatalf("expected multiple pages, got %d", len(res.Pages))
	}
	count := 0
	for i, page := range res.Pages {
		if len(page.Texts) == 0 {
			t.Fatalf("page %d is empty", i+1)
		}
		if page.Texts[0].Y != 10 {
			t.Fatalf("page %d starts at %g, want 10", i+1, page.Texts[0].Y)
		}
		for _, tb := range page.Texts {
			if tb.Y+tb.Height > 287+1e-6 {
				t.Fatalf("page %d overflows: %g", i+1, tb.Y+tb.Height)
			}
		}
		count += len(page.Texts)
	}
	if count != 120 {
		t.Fatalf("expected 120 text boxes, got %d", count)
	}
}

func TestLongParagraphSplitsAtLineBoundary(t *testing.T) {
	single := buildStory(t, NewParagraph(words(1500), "Normal"))
	if len(single.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(single.Pages))
	}
	first, second := single.Pages[0].Texts[0], single.Pages[1].Texts[0]
	linesPerPage := 277 / (12 * PtToMm)
	if want := int(linesPerPage); len(first.Lines) != want {
		t.Fatalf("expected %d lines on first page, got %d", want, len(first.Lines))
	}
	if second.Y != 10 {
		t.Fatalf("continuation should start at the top, got %g", second.Y)
	}
	text := func(tb TextBox) []string {
		var out []string
		for _, l := range tb.Lines {
			for _, r := range l.Runs {
				out = append(out, strings.Fields(r.Content)...)
			}
		}
		return out
	}
	if got := len(text(first)) + len(text(second)); got != 1500 {
		t.Fatalf("expected 1500 words across pages, got %d", got)
	}
}

func TestRuleSpansFrameWidth(t *testing.T) {
	res := buildStory(t,
		NewParagraph("title", "Normal"),
		HRule{Width: 100, Thickness: 1.5, Color: "Accent", SpaceBefore: 6, SpaceAfter: 6},
		NewParagraph("after", "Normal"),
	)
	page := res.Pages[0]
	if len(page.Lines) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(page.Lines))
	}
	ln := page.Lines[0]
	if ln.X1 != 10 || math.Abs(ln.X2-200) > 1e-9 {
		t.Fatalf("rule should span the frame, got %g..%g", ln.X1, ln.X2)
	}
	if ln.Color != (Color{R: 0x9C, G: 0x7A, B: 0x2C}) {
		t.Fatalf("unexpected rule color %+v", ln.Color)
	}
	if diff := math.Abs(ln.Width - 1.5*PtToMm); diff > 1e-9 {
		t.Fatalf("unexpected thickness %g", ln.Width)
	}
	title := page.Texts[0]
	wantY := title.Y + title.Height + 6*PtToMm + ln.Width/2
	if diff := math.Abs(ln.Y1 - wantY); diff > 1e-9 {
		t.Fatalf("rule at %g, want %g", ln.Y1, wantY)
	}
	after := page.Texts[1]
	wantY = title.Y + title.Height + 6*PtToMm + ln.Width + 6*PtToMm
	if diff := math.Abs(after.Y - wantY); diff > 1e-9 {
		t.Fatalf("paragraph after rule at %g, want %g", after.Y, wantY)
	}
}

func TestHeaderTableLayout(t *testing.T) {
	table := &Table{
		Rows: [][]Flowable{{
			&Image{Name: "Icon"},
			NewParagraph(`<link href="https://github.com/lorem-ipsum">https://github.com/lorem-ipsum</link>`, "Link"),
			&Image{Name: "Icon"},
			NewParagraph(`<link href="https://www.linkedin.com/in/lorem">https://www.linkedin.com/in/lorem</link>`, "Link"),
		}},
		ColWidths: []float64{6, 0, 6, 0},
		Style:     TableStyle{VAlign: "middle", Align: "left", Padding: Padding{Right: 5}},
	}
	res := buildStory(t, table)
	page := res.Pages[0]
	if len(page.Tables) != 1 {
		t.Fatalf("expected a table")
	}
	tbl := page.Tables[0]
	want := []float64{6, 89, 6, 89}
	for i, w := range want {
		if math.Abs(tbl.ColumnWidths[i]-w) > 1e-9 {
			t.Fatalf("column %d width %g, want %g", i, tbl.ColumnWidths[i], w)
		}
	}
	if math.Abs(tbl.Height-5) > 1e-9 {
		t.Fatalf("row height should follow the icon, got %g", tbl.Height)
	}
	if len(page.Images) != 2 || !page.Images[0].Optional || page.Images[0].Path != "icon.png" {
		t.Fatalf("unexpected images %+v", page.Images)
	}
	if page.Images[1].X != 10+6+89 {
		t.Fatalf("second icon at %g", page.Images[1].X)
	}
	link := page.Texts[0]
	if diff := math.Abs(link.Y - (tbl.Y + (5-8*PtToMm)/2)); diff > 1e-9 {
		t.Fatalf("link text should be vertically centered, got %g", link.Y)
	}
	if link.X != 16 {
		t.Fatalf("link text x %g, want 16", link.X)
	}
	if len(page.Links) != 2 || page.Links[0].URI != "https://github.com/lorem-ipsum" {
		t.Fatalf("unexpected links %+v", page.Links)
	}
}

func TestSpacerAdvancesCursor(t *testing.T) {
	res := buildStory(t, NewParagraph("a", "Normal"), Spacer{Width: 1, Height: 6 * PtToMm}, NewParagraph("b", "Normal"))
	texts := res.Pages[0].Texts
	want := texts[0].Y + texts[0].Height + 6*PtToMm
	if diff := math.Abs(texts[1].Y - want); diff > 1e-9 {
		t.Fatalf("spacer not applied: %g want %g", texts[1].Y, want)
	}
}

func TestBuildErrors(t *testing.T) {
	res := compileTheme(t, testTheme)
	cases := map[string][]Flowable{
		"unknown style":  {NewParagraph("x", "Missing")},
		"bad markup":     {NewParagraph("<b>x", "Normal")},
		"unknown image":  {&Image{Name: "Nope"}},
		"bad rule color": {HRule{Color: "Nope"}},
	}
	for name, story := range cases {
		if _, err := Build(story, res, BuildOptions{Typesetter: stubTypesetter{}}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Build(nil, res, BuildOptions{}); err == nil {
		t.Fatalf("expected error without typesetter")
	}
}
