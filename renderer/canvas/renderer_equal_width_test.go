package canvasrenderer

import (
	"testing"

	"github.com/ByLCY/cvpress/layout"
)

func equalWidthResources(frame float64) layout.ResourceSet {
	return layout.ResourceSet{
		Fonts: map[string]layout.FontResource{"Body": body()},
		Styles: map[string]layout.ParagraphStyle{
			"Body": {Name: "Body", Font: "Body", FontSize: 12, Leading: 14.4, Alignment: "left"},
		},
		Page: layout.PageTemplate{
			Width:  frame + 20,
			Height: 100,
			Margin: layout.Margin{Top: 10, Right: 10, Bottom: 10, Left: 10},
		},
	}
}

// 当第一行宽度与内容框宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenBreak(t *testing.T) {
	r := NewRenderer(".")
	first := "SAMPLE-A"
	limit, err := r.TextWidth(first, body(), 12*layout.PtToMm)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	story := []layout.Flowable{layout.NewParagraph(first+"<br/>SAMPLE-B", "Body")}
	res, err := layout.Build(story, equalWidthResources(limit), layout.BuildOptions{Typesetter: r})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	lines := res.Pages[0].Texts[0].Lines
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines without blank, got %d", got)
	}
	if got := lines[0].Runs[0].Content; got != first {
		t.Fatalf("first line mismatch: got=%q want=%q", got, first)
	}
	if got := lines[1].Runs[0].Content; got != "SAMPLE-B" {
		t.Fatalf("second line mismatch: got=%q want=%q", got, "SAMPLE-B")
	}
}

// 使用真实字体度量时，折行后每行宽度都不超过内容框。
func TestWrapWithRealMetricsStaysInFrame(t *testing.T) {
	r := NewRenderer(".")
	const frame = 30.0
	story := []layout.Flowable{layout.NewParagraph("longlonglong longlonglong longlonglong aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "Body")}
	res, err := layout.Build(story, equalWidthResources(frame), layout.BuildOptions{Typesetter: r})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	var total int
	for _, page := range res.Pages {
		for _, tb := range page.Texts {
			for i, ln := range tb.Lines {
				total++
				if ln.Width-frame > 1e-6 {
					t.Fatalf("line %d width exceeds frame: width=%g frame=%g", i, ln.Width, frame)
				}
			}
		}
	}
	if total < 3 {
		t.Fatalf("expected wrapping into several lines, got %d", total)
	}
}
