package markup_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/cvpress/markup"
)

func TestParseBoldPrefix(t *testing.T) {
	spans, err := markup.Parse("<b>Skills:</b> Go, Docker &amp; Kubernetes")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []markup.Span{
		{Text: "Skills:", Bold: true},
		{Text: " Go, Docker & Kubernetes"},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLinkAndNesting(t *testing.T) {
	src := `<link href="https://github.com/lorem-ipsum">github.com/<i>lorem</i></link>`
	spans, err := markup.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := []markup.Span{
		{Text: "github.com/", Href: "https://github.com/lorem-ipsum"},
		{Text: "lorem", Italic: true, Href: "https://github.com/lorem-ipsum"},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCollapsesWhitespace(t *testing.T) {
	spans, err := markup.Parse("  Jan. 2018 – Dec. 2020\nTech City,   World  ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := markup.PlainText(spans); got != "Jan. 2018 – Dec. 2020 Tech City, World" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParseBreak(t *testing.T) {
	spans, err := markup.Parse("first line <br/> second")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := markup.PlainText(spans); got != "first line\nsecond" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParseStrayLessThan(t *testing.T) {
	spans, err := markup.Parse("latency < 5ms")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := markup.PlainText(spans); got != "latency < 5ms" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParseFontColor(t *testing.T) {
	spans, err := markup.Parse(`<font color="#9C7A2C">gold</font>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(spans) != 1 || spans[0].Color != "#9C7A2C" {
		t.Fatalf("expected colored span, got %+v", spans)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"mismatched": "<b>bold</i>",
		"unclosed":   "<b>bold",
		"unknown":    "<blink>x</blink>",
		"no href":    "<link>x</link>",
	}
	for name, src := range cases {
		if _, err := markup.Parse(src); err == nil {
			t.Fatalf("%s: expected error for %q", name, src)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	spans, err := markup.Parse("   ")
	if err != nil || spans != nil {
		t.Fatalf("expected nil spans, got %+v err=%v", spans, err)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	raw := `R&D <team> "core"`
	spans, err := markup.Parse(markup.Escape(raw))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := markup.PlainText(spans); got != raw {
		t.Fatalf("escape lost data: %q", got)
	}
}

func TestFromMarkdown(t *testing.T) {
	src := "Built **IoT** devices with *care*, see [repo](https://example.com/x?a=1&b=2)."
	out, err := markup.FromMarkdown(src)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	spans, err := markup.Parse(out)
	if err != nil {
		t.Fatalf("converted markup does not parse: %v\n%s", err, out)
	}
	var bold, italic, link bool
	for _, s := range spans {
		bold = bold || (s.Bold && s.Text == "IoT")
		italic = italic || (s.Italic && s.Text == "care")
		link = link || (s.Href == "https://example.com/x?a=1&b=2" && s.Text == "repo")
	}
	if !bold || !italic || !link {
		t.Fatalf("missing inline styles in %+v", spans)
	}
	if !strings.HasPrefix(markup.PlainText(spans), "Built IoT devices") {
		t.Fatalf("unexpected text %q", markup.PlainText(spans))
	}
}
