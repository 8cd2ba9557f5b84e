package generator

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/resume"
	"github.com/ByLCY/cvpress/theme"
)

// recordingEngine 按字符数估算宽度，并记录交给渲染阶段的结果。
type recordingEngine struct {
	rendered *layout.Result
}

func (e *recordingEngine) TextWidth(text string, font layout.FontResource, fontSize float64) (float64, error) {
	return float64(len([]rune(text))) * fontSize * 0.5, nil
}

func (e *recordingEngine) Render(result *layout.Result) ([]byte, error) {
	e.rendered = result
	return []byte("%PDF-stub"), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func allText(res *layout.Result) string {
	var b strings.Builder
	for _, page := range res.Pages {
		for _, tb := range page.Texts {
			for _, line := range tb.Lines {
				for _, run := range line.Runs {
					b.WriteString(run.Content)
				}
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func TestGenerateExampleWithStubEngine(t *testing.T) {
	engine := &recordingEngine{}
	out, err := Generate(resume.Example(), Options{Engine: engine, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out.PDF) != "%PDF-stub" || engine.rendered != out.Layout {
		t.Fatalf("engine output should be returned unchanged")
	}
	if out.Layout.Meta.Title != "John Doe - Resume" {
		t.Fatalf("unexpected title %q", out.Layout.Meta.Title)
	}
	text := allText(out.Layout)
	for _, want := range []string{"John Doe", "EDUCATION", "PROFESSIONAL EXPERIENCE", "Skills:", "•"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in laid out text", want)
		}
	}
	if len(out.Layout.Pages[0].Links) < 2 {
		t.Fatalf("expected GitHub and LinkedIn link areas, got %d", len(out.Layout.Pages[0].Links))
	}
}

func TestResumeLabelsOverrideTheme(t *testing.T) {
	r := resume.Example()
	r.Labels = map[string]string{"education": "FORMATION"}
	out, err := Generate(r, Options{Theme: "classic", Engine: &recordingEngine{}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	text := allText(out.Layout)
	if !strings.Contains(text, "FORMATION") || strings.Contains(text, "EDUCATION") {
		t.Fatalf("resume labels should replace the theme heading")
	}
}

func TestGenerateAllPresetsToPDF(t *testing.T) {
	for _, name := range theme.Presets() {
		out, err := Generate(resume.Example(), Options{Theme: name, AssetsDir: t.TempDir(), Logger: quietLogger()})
		if err != nil {
			t.Fatalf("%s: generate: %v", name, err)
		}
		if !bytes.HasPrefix(out.PDF, []byte("%PDF")) {
			t.Fatalf("%s: output is not a PDF", name)
		}
		// 页眉中的 GitHub/LinkedIn 链接必须可点击
		for _, want := range []string{"/URI", "https://github.com/lorem-ipsum", "https://www.linkedin.com/in/lorem-ipsum-12345"} {
			if !bytes.Contains(out.PDF, []byte(want)) {
				t.Fatalf("%s: PDF should contain %q", name, want)
			}
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := Generate(nil, Options{}); err == nil {
		t.Fatalf("nil resume should fail")
	}
	if _, err := Generate(resume.Example(), Options{Theme: "does-not-exist.theme", Engine: &recordingEngine{}}); err == nil {
		t.Fatalf("missing theme should fail")
	}
	if _, err := Generate(resume.Example(), Options{Format: "rst", Engine: &recordingEngine{}}); err == nil {
		t.Fatalf("unknown format should fail")
	}
}

func TestPlainFormatKeepsMarkupLiteral(t *testing.T) {
	r := resume.Example()
	r.Interests = "<b>not bold</b>"
	out, err := Generate(r, Options{Format: resume.FormatPlain, Engine: &recordingEngine{}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(allText(out.Layout), "<b>not bold</b>") {
		t.Fatalf("plain text should be rendered literally")
	}
}
