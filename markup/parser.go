package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/net/html"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Break", Pattern: `(?i)<br\s*/?>`},
		{Name: "Close", Pattern: `</[A-Za-z][A-Za-z0-9]*\s*>`},
		{Name: "Open", Pattern: `<[A-Za-z][A-Za-z0-9]*(?:\s+[A-Za-z_:][-A-Za-z0-9_:.]*\s*=\s*(?:"[^"]*"|'[^']*'))*\s*>`},
		{Name: "Text", Pattern: `[^<]+`},
		{Name: "Lt", Pattern: `<`},
	})

	fragmentParser = participle.MustBuild[fragment](
		participle.Lexer(markupLexer),
	)

	tagNamePattern = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9]*)`)
	attrPattern    = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// fragment is the root of a parsed paragraph.
type fragment struct {
	Nodes []*node `parser:"@@*"`
}

type node struct {
	Break   bool     `parser:"  @Break"`
	Element *element `parser:"| @@"`
	Text    *string  `parser:"| @(Text | Lt)"`
}

type element struct {
	Open     string  `parser:"@Open"`
	Children []*node `parser:"@@*"`
	Close    string  `parser:"@Close"`
}

// Span is a run of text sharing the same inline attributes.
// Break marks an explicit line break; its Text is empty.
type Span struct {
	Text   string `json:"text,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Href   string `json:"href,omitempty"`
	Color  string `json:"color,omitempty"`
	Break  bool   `json:"break,omitempty"`
}

func (s Span) sameAttrs(o Span) bool {
	return s.Bold == o.Bold && s.Italic == o.Italic && s.Href == o.Href && s.Color == o.Color && !s.Break && !o.Break
}

// Parse 将段落标记解析为 Span 列表。空白（含换行）折叠为单个空格，
// 段首段尾空白被去除；显式换行只能通过 <br/> 表达。
func Parse(src string) ([]Span, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	frag, err := fragmentParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("解析段落标记失败: %w", err)
	}
	w := &spanWriter{lastSpace: true}
	if err := w.walk(frag.Nodes, Span{}); err != nil {
		return nil, err
	}
	return w.finish(), nil
}

type spanWriter struct {
	spans     []Span
	lastSpace bool
}

func (w *spanWriter) walk(nodes []*node, attrs Span) error {
	for _, n := range nodes {
		switch {
		case n.Break:
			w.trimTrailingSpace()
			w.spans = append(w.spans, Span{Break: true})
			w.lastSpace = true
		case n.Element != nil:
			child, err := applyTag(n.Element, attrs)
			if err != nil {
				return err
			}
			if err := w.walk(n.Element.Children, child); err != nil {
				return err
			}
		case n.Text != nil:
			w.text(html.UnescapeString(*n.Text), attrs)
		}
	}
	return nil
}

// text 追加文本并折叠空白；U+00A0 (&nbsp;) 不参与折叠。
func (w *spanWriter) text(s string, attrs Span) {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if w.lastSpace {
				continue
			}
			b.WriteByte(' ')
			w.lastSpace = true
			continue
		}
		b.WriteRune(r)
		w.lastSpace = false
	}
	if b.Len() == 0 {
		return
	}
	attrs.Text = b.String()
	if n := len(w.spans); n > 0 && w.spans[n-1].sameAttrs(attrs) {
		w.spans[n-1].Text += attrs.Text
		return
	}
	w.spans = append(w.spans, attrs)
}

func (w *spanWriter) trimTrailingSpace() {
	for n := len(w.spans); n > 0; n = len(w.spans) {
		last := &w.spans[n-1]
		if last.Break {
			return
		}
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			return
		}
		w.spans = w.spans[:n-1]
	}
}

func (w *spanWriter) finish() []Span {
	w.trimTrailingSpace()
	return w.spans
}

func applyTag(el *element, attrs Span) (Span, error) {
	open := tagName(el.Open)
	if closeName := tagName(el.Close); closeName != open {
		return attrs, fmt.Errorf("标签不匹配: <%s> 以 </%s> 结束", open, closeName)
	}
	switch open {
	case "b", "strong":
		attrs.Bold = true
	case "i", "em":
		attrs.Italic = true
	case "link", "a":
		href := tagAttrs(el.Open)["href"]
		if href == "" {
			return attrs, fmt.Errorf("<%s> 缺少 href 属性", open)
		}
		attrs.Href = html.UnescapeString(href)
	case "font", "span":
		if c := tagAttrs(el.Open)["color"]; c != "" {
			attrs.Color = c
		}
	default:
		return attrs, fmt.Errorf("不支持的标签 <%s>", open)
	}
	return attrs, nil
}

func tagName(raw string) string {
	m := tagNamePattern.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.ToLower(m[1])
}

func tagAttrs(raw string) map[string]string {
	out := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		val := m[2]
		if val == "" {
			val = m[3]
		}
		out[strings.ToLower(m[1])] = val
	}
	return out
}

// Escape 转义数据文本，使其可以安全地拼接进段落标记。
func Escape(text string) string {
	return html.EscapeString(text)
}

// PlainText 返回去除样式后的纯文本，<br/> 变为换行。
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
