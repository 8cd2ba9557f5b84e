package markup

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// FromMarkdown converts inline Markdown (emphasis, strong, links, code spans)
// into paragraph markup. Block structure is flattened: consecutive blocks are
// joined with <br/>.
func FromMarkdown(src string) (string, error) {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Document:
		case *ast.Text:
			if !entering {
				return ast.WalkContinue, nil
			}
			b.WriteString(Escape(string(node.Segment.Value(source))))
			if node.HardLineBreak() {
				b.WriteString("<br/>")
			} else if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			if entering {
				b.WriteString(Escape(string(node.Value)))
			}
		case *ast.Emphasis:
			tag := "i"
			if node.Level >= 2 {
				tag = "b"
			}
			if entering {
				b.WriteString("<" + tag + ">")
			} else {
				b.WriteString("</" + tag + ">")
			}
		case *ast.Link:
			if entering {
				fmt.Fprintf(&b, `<link href="%s">`, Escape(string(node.Destination)))
			} else {
				b.WriteString("</link>")
			}
		case *ast.AutoLink:
			if entering {
				url := Escape(string(node.URL(source)))
				fmt.Fprintf(&b, `<link href="%s">%s</link>`, url, url)
			}
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			if entering {
				for i := 0; i < node.Segments.Len(); i++ {
					seg := node.Segments.At(i)
					b.WriteString(Escape(string(seg.Value(source))))
				}
			}
			return ast.WalkSkipChildren, nil
		default:
			if !entering && n.Type() == ast.TypeBlock && n.NextSibling() != nil {
				b.WriteString("<br/>")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("转换 Markdown 失败: %w", err)
	}
	return b.String(), nil
}
