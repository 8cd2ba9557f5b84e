package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/cvpress/markup"
)

const widthEpsilon = 1e-6

// piece 是同一字体、颜色下的一个词片段或空白。
type piece struct {
	text  string
	font  string
	size  float64 // mm
	color Color
	href  string
	width float64
	space bool
}

func (p piece) sameRun(o piece) bool {
	return p.font == o.font && p.size == o.size && p.color == o.color && p.href == o.href
}

// wrappedLine 是折行后的一行，末尾空白已去除。
type wrappedLine struct {
	pieces []piece
	width  float64
	last   bool // 段尾或 <br/> 前的一行，两端对齐时不拉伸
}

type element struct {
	word  []piece
	space *piece
	brk   bool
}

type measureKey struct {
	font string
	size float64
	text string
}

// wrapper 对带样式的 Span 做贪心折行，宽度通过 Typesetter 测量。
type wrapper struct {
	ts       Typesetter
	res      ResourceSet
	style    ParagraphStyle
	size     float64
	variants map[[2]bool]string
	widths   map[measureKey]float64
}

func newWrapper(ts Typesetter, res ResourceSet, style ParagraphStyle) *wrapper {
	return &wrapper{
		ts:       ts,
		res:      res,
		style:    style,
		size:     style.FontSize * PtToMm,
		variants: map[[2]bool]string{},
		widths:   map[measureKey]float64{},
	}
}

func (w *wrapper) wrap(spans []markup.Span, width float64) ([]wrappedLine, error) {
	elems, err := w.elements(spans)
	if err != nil {
		return nil, err
	}

	var (
		lines   []wrappedLine
		cur     wrappedLine
		pending []piece
		endBrk  bool
	)
	finish := func(last bool) {
		cur.last = last
		lines = append(lines, cur)
		cur = wrappedLine{}
		pending = nil
	}
	appendWord := func(word []piece, spaces []piece) {
		for _, p := range spaces {
			cur.pieces = append(cur.pieces, p)
			cur.width += p.width
		}
		for _, p := range word {
			cur.pieces = append(cur.pieces, p)
			cur.width += p.width
		}
	}

	for _, el := range elems {
		endBrk = false
		switch {
		case el.brk:
			finish(true)
			endBrk = true
		case el.space != nil:
			if len(cur.pieces) > 0 {
				pending = append(pending, *el.space)
			}
		default:
			ww := sumWidth(el.word)
			sw := sumWidth(pending)
			if len(cur.pieces) > 0 && cur.width+sw+ww > width+widthEpsilon {
				finish(false)
				sw = 0
			}
			if len(cur.pieces) == 0 && ww > width+widthEpsilon {
				chunks, err := w.splitWord(el.word, width)
				if err != nil {
					return nil, err
				}
				for i, chunk := range chunks {
					appendWord(chunk, nil)
					if i < len(chunks)-1 {
						finish(false)
					}
				}
				pending = nil
				continue
			}
			appendWord(el.word, pending)
			pending = nil
		}
	}
	if len(cur.pieces) > 0 || endBrk {
		finish(true)
	}
	return lines, nil
}

// elements 把 Span 切分为词、空白与换行；相邻的非空白片段组成一个词。
func (w *wrapper) elements(spans []markup.Span) ([]element, error) {
	var out []element
	var word []piece
	flushWord := func() {
		if len(word) > 0 {
			out = append(out, element{word: word})
			word = nil
		}
	}
	for _, span := range spans {
		if span.Break {
			flushWord()
			out = append(out, element{brk: true})
			continue
		}
		font := w.variant(span.Bold, span.Italic)
		color := w.style.TextColor
		if span.Color != "" {
			c, err := resolveColor(span.Color, w.res)
			if err != nil {
				return nil, err
			}
			color = c
		}
		for _, tok := range splitSpaces(span.Text) {
			p := piece{text: tok, font: font, size: w.size, color: color, href: span.Href, space: tok == " "}
			width, err := w.measure(p.font, tok)
			if err != nil {
				return nil, err
			}
			p.width = width
			if p.space {
				flushWord()
				sp := p
				out = append(out, element{space: &sp})
				continue
			}
			word = append(word, p)
		}
	}
	flushWord()
	return out, nil
}

// splitWord 将超出行宽的词按字符拆分。
func (w *wrapper) splitWord(word []piece, limit float64) ([][]piece, error) {
	var (
		chunks [][]piece
		cur    []piece
		curW   float64
	)
	for _, p := range word {
		var b strings.Builder
		bw := 0.0
		for _, r := range p.text {
			rw, err := w.measure(p.font, string(r))
			if err != nil {
				return nil, err
			}
			if curW+bw+rw > limit+widthEpsilon && curW+bw > 0 {
				if b.Len() > 0 {
					cur = append(cur, p.with(b.String(), bw))
				}
				chunks = append(chunks, cur)
				cur, curW = nil, 0
				b.Reset()
				bw = 0
			}
			b.WriteRune(r)
			bw += rw
		}
		if b.Len() > 0 {
			cur = append(cur, p.with(b.String(), bw))
			curW += bw
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks, nil
}

func (p piece) with(text string, width float64) piece {
	p.text = text
	p.width = width
	return p
}

func (w *wrapper) measure(font, text string) (float64, error) {
	key := measureKey{font: font, size: w.size, text: text}
	if v, ok := w.widths[key]; ok {
		return v, nil
	}
	width, err := w.ts.TextWidth(text, w.res.Fonts[font], w.size)
	if err != nil {
		return 0, fmt.Errorf("测量文本宽度失败 (%s): %w", font, err)
	}
	w.widths[key] = width
	return width, nil
}

// variant 查找与样式字体同 Family 的粗体/斜体变体，找不到时沿用样式字体。
func (w *wrapper) variant(bold, italic bool) string {
	key := [2]bool{bold, italic}
	if name, ok := w.variants[key]; ok {
		return name
	}
	name := w.style.Font
	base := w.res.Fonts[name]
	baseBold, baseItalic := fontFlags(base.Style)
	wantBold, wantItalic := baseBold || bold, baseItalic || italic
	if wantBold != baseBold || wantItalic != baseItalic {
		candidates := make([]string, 0, len(w.res.Fonts))
		for n, f := range w.res.Fonts {
			if f.Family == base.Family {
				candidates = append(candidates, n)
			}
		}
		sort.Strings(candidates)
		for _, n := range candidates {
			b, i := fontFlags(w.res.Fonts[n].Style)
			if b == wantBold && i == wantItalic {
				name = n
				break
			}
		}
	}
	w.variants[key] = name
	return name
}

func fontFlags(style string) (bold, italic bool) {
	s := strings.ToLower(style)
	bold = strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
	italic = strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	return bold, italic
}

// splitSpaces 将文本切为单个空格与非空格片段；markup 已把空白折叠为单个空格。
func splitSpaces(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			continue
		}
		if i > start {
			out = append(out, s[start:i])
		}
		out = append(out, " ")
		start = i + 1
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func sumWidth(ps []piece) float64 {
	total := 0.0
	for _, p := range ps {
		total += p.width
	}
	return total
}

// place 计算一行中各 run 的页面横坐标。x、avail 为文本区域左边界与宽度。
func (l wrappedLine) place(x, avail float64, align string) (float64, []TextRun) {
	pieces := trimTrailingSpaces(l.pieces)
	width := sumWidth(pieces)
	offset, extra := 0.0, 0.0
	switch align {
	case "center":
		offset = (avail - width) / 2
	case "right":
		offset = avail - width
	case "justify":
		if !l.last {
			if gaps := countSpaces(pieces); gaps > 0 && avail > width {
				extra = (avail - width) / float64(gaps)
			}
		}
	}
	cursor := x + offset
	var (
		runs []TextRun
		prev piece
	)
	for _, p := range pieces {
		if p.space && extra > 0 {
			cursor += p.width + extra
			continue
		}
		if n := len(runs); n > 0 && extra == 0 && prev.sameRun(p) {
			runs[n-1].Content += p.text
			runs[n-1].Width += p.width
			cursor += p.width
			prev = p
			continue
		}
		runs = append(runs, TextRun{
			Content:  p.text,
			X:        cursor,
			Width:    p.width,
			Font:     p.font,
			FontSize: p.size,
			Color:    p.color,
			Href:     p.href,
		})
		cursor += p.width
		prev = p
	}
	if extra > 0 {
		width = avail
	}
	return width, runs
}

func trimTrailingSpaces(ps []piece) []piece {
	end := len(ps)
	for end > 0 && ps[end-1].space {
		end--
	}
	return ps[:end]
}

func countSpaces(ps []piece) int {
	n := 0
	for _, p := range ps {
		if p.space {
			n++
		}
	}
	return n
}
