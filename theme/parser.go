package theme

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	themeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,=;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(themeLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node of a theme file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'theme' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one top-level block of a theme.
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Labels    *LabelsSection    `parser:"| @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Labels != nil:
		return "labels"
	case s.Resources != nil:
		return "resources"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// MetaSection holds PDF document information. Values may use ${path} bindings.
type MetaSection struct {
	Entries []*Assignment `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// LabelsSection overrides section headings and field prefixes.
type LabelsSection struct {
	Entries []*Assignment `parser:"'labels' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// ResourcesSection declares fonts, colors, images and paragraph styles.
type ResourcesSection struct {
	Decls []*Declaration `parser:"'resources' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Declaration is `font|color|style|image Name [extends Parent] [= value] [{ props }]`.
type Declaration struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Kind    string         `parser:"@('font' | 'color' | 'style' | 'image')"`
	Name    string         `parser:"@Ident"`
	Extends string         `parser:"( 'extends' @Ident )?"`
	Value   *Value         `parser:"( '=' @@ )?"`
	Props   []*Assignment  `parser:"( '{' Newline* ( @@ ( ';' | Newline )* )* '}' )?"`
}

// Prop returns the value of the named property, or nil.
func (d *Declaration) Prop(key string) *Value {
	for _, p := range d.Props {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// PageSection is the page template header, eg: `page A4 portrait margin 10mm`.
type PageSection struct {
	Size   string   `parser:"'page' @Ident"`
	Params []string `parser:"@(Ident | Number)*"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Value is a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` lists.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Text returns the scalar value as written (strings unquoted).
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Strings flattens scalars and arrays into a string slice.
func (v *Value) Strings() []string {
	if v == nil {
		return nil
	}
	if v.Array != nil {
		out := make([]string, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			if s := item.Text(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := v.Text(); s != "" {
		return []string{s}
	}
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a theme from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a theme from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
