// Package dsl parses the annotation markup language. A markup string is a
// stream of words, optionally grouped into bracketed phrases that carry a
// legend label and style properties:
//
//	cold winters and [warm summers](summer){color: #B22222; size: 14pt}
//
// Reserved punctuation ([](){};:") inside a word must be quoted; a quoted
// string always forms a single indivisible token.
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/scholia/binding"
	"github.com/ByLCY/scholia/layout"
)

var (
	markupLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "LBracket", Pattern: `\[`},
		{Name: "RBracket", Pattern: `\]`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Semi", Pattern: `;`},
		{Name: "Word", Pattern: `[^\s\[\](){}:;"]+`},
	})

	markupParser = participle.MustBuild[Markup](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace"),
	)
)

// Markup is the root AST node for an annotation markup string.
type Markup struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Items []*Item        `parser:"@@*"`
}

// Item is either a styled phrase or a single plain term.
type Item struct {
	Phrase *Phrase `parser:"  @@"`
	Term   *Term   `parser:"| @@"`
}

// Phrase is a bracketed word group with optional label and style block:
// [warm summers](summer){color: #B22222; size: 14pt}.
type Phrase struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Words []*Term        `parser:"'[' @@+ ']'"`
	Label string         `parser:"( '(' @Word ')' )?"`
	Props []*Prop        `parser:"( '{' @@ ( ';' @@ )* ';'? '}' )?"`
}

// Term is one indivisible token: a bare word or a quoted string. Quoting
// lets a token carry spaces and reserved punctuation.
type Term struct {
	Quoted *StringLiteral `parser:"  @String"`
	Plain  string         `parser:"| ( @Word | @Color )"`
}

// Text returns the token text of this term.
func (t *Term) Text() string {
	if t.Quoted != nil {
		return string(*t.Quoted)
	}
	return t.Plain
}

// Prop is a key: value style property inside a phrase block.
type Prop struct {
	Key   string `parser:"@Word ':'"`
	Value *Term  `parser:"@@"`
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

// Parse parses markup content from an io.Reader.
func Parse(r io.Reader) (*Markup, error) {
	return markupParser.Parse("", r)
}

// ParseString parses markup content from a string.
func ParseString(input string) (*Markup, error) {
	return markupParser.ParseString("", input)
}

// Tokens flattens the markup into layout tokens. Each word of a phrase
// shares the phrase's label and resolved style.
func (m *Markup) Tokens() ([]layout.Token, error) {
	var out []layout.Token
	for _, item := range m.Items {
		switch {
		case item.Term != nil:
			out = append(out, layout.Token{Text: item.Term.Text()})
		case item.Phrase != nil:
			style, err := item.Phrase.style()
			if err != nil {
				return nil, err
			}
			for _, w := range item.Phrase.Words {
				out = append(out, layout.Token{
					Text:  w.Text(),
					Style: style,
					Label: item.Phrase.Label,
				})
			}
		}
	}
	return out, nil
}

// style resolves the phrase's property block into a text style override.
// Supported keys: color, size (with unit), font.
func (p *Phrase) style() (*layout.TextStyle, error) {
	if len(p.Props) == 0 {
		return nil, nil
	}
	style := &layout.TextStyle{}
	for _, prop := range p.Props {
		value := prop.Value.Text()
		switch strings.ToLower(prop.Key) {
		case "color":
			c, err := layout.ParseColor(value)
			if err != nil {
				return nil, fmt.Errorf("phrase at %s: %w", p.Pos, err)
			}
			style.Color = &c
		case "size":
			l := layout.ParseLength(value)
			if l.Value <= 0 || l.Unit == layout.UnitNone {
				return nil, fmt.Errorf("phrase at %s: size %q needs a positive value with unit", p.Pos, value)
			}
			style.Size = l
		case "font":
			style.Font = value
		default:
			return nil, fmt.Errorf("phrase at %s: unknown style property %q", p.Pos, prop.Key)
		}
	}
	return style, nil
}

// Compile interpolates data bindings into src, parses the markup and
// returns the flattened tokens. It is the one-call entry used by the
// annotation layer.
func Compile(src string, data any) ([]layout.Token, error) {
	markup, err := ParseString(binding.Interpolate(src, data))
	if err != nil {
		return nil, err
	}
	return markup.Tokens()
}
