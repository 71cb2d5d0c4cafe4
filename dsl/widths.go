// Package dsl parses the small text formats shared between the glyph
// processing step and the composition step.
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	widthLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
		{Name: "Int", Pattern: `[-+]?\d+`},
		{Name: "Punct", Pattern: `[{}:,]`},
	})

	widthParser = participle.MustBuild[WidthTable](
		participle.Lexer(widthLexer),
		participle.Elide("Whitespace"),
	)
)

// WidthTable is the letter width cache written after bulk glyph processing,
// for example {'A': 30, 'B': 28}.
type WidthTable struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Entries []*WidthEntry  `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

// WidthEntry is one key/value pair of the table.
type WidthEntry struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   StringLiteral  `parser:"@String ':'"`
	Value int            `parser:"@Int"`
}

// StringLiteral unquotes single- or double-quoted strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	raw := values[0]
	if len(raw) >= 2 && raw[0] == '\'' {
		// 单引号字符串改写为双引号形式后按 Go 规则反转义
		inner := raw[1 : len(raw)-1]
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		raw = `"` + inner + `"`
	}
	val, err := strconv.Unquote(raw)
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// ParseWidthTable parses a width table from r.
func ParseWidthTable(r io.Reader) (*WidthTable, error) {
	return widthParser.Parse("", r)
}

// ParseWidthTableString parses a width table from a string.
func ParseWidthTableString(input string) (*WidthTable, error) {
	return widthParser.ParseString("", input)
}
