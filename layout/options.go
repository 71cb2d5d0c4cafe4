package layout

import "github.com/ByLCY/medalholder/templates"

// Default spacing values in millimetres.
const (
	DefaultSpacing    = 5.0
	DefaultWhitespace = 40.0
)

// ComposeOptions 配置组装阶段所需的依赖。
type ComposeOptions struct {
	Templates FragmentSource // 层级与图案片段
	Glyphs    GlyphSource    // 字母字形与宽度
}

// FragmentSource loads named fragments. *templates.Store implements it.
type FragmentSource interface {
	Load(name string) (*templates.Fragment, error)
}

// WidthSource reports the cached width of an uppercase letter.
type WidthSource interface {
	Width(letter rune) (float64, bool)
}

// GlyphSource serves glyph fragments alongside their widths.
type GlyphSource interface {
	WidthSource
	Fragment(letter rune) (*templates.Fragment, error)
}
