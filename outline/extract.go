// Package outline turns font glyphs into normalized, classified and
// flattened contours.
package outline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrGlyphNotFound means the font's character map has no glyph for the rune.
	ErrGlyphNotFound = errors.New("outline: glyph not found")
	// ErrEmptyGlyph means the glyph exists but has no contours.
	ErrEmptyGlyph = errors.New("outline: glyph has no contours")
)

// Pen receives contour drawing commands. *canvas.Path is the standard Pen.
type Pen interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cpx, cpy, x, y float64)
	CubeTo(cpx1, cpy1, cpx2, cpy2, x, y float64)
	Close()
}

var _ Pen = (*canvas.Path)(nil)

// Font wraps a parsed sfnt font. Outline is safe for concurrent use.
type Font struct {
	mu   sync.Mutex
	font *sfnt.Font
	buf  sfnt.Buffer
}

// LoadFont parses TrueType or OpenType data.
func LoadFont(data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	return &Font{font: f}, nil
}

// Name 返回字体全名，读取失败时为空。
func (f *Font) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, err := f.font.Name(&f.buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}

// UnitsPerEm returns the design grid size; Outline coordinates use this grid.
func (f *Font) UnitsPerEm() int {
	return int(f.font.UnitsPerEm())
}

// Outline decodes the glyph for r into a path in font units with the y axis
// pointing up. A glyph without contours (for example a space) yields an
// empty path and no error.
func (f *Font) Outline(r rune) (*canvas.Path, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return nil, fmt.Errorf("查找字符 %q 的字形失败: %w", r, err)
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}
	// ppem 等于 unitsPerEm 时，sfnt 返回的坐标正好是字体单位。
	ppem := fixed.Int26_6(f.font.UnitsPerEm()) << 6
	segments, err := f.font.LoadGlyph(&f.buf, idx, ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("加载字符 %q 的轮廓失败: %w", r, err)
	}

	p := &canvas.Path{}
	Draw(segments, p)
	return p, nil
}

// Draw replays sfnt segments on pen. sfnt closes contours implicitly, so
// every contour is closed explicitly before the next MoveTo and at the end.
// sfnt's y axis points down; points are flipped to y-up.
func Draw(segments sfnt.Segments, pen Pen) {
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				pen.Close()
			}
			x, y := coord(seg.Args[0])
			pen.MoveTo(x, y)
			open = true
		case sfnt.SegmentOpLineTo:
			x, y := coord(seg.Args[0])
			pen.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := coord(seg.Args[0])
			x, y := coord(seg.Args[1])
			pen.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := coord(seg.Args[0])
			c2x, c2y := coord(seg.Args[1])
			x, y := coord(seg.Args[2])
			pen.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if open {
		pen.Close()
	}
}

func coord(p fixed.Point26_6) (float64, float64) {
	return float64(p.X) / 64, -float64(p.Y) / 64
}
