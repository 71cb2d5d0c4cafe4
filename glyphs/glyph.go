// Package glyphs builds and serves the per-letter glyph cache: closed,
// flattened contours for A–Z plus the rounded width table.
package glyphs

import (
	"errors"
	"fmt"

	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/logging"
	"github.com/ByLCY/medalholder/outline"
	"github.com/ByLCY/medalholder/templates"
)

// Letters are the characters kept in the glyph cache.
const Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Glyph is one processed letter. Contours are in millimetres with the
// bounding-box minimum at the origin.
type Glyph struct {
	Char  rune
	Outer geom.Polyline
	Inner []geom.Polyline
	Width float64

	fragment *templates.Fragment
}

// Fragment returns the glyph as an insertable fragment named after the letter.
func (g *Glyph) Fragment() *templates.Fragment {
	return g.fragment
}

// Options controls glyph processing.
type Options struct {
	Height    float64 // 目标字高，默认 outline.DefaultHeight
	Tolerance float64 // 展平容差，默认 outline.DefaultTolerance
}

func (o Options) withDefaults() Options {
	if o.Height <= 0 {
		o.Height = outline.DefaultHeight
	}
	if o.Tolerance <= 0 {
		o.Tolerance = outline.DefaultTolerance
	}
	return o
}

// Process extracts, normalizes, classifies and flattens one glyph. It
// returns errors wrapping outline.ErrGlyphNotFound or outline.ErrEmptyGlyph
// when the letter has nothing to draw.
func Process(f *outline.Font, r rune, opts Options) (*Glyph, error) {
	opts = opts.withDefaults()
	p, err := f.Outline(r)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: %q", outline.ErrEmptyGlyph, r)
	}
	contours, err := outline.Classify(outline.Normalize(p, opts.Height))
	if err != nil {
		return nil, fmt.Errorf("字符 %q: %w", r, err)
	}
	outer, inner := outline.FlattenContours(contours, opts.Tolerance)

	g := &Glyph{Char: r, Outer: outer, Inner: inner}
	frag := &templates.Fragment{Name: string(r), Polylines: append([]geom.Polyline{outer}, inner...)}
	g.Width = frag.Bounds().Width()
	g.fragment = frag
	return g, nil
}

// Set is an in-memory glyph cache. It is read-only after BuildSet.
type Set struct {
	glyphs map[rune]*Glyph
}

// NewSet builds a Set from already processed glyphs.
func NewSet(glyphs ...*Glyph) *Set {
	s := &Set{glyphs: make(map[rune]*Glyph, len(glyphs))}
	for _, g := range glyphs {
		s.glyphs[g.Char] = g
	}
	return s
}

// BuildSet processes every letter in Letters. Letters the font cannot draw
// are logged and left out of the set; they are not an error.
func BuildSet(f *outline.Font, opts Options) *Set {
	s := &Set{glyphs: map[rune]*Glyph{}}
	for _, r := range Letters {
		g, err := Process(f, r, opts)
		switch {
		case errors.Is(err, outline.ErrGlyphNotFound):
			logging.Logger().Warn("字体中没有该字母的字形", "letter", string(r))
			continue
		case errors.Is(err, outline.ErrEmptyGlyph):
			logging.Logger().Warn("字母轮廓为空", "letter", string(r))
			continue
		case err != nil:
			logging.Logger().Warn("处理字母失败", "letter", string(r), "err", err)
			continue
		}
		s.glyphs[r] = g
	}
	return s
}

// Glyph returns the processed glyph for an uppercase letter.
func (s *Set) Glyph(r rune) (*Glyph, bool) {
	g, ok := s.glyphs[r]
	return g, ok
}

// Len returns the number of glyphs in the set.
func (s *Set) Len() int { return len(s.glyphs) }

// Width returns the rounded width, the same value the width table stores.
func (s *Set) Width(r rune) (float64, bool) {
	g, ok := s.glyphs[r]
	if !ok {
		return 0, false
	}
	return float64(RoundWidth(g.Width)), true
}

// Fragment returns the glyph's fragment.
func (s *Set) Fragment(r rune) (*templates.Fragment, error) {
	g, ok := s.glyphs[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", outline.ErrGlyphNotFound, r)
	}
	return g.Fragment(), nil
}

// Widths returns the width table of the set. It has an entry for every
// letter in Letters; letters without a glyph get width 0.
func (s *Set) Widths() Widths {
	w := make(Widths, len(Letters))
	for _, r := range Letters {
		w[r] = 0
		if g, ok := s.glyphs[r]; ok {
			w[r] = RoundWidth(g.Width)
		}
	}
	return w
}
