package outline

import (
	"cmp"
	"slices"

	"github.com/tdewolff/canvas"
)

// CloseTolerance 是判断子路径首尾重合的距离。
const CloseTolerance = 1e-6

// Contours is a glyph split into its outer boundary and its holes. Every
// contour is a single closed subpath; holes run opposite to the outer
// contour.
type Contours struct {
	Outer *canvas.Path
	Inner []*canvas.Path
}

// Classify picks the subpath with the largest bounding-box area as the outer
// contour and treats all others as holes. This is an area heuristic, not a
// containment test: a hole whose box is larger than a thin outer stroke is
// misclassified.
func Classify(p *canvas.Path) (Contours, error) {
	if p.Empty() {
		return Contours{}, ErrEmptyGlyph
	}
	subs := p.Split()
	if len(subs) == 0 {
		return Contours{}, ErrEmptyGlyph
	}
	slices.SortStableFunc(subs, func(a, b *canvas.Path) int {
		return cmp.Compare(b.Bounds().Area(), a.Bounds().Area())
	})

	c := Contours{Outer: closeContour(subs[0])}
	for _, sp := range subs[1:] {
		// 内轮廓先闭合再反向，使其绘制方向与外轮廓相反。
		c.Inner = append(c.Inner, closeContour(sp).Reverse())
	}
	return c, nil
}

// closeContour returns a closed copy of the subpath sp. An end point farther
// than CloseTolerance from the start gets an explicit closing line.
func closeContour(sp *canvas.Path) *canvas.Path {
	q := sp.Copy()
	if q.Closed() {
		return q
	}
	if start := q.StartPos(); q.Pos().Sub(start).Length() > CloseTolerance {
		q.LineTo(start.X, start.Y)
	}
	q.Close()
	return q
}
