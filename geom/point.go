package geom

import (
	"math"

	"github.com/tdewolff/canvas"
)

// Point 是二维平面上的点（单位与所在阶段一致：字体单位或毫米）。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// FromCanvas converts a canvas point.
func FromCanvas(p canvas.Point) Point { return Point{X: p.X, Y: p.Y} }

// Canvas converts p to a canvas point.
func (p Point) Canvas() canvas.Point { return canvas.Point{X: p.X, Y: p.Y} }

// Near reports whether p and q are within tol of each other.
func (p Point) Near(q Point, tol float64) bool {
	return math.Hypot(p.X-q.X, p.Y-q.Y) <= tol
}

// Rect 是轴对齐包围盒。空包围盒的 Min 为 +Inf、Max 为 -Inf，Extend 后才有意义。
type Rect struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// EmptyRect returns a rectangle that contains nothing; extending it with a
// point yields a zero-size box at that point.
func EmptyRect() Rect {
	return Rect{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

func (r Rect) IsEmpty() bool { return r.MinX > r.MaxX || r.MinY > r.MaxY }

// Extend 返回包含 p 的最小包围盒。
func (r Rect) Extend(p Point) Rect {
	return Rect{
		MinX: math.Min(r.MinX, p.X),
		MinY: math.Min(r.MinY, p.Y),
		MaxX: math.Max(r.MaxX, p.X),
		MaxY: math.Max(r.MaxY, p.Y),
	}
}

// Union 合并两个包围盒，空包围盒不参与。
func (r Rect) Union(o Rect) Rect {
	if o.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return o
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

func (r Rect) Min() Point { return Point{X: r.MinX, Y: r.MinY} }
func (r Rect) Max() Point { return Point{X: r.MaxX, Y: r.MaxY} }

func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

func (r Rect) Area() float64 { return r.Width() * r.Height() }
