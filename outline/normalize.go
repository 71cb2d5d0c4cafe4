package outline

import "github.com/tdewolff/canvas"

// DefaultHeight 是字母轮廓归一化后的目标高度（毫米）。
const DefaultHeight = 50.0

// Normalize returns a copy of p scaled uniformly to targetHeight with its
// bounding-box minimum moved to the origin. A path with zero height keeps
// its native size (scale 1) and is only translated.
func Normalize(p *canvas.Path, targetHeight float64) *canvas.Path {
	q := p.Copy()
	if q.Empty() {
		return q
	}
	b := q.Bounds()
	scale := 1.0
	if h := b.H(); h != 0 {
		scale = targetHeight / h
	}
	// 右侧的变换先作用：先平移到原点，再缩放
	return q.Transform(canvas.Identity.Scale(scale, scale).Translate(-b.X0, -b.Y0))
}
