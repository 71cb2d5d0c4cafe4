package geom

import (
	"math"

	"github.com/tdewolff/canvas"
)

// Matrix is canvas' affine transform: x' = m[0][0]x + m[0][1]y + m[0][2].
// Products compose right to left, so m.Mul(q) applies q first.
type Matrix = canvas.Matrix

// Identity is the identity transformation.
var Identity = canvas.Identity

// RotateMatrix 返回绕原点逆时针旋转 deg 度的变换。
// 90° 的整数倍使用精确的正余弦，避免 180° 旋转两次后残留浮点误差。
func RotateMatrix(deg float64) Matrix {
	sin, cos := sincos(deg)
	return Matrix{
		{cos, -sin, 0},
		{sin, cos, 0},
	}
}

func sincos(deg float64) (float64, float64) {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(d * math.Pi / 180)
}

// Placement returns the transform of a block reference: scale, then rotate
// about the origin, then translate to at.
func Placement(at Point, sx, sy, deg float64) Matrix {
	return Identity.Translate(at.X, at.Y).Mul(RotateMatrix(deg)).Scale(sx, sy)
}

// Apply transforms a point.
func Apply(m Matrix, p Point) Point {
	return FromCanvas(m.Dot(p.Canvas()))
}
