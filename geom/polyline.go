package geom

// Layer names used for drawable entities.
const (
	LayerDefault   = "0"
	LayerInner     = "InnerContours"
	LayerExtension = "Extension"
)

// Polyline 是已展平的折线。Closed 为 true 时最后一个顶点隐式连回第一个顶点，
// 顶点序列本身不重复首点。
type Polyline struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
	Layer  string  `json:"layer,omitempty"`
}

func (pl Polyline) Bounds() Rect {
	r := EmptyRect()
	for _, p := range pl.Points {
		r = r.Extend(p)
	}
	return r
}

func (pl Polyline) Transform(m Matrix) Polyline {
	pts := make([]Point, len(pl.Points))
	for i, p := range pl.Points {
		pts[i] = Apply(m, p)
	}
	return Polyline{Points: pts, Closed: pl.Closed, Layer: pl.Layer}
}

// Line 是一条独立线段（例如加长线）。
type Line struct {
	A     Point  `json:"a"`
	B     Point  `json:"b"`
	Layer string `json:"layer,omitempty"`
}

func (l Line) Bounds() Rect { return EmptyRect().Extend(l.A).Extend(l.B) }

func (l Line) Transform(m Matrix) Line {
	return Line{A: Apply(m, l.A), B: Apply(m, l.B), Layer: l.Layer}
}
