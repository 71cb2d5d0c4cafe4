package outline

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/medalholder/geom"
)

// DefaultTolerance is the maximum chord deviation used when none is given.
const DefaultTolerance = 0.01

// Flatten approximates the subpath sp by a polyline whose chords deviate
// from the curve by at most tolerance. For a closed subpath the duplicated
// closing vertex is dropped and the polyline is marked closed.
func Flatten(sp *canvas.Path, tolerance float64) geom.Polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	coords := sp.Flatten(tolerance).Coords()
	pts := make([]geom.Point, 0, len(coords))
	for _, c := range coords {
		pts = append(pts, geom.FromCanvas(c))
	}
	closed := sp.Closed()
	if closed && len(pts) > 1 && pts[len(pts)-1].Near(pts[0], CloseTolerance) {
		pts = pts[:len(pts)-1]
	}
	return geom.Polyline{Points: pts, Closed: closed}
}

// FlattenContours flattens the outer contour and every hole; holes are put
// on the InnerContours layer.
func FlattenContours(c Contours, tolerance float64) (geom.Polyline, []geom.Polyline) {
	outer := Flatten(c.Outer, tolerance)
	outer.Layer = geom.LayerDefault
	inner := make([]geom.Polyline, 0, len(c.Inner))
	for _, sp := range c.Inner {
		pl := Flatten(sp, tolerance)
		pl.Layer = geom.LayerInner
		inner = append(inner, pl)
	}
	return outer, inner
}
