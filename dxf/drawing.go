// Package dxf reads and writes the subset of AutoCAD DXF used for glyph
// files, template fragments and composed drawings: LINE, POLYLINE,
// LWPOLYLINE (read only) and INSERT with BLOCK definitions.
package dxf

import (
	"errors"

	"github.com/ByLCY/medalholder/geom"
)

// ErrMalformed is returned by Read for input that is not a usable DXF file.
var ErrMalformed = errors.New("dxf: malformed drawing")

// Entity is one of *Polyline, *Line or *Insert.
type Entity interface {
	entityType() string
}

// Polyline is a POLYLINE (written) or LWPOLYLINE/POLYLINE (read) entity.
type Polyline struct {
	geom.Polyline
}

// Line is a LINE entity.
type Line struct {
	geom.Line
}

// Insert is a block reference. The block's geometry is scaled by
// (XScale, YScale), rotated by Rotation degrees and moved to At.
type Insert struct {
	Block    string
	At       geom.Point
	XScale   float64
	YScale   float64
	Rotation float64
	Layer    string
}

func (*Polyline) entityType() string { return "POLYLINE" }
func (*Line) entityType() string     { return "LINE" }
func (*Insert) entityType() string   { return "INSERT" }

// Transform 返回块内坐标到模型空间坐标的变换。
func (in *Insert) Transform() geom.Matrix {
	sx, sy := in.XScale, in.YScale
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return geom.Placement(in.At, sx, sy, in.Rotation)
}

// Block is a named, reusable group of entities.
type Block struct {
	Name     string
	Entities []Entity
}

// Drawing is a DXF document: block definitions plus model-space entities.
type Drawing struct {
	Blocks   []*Block
	Entities []Entity
	// Skipped 记录读取时忽略的实体类型及数量。
	Skipped map[string]int
}

// Block returns the block definition with the given name.
func (d *Drawing) Block(name string) (*Block, bool) {
	for _, b := range d.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Bounds returns the model-space extents, following block references.
func (d *Drawing) Bounds() geom.Rect {
	return d.entitiesBounds(d.Entities, geom.Identity, 0)
}

// 块嵌套深度上限，防止自引用的块导致无限递归。
const maxBlockDepth = 8

func (d *Drawing) entitiesBounds(entities []Entity, m geom.Matrix, depth int) geom.Rect {
	r := geom.EmptyRect()
	for _, e := range entities {
		switch v := e.(type) {
		case *Polyline:
			r = r.Union(v.Polyline.Transform(m).Bounds())
		case *Line:
			r = r.Union(v.Line.Transform(m).Bounds())
		case *Insert:
			if depth >= maxBlockDepth {
				continue
			}
			if b, ok := d.Block(v.Block); ok {
				r = r.Union(d.entitiesBounds(b.Entities, m.Mul(v.Transform()), depth+1))
			}
		}
	}
	return r
}
