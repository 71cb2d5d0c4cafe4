package dxf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ByLCY/medalholder/geom"
)

// layers 写入 LAYER 表的图层；颜色 7 在白底和黑底下都显示为前景色。
var layers = []string{geom.LayerDefault, geom.LayerInner, geom.LayerExtension}

// Write serializes d as an AutoCAD R12 ASCII DXF file.
func Write(w io.Writer, d *Drawing) error {
	if d == nil {
		return fmt.Errorf("dxf: 文档为空")
	}
	dw := &writer{w: bufio.NewWriter(w)}
	dw.header(d.Bounds())
	dw.tables()
	dw.blocks(d.Blocks)
	dw.section("ENTITIES")
	for _, e := range d.Entities {
		dw.entity(e)
	}
	dw.pair(0, "ENDSEC")
	dw.pair(0, "EOF")
	if dw.err != nil {
		return fmt.Errorf("写入 DXF 失败: %w", dw.err)
	}
	if err := dw.w.Flush(); err != nil {
		return fmt.Errorf("写入 DXF 失败: %w", err)
	}
	return nil
}

// writer remembers the first error so the emit helpers stay unconditional.
type writer struct {
	w   *bufio.Writer
	err error
}

func (dw *writer) pair(code int, value string) {
	if dw.err != nil {
		return
	}
	_, dw.err = fmt.Fprintf(dw.w, "%3d\n%s\n", code, value)
}

func (dw *writer) num(code int, v float64) {
	dw.pair(code, strconv.FormatFloat(v, 'f', -1, 64))
}

func (dw *writer) integer(code int, v int) {
	dw.pair(code, strconv.Itoa(v))
}

func (dw *writer) point(code int, p geom.Point) {
	dw.num(code, p.X)
	dw.num(code+10, p.Y)
	dw.num(code+20, 0)
}

func (dw *writer) section(name string) {
	dw.pair(0, "SECTION")
	dw.pair(2, name)
}

func (dw *writer) header(ext geom.Rect) {
	if ext.IsEmpty() {
		ext = geom.Rect{}
	}
	dw.section("HEADER")
	dw.pair(9, "$ACADVER")
	dw.pair(1, "AC1009")
	dw.pair(9, "$INSBASE")
	dw.point(10, geom.Point{})
	dw.pair(9, "$EXTMIN")
	dw.point(10, ext.Min())
	dw.pair(9, "$EXTMAX")
	dw.point(10, ext.Max())
	dw.pair(9, "$INSUNITS")
	dw.integer(70, 4) // mm
	dw.pair(0, "ENDSEC")
}

func (dw *writer) tables() {
	dw.section("TABLES")
	dw.pair(0, "TABLE")
	dw.pair(2, "LAYER")
	dw.integer(70, len(layers))
	for _, name := range layers {
		dw.pair(0, "LAYER")
		dw.pair(2, name)
		dw.integer(70, 0)
		dw.integer(62, 7)
		dw.pair(6, "CONTINUOUS")
	}
	dw.pair(0, "ENDTAB")
	dw.pair(0, "ENDSEC")
}

func (dw *writer) blocks(blocks []*Block) {
	dw.section("BLOCKS")
	for _, b := range blocks {
		dw.pair(0, "BLOCK")
		dw.pair(8, geom.LayerDefault)
		dw.pair(2, b.Name)
		dw.integer(70, 0)
		dw.point(10, geom.Point{})
		dw.pair(3, b.Name)
		dw.pair(1, "")
		for _, e := range b.Entities {
			dw.entity(e)
		}
		dw.pair(0, "ENDBLK")
		dw.pair(8, geom.LayerDefault)
	}
	dw.pair(0, "ENDSEC")
}

func (dw *writer) entity(e Entity) {
	switch v := e.(type) {
	case *Polyline:
		layer := layerOrDefault(v.Layer)
		dw.pair(0, "POLYLINE")
		dw.pair(8, layer)
		dw.integer(66, 1)
		dw.point(10, geom.Point{})
		flags := 0
		if v.Closed {
			flags = 1
		}
		dw.integer(70, flags)
		for _, p := range v.Points {
			dw.pair(0, "VERTEX")
			dw.pair(8, layer)
			dw.point(10, p)
		}
		dw.pair(0, "SEQEND")
		dw.pair(8, layer)
	case *Line:
		dw.pair(0, "LINE")
		dw.pair(8, layerOrDefault(v.Layer))
		dw.point(10, v.A)
		dw.point(11, v.B)
	case *Insert:
		dw.pair(0, "INSERT")
		dw.pair(8, layerOrDefault(v.Layer))
		dw.pair(2, v.Block)
		dw.point(10, v.At)
		dw.num(41, scaleOrOne(v.XScale))
		dw.num(42, scaleOrOne(v.YScale))
		dw.num(43, 1)
		dw.num(50, v.Rotation)
	}
}

func layerOrDefault(layer string) string {
	if layer == "" {
		return geom.LayerDefault
	}
	return layer
}

func scaleOrOne(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}
