package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/layout"
	"github.com/ByLCY/medalholder/renderer"
)

// Format 是输出文件格式。
type Format int

const (
	PNG Format = iota
	SVG
	PDF
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case SVG:
		return "svg"
	case PDF:
		return "pdf"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// 默认输出参数：96 dpi，四周留白 2 mm，黑色细线。
const (
	DefaultDPI         = 96.0
	DefaultMargin      = 2.0
	DefaultStrokeWidth = 0.25
)

// minSide 保证空组装也能得到非零尺寸的画布（mm）。
const minSide = 1.0

var transparent = color.RGBA{0, 0, 0, 0}

// Renderer draws assemblies via github.com/tdewolff/canvas. All lengths are
// in millimetres.
type Renderer struct {
	Format      Format
	DPI         float64     // 仅用于 PNG
	Margin      float64     // 四周留白
	Background  color.Color // nil 表示透明
	Stroke      color.Color // nil 表示黑色
	StrokeWidth float64
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer with the default settings for format: PNG
// on a transparent background, SVG and PDF on white.
func NewRenderer(format Format) *Renderer {
	r := &Renderer{
		Format:      format,
		DPI:         DefaultDPI,
		Margin:      DefaultMargin,
		Stroke:      canvas.Black,
		StrokeWidth: DefaultStrokeWidth,
	}
	if format != PNG {
		r.Background = canvas.White
	}
	return r
}

// Render draws every polyline and line of a in monochrome and encodes the
// drawing in r.Format.
func (r *Renderer) Render(a *layout.Assembly) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	flat := a.Flatten()
	bounds := flat.Bounds()
	if bounds.IsEmpty() {
		bounds = geom.Rect{}
	}
	width := math.Max(bounds.Width()+2*r.Margin, minSide)
	height := math.Max(bounds.Height()+2*r.Margin, minSide)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	if r.Background != nil {
		ctx.SetFillColor(r.Background)
		ctx.SetStrokeColor(transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	}
	r.draw(ctx, flat, r.Margin-bounds.MinX, r.Margin-bounds.MinY)

	var buf bytes.Buffer
	switch r.Format {
	case PNG:
		dpi := r.DPI
		if dpi <= 0 {
			dpi = DefaultDPI
		}
		img := rasterizer.Draw(c, canvas.DPI(dpi), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	case SVG:
		w := svg.New(&buf, width, height, nil)
		c.RenderTo(w)
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case PDF:
		w := pdf.New(&buf, width, height, nil)
		w.SetInfo(a.Config.Text, a.Config.Design, "", "", "medalholder")
		c.RenderTo(w)
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式: %s", r.Format)
	}
	return buf.Bytes(), nil
}

// draw 以 (dx, dy) 平移世界坐标，使包围盒左下角落在留白处。
func (r *Renderer) draw(ctx *canvas.Context, flat layout.Flat, dx, dy float64) {
	stroke := r.Stroke
	if stroke == nil {
		stroke = canvas.Black
	}
	sw := r.StrokeWidth
	if sw <= 0 {
		sw = DefaultStrokeWidth
	}
	ctx.SetFillColor(transparent)
	ctx.SetStrokeColor(stroke)
	ctx.SetStrokeWidth(sw)

	for _, pl := range flat.Polylines {
		if len(pl.Points) < 2 {
			continue
		}
		p := &canvas.Path{}
		p.MoveTo(pl.Points[0].X, pl.Points[0].Y)
		for _, pt := range pl.Points[1:] {
			p.LineTo(pt.X, pt.Y)
		}
		if pl.Closed {
			p.Close()
		}
		ctx.DrawPath(dx, dy, p)
	}
	for _, ln := range flat.Lines {
		p := &canvas.Path{}
		p.MoveTo(ln.A.X, ln.A.Y)
		p.LineTo(ln.B.X, ln.B.Y)
		ctx.DrawPath(dx, dy, p)
	}
}
