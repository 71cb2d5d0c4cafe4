package layout

import (
	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/templates"
)

// 该文件定义组装结果，供导出、渲染与调试 JSON 共用。

// Config 描述一次生成请求的版式参数。
type Config struct {
	Text       string  `json:"text"`
	Design     string  `json:"design"`
	Tiers      int     `json:"tiers"`
	UserWidth  float64 `json:"userWidth"`  // 0 表示不指定
	Spacing    float64 `json:"spacing"`    // 字母间距（mm）
	Whitespace float64 `json:"whitespace"` // 空白字符宽度（mm）
}

// InstanceKind 标记实例来源，便于调试与渲染区分。
type InstanceKind string

const (
	KindTier   InstanceKind = "tier"
	KindDesign InstanceKind = "design"
	KindGlyph  InstanceKind = "glyph"
)

// Instance 是对已注册片段的一次放置：先缩放，再绕原点旋转，最后平移到 At。
type Instance struct {
	Block    string       `json:"block"`
	Kind     InstanceKind `json:"kind"`
	At       geom.Point   `json:"at"`
	XScale   float64      `json:"xScale"`
	YScale   float64      `json:"yScale"`
	Rotation float64      `json:"rotation"` // 角度，逆时针
}

// Transform returns the placement matrix of the instance.
func (in Instance) Transform() geom.Matrix {
	return geom.Placement(in.At, in.XScale, in.YScale, in.Rotation)
}

// Mirrored returns the placed copy reflected about x = 0.
func (in Instance) Mirrored() Instance {
	out := in
	out.At.X = -in.At.X
	out.XScale = -in.XScale
	out.Rotation = normalizeAngle(-in.Rotation)
	return out
}

// Rotated returns the instance rotated by deg degrees about the origin.
func (in Instance) Rotated(deg float64) Instance {
	out := in
	out.At = geom.Apply(geom.RotateMatrix(deg), in.At)
	out.Rotation = normalizeAngle(in.Rotation + deg)
	return out
}

func normalizeAngle(deg float64) float64 {
	for deg >= 360 {
		deg -= 360
	}
	for deg < 0 {
		deg += 360
	}
	if deg == 0 {
		return 0 // 避免 -0
	}
	return deg
}

// Assembly 是一次请求的完整组装结果。Blocks 按注册顺序保存，每个名称只注册一次。
type Assembly struct {
	Config    Config                `json:"config"`
	Estimate  WidthEstimate         `json:"estimate"`
	Blocks    []*templates.Fragment `json:"blocks"`
	Instances []Instance            `json:"instances"`
	Lines     []geom.Line           `json:"lines,omitempty"`

	blockIndex map[string]int
}

func newAssembly(cfg Config, est WidthEstimate) *Assembly {
	return &Assembly{Config: cfg, Estimate: est, blockIndex: map[string]int{}}
}

// Register adds f to the block registry unless a block with the same name
// exists, and returns the registered block.
func (a *Assembly) Register(f *templates.Fragment) *templates.Fragment {
	if a.blockIndex == nil {
		a.blockIndex = map[string]int{}
	}
	if i, ok := a.blockIndex[f.Name]; ok {
		return a.Blocks[i]
	}
	a.blockIndex[f.Name] = len(a.Blocks)
	a.Blocks = append(a.Blocks, f)
	return f
}

// Block looks up a registered block by name.
func (a *Assembly) Block(name string) (*templates.Fragment, bool) {
	if i, ok := a.blockIndex[name]; ok {
		return a.Blocks[i], true
	}
	for _, b := range a.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Rotate rotates every instance and line placed so far about the origin.
func (a *Assembly) Rotate(deg float64) {
	m := geom.RotateMatrix(deg)
	for i := range a.Instances {
		a.Instances[i] = a.Instances[i].Rotated(deg)
	}
	for i := range a.Lines {
		a.Lines[i] = a.Lines[i].Transform(m)
	}
}

// Flat 是展开到世界坐标的几何，渲染器直接使用。
type Flat struct {
	Polylines []geom.Polyline
	Lines     []geom.Line
}

// Flatten resolves every instance against its block.
func (a *Assembly) Flatten() Flat {
	var out Flat
	for _, in := range a.Instances {
		b, ok := a.Block(in.Block)
		if !ok {
			continue
		}
		m := in.Transform()
		for _, pl := range b.Polylines {
			out.Polylines = append(out.Polylines, pl.Transform(m))
		}
		for _, l := range b.Lines {
			out.Lines = append(out.Lines, l.Transform(m))
		}
	}
	out.Lines = append(out.Lines, a.Lines...)
	return out
}

// Bounds returns the world-space extents of the assembly.
func (f Flat) Bounds() geom.Rect {
	r := geom.EmptyRect()
	for _, pl := range f.Polylines {
		r = r.Union(pl.Bounds())
	}
	for _, l := range f.Lines {
		r = r.Union(l.Bounds())
	}
	return r
}

// Bounds returns the world-space extents of the assembly.
func (a *Assembly) Bounds() geom.Rect { return a.Flatten().Bounds() }
