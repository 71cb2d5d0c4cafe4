package layout

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/logging"
)

const (
	extensionThreshold = 9.0
	rowSpacing         = 20.0
	designMargin       = 40.0
	assemblyRotation   = 180.0
)

// tierBase 是三个层级片段在未加长时的位置。
var tierBase = [3]geom.Point{{X: 0}, {X: -20}, {X: -110}}

// Compose builds the assembly for cfg: tier fragments, the design motif and
// their mirrored copies, extension lines, a 180° turn of all of that, and
// finally the text centred on x = 0. Missing fragments and glyphs are logged
// and left out.
func Compose(cfg Config, opts ComposeOptions) (*Assembly, error) {
	if opts.Templates == nil {
		return nil, errors.New("layout: 缺少片段来源 Templates")
	}
	if opts.Glyphs == nil {
		return nil, errors.New("layout: 缺少字形来源 Glyphs")
	}
	if cfg.Tiers < 0 {
		return nil, fmt.Errorf("layout: 层数不能为负数: %d", cfg.Tiers)
	}

	est := Estimate(cfg.Text, opts.Glyphs, cfg.UserWidth, cfg.Spacing, cfg.Whitespace)
	a := newAssembly(cfg, est)

	offsets := tierOffsets(est.Extension)
	if est.Extension > extensionThreshold {
		a.Lines = extensionLines(offsets, cfg.Tiers, est.Extension)
	}
	for i, off := range offsets {
		a.place(opts.Templates, fmt.Sprintf("%d_%d", cfg.Tiers, i+1), KindTier, off)
	}
	if cfg.Design != "" {
		a.place(opts.Templates, cfg.Design, KindDesign, geom.Pt(offsets[2].X-designMargin, 0))
	}

	a.Rotate(assemblyRotation)
	a.placeText(opts.Glyphs)
	return a, nil
}

// tierOffsets 在加长超过阈值时把第 2、3 段向左移动。
func tierOffsets(ext float64) [3]geom.Point {
	off := tierBase
	if ext > extensionThreshold {
		off[1].X -= ext / 4
		off[2].X -= ext / 2
	}
	return off
}

// extensionLines 为第 2、3 段生成加长线：每段 2×tiers 行，行距 20，左右镜像成对。
func extensionLines(offsets [3]geom.Point, tiers int, ext float64) []geom.Line {
	if tiers < 1 {
		return nil
	}
	var lines []geom.Line
	for _, off := range offsets[1:] {
		x0, x1 := off.X, off.X+ext/4
		for row := 0; row < tiers*2; row++ {
			y := float64(row) * rowSpacing
			lines = append(lines,
				geom.Line{A: geom.Pt(x0, y), B: geom.Pt(x1, y), Layer: geom.LayerExtension},
				geom.Line{A: geom.Pt(-x0, y), B: geom.Pt(-x1, y), Layer: geom.LayerExtension},
			)
		}
	}
	return lines
}

func (a *Assembly) place(src FragmentSource, name string, kind InstanceKind, at geom.Point) {
	f, err := src.Load(name)
	if err != nil {
		logging.Logger().Warn("片段加载失败，跳过", "name", name, "kind", string(kind), "err", err)
		return
	}
	f = a.Register(f)
	in := Instance{Block: f.Name, Kind: kind, At: at, XScale: 1, YScale: 1}
	a.Instances = append(a.Instances, in, in.Mirrored())
}

// placeText 在旋转之后排字，因此字母保持正向。
func (a *Assembly) placeText(glyphs GlyphSource) {
	cfg := a.Config
	x := -a.Estimate.Text / 2
	for _, r := range upper(cfg.Text) {
		if unicode.IsSpace(r) {
			x += cfg.Whitespace
			continue
		}
		if !isLetter(r) {
			continue
		}
		// 缺失的字母不产生几何，但与估算一致地占用宽度和间距。
		at := x
		x += letterWidth(glyphs, r) + cfg.Spacing
		f, err := glyphs.Fragment(r)
		if err != nil {
			logging.Logger().Warn("字形加载失败，跳过", "letter", string(r), "err", err)
			continue
		}
		f = a.Register(f)
		a.Instances = append(a.Instances, Instance{Block: f.Name, Kind: KindGlyph, At: geom.Pt(at, 0), XScale: 1, YScale: 1})
	}
}
