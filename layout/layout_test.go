package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/templates"
)

// widthTable 是测试用的宽度来源。
type widthTable map[rune]float64

func (w widthTable) Width(r rune) (float64, bool) {
	v, ok := w[r]
	return v, ok
}

// stubGlyphs 为每个有宽度的字母提供一个 width×50 的矩形。
type stubGlyphs struct {
	widthTable
}

func (s stubGlyphs) Fragment(r rune) (*templates.Fragment, error) {
	w, ok := s.widthTable[r]
	if !ok {
		return nil, fmt.Errorf("no glyph %q", r)
	}
	return rectFragment(string(r), 0, 0, w, 50), nil
}

// mapSource 按名称返回预置片段，并记录加载次数。
type mapSource struct {
	fragments map[string]*templates.Fragment
	loads     map[string]int
}

func (m *mapSource) Load(name string) (*templates.Fragment, error) {
	if m.loads == nil {
		m.loads = map[string]int{}
	}
	m.loads[name]++
	f, ok := m.fragments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", templates.ErrNotFound, name)
	}
	return f, nil
}

func rectFragment(name string, x0, y0, x1, y1 float64) *templates.Fragment {
	return &templates.Fragment{
		Name: name,
		Polylines: []geom.Polyline{{
			Points: []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}},
			Closed: true,
			Layer:  geom.LayerDefault,
		}},
	}
}

func tierSource(tiers int, design string) *mapSource {
	src := &mapSource{fragments: map[string]*templates.Fragment{}}
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("%d_%d", tiers, i)
		src.fragments[name] = rectFragment(name, 0, 0, 10, float64(tiers)*40)
	}
	if design != "" {
		src.fragments[design] = rectFragment(design, -30, 0, 0, 30)
	}
	return src
}

func TestEstimateShortText(t *testing.T) {
	est := Estimate("AB", widthTable{'A': 30, 'B': 28}, 0, 5, 40)
	assert.Equal(t, 63.0, est.Text)
	assert.Zero(t, est.Extension)
	assert.Equal(t, 210.0, est.Final)
	assert.Equal(t, 210.0, est.Min)
	assert.InDelta(t, 23.70, Price(2, "AB", est.Final), 1e-9)
}

func TestEstimateLongText(t *testing.T) {
	// 10 × 25，间距为 0：文字宽度 250
	widths := widthTable{'M': 25}
	est := Estimate("MMMMMMMMMM", widths, 0, 0, 40)
	require.Equal(t, 250.0, est.Text)
	assert.Equal(t, 70.0, est.Extension)
	assert.Equal(t, 280.0, est.Final)
	assert.Equal(t, 280.0, est.Min)
}

func TestEstimateUserWidth(t *testing.T) {
	widths := widthTable{'M': 25}
	est := Estimate("MMMMMMMMMM", widths, 500, 0, 40)
	assert.Equal(t, 500.0, est.Final)
	assert.Equal(t, 290.0, est.Extension)
	assert.Equal(t, 280.0, est.Min, "最小宽度只取决于文字宽度")

	small := Estimate("MMMMMMMMMM", widths, 250, 0, 40)
	assert.Equal(t, 280.0, small.Final, "小于基础宽度的用户宽度被忽略")
	assert.Equal(t, 70.0, small.Extension)
}

func TestEstimateEmptyText(t *testing.T) {
	est := Estimate("", widthTable{}, 0, 5, 40)
	assert.Equal(t, WidthEstimate{Final: 210, Text: 0, Extension: 0, Min: 210}, est)
	assert.Equal(t, est, Estimate("", nil, 0, 5, 40))
}

func TestEstimateCountsWhitespaceAndSkipsOthers(t *testing.T) {
	widths := widthTable{'A': 30, 'B': 28}
	// 小写先转大写；数字不计宽度也不计间距
	est := Estimate("a b1", widths, 0, 5, 40)
	assert.Equal(t, 30.0+40+28+2*5, est.Text)
}

func TestEstimateMissingLetterHasZeroWidthButSpacing(t *testing.T) {
	widths := widthTable{'A': 45}
	assert.Equal(t, 45.0+5, Estimate("QA", widths, 0, 5, 40).Text)
	assert.Equal(t, 5.0, Estimate("QQ", nil, 0, 5, 40).Text)
}

func TestEstimateExtensionIsMultipleOfTen(t *testing.T) {
	widths := widthTable{'A': 31}
	for n := 1; n <= 20; n++ {
		text := ""
		for i := 0; i < n; i++ {
			text += "A"
		}
		for _, user := range []float64{0, 333.3, 1000} {
			est := Estimate(text, widths, user, 5, 40)
			assert.GreaterOrEqual(t, est.Extension, 0.0)
			assert.Zero(t, math.Mod(est.Extension, 10), "n=%d user=%g", n, user)
			assert.GreaterOrEqual(t, est.Final, est.Min)
		}
	}
}

func TestPrice(t *testing.T) {
	assert.InDelta(t, 23.70, Price(2, "AB", 210), 1e-9)
	assert.InDelta(t, 25.0, Price(0, "", 900), 1e-9)
	// 按字符计数，而不是字节
	assert.Equal(t, Price(1, "ÄB", 300), Price(1, "AB", 300))

	q := NewQuote(Config{Text: "AB", Tiers: 2}, WidthEstimate{Final: 210, Min: 210})
	assert.Equal(t, Quote{Width: 210, MinWidth: 210, Price: 23.7}, q)
}

func TestInstanceMirroredReflectsAboutYAxis(t *testing.T) {
	in := Instance{Block: "x", At: geom.Pt(-20, 5), XScale: 1, YScale: 1}
	m := in.Mirrored()
	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(3, 4), geom.Pt(-7, 11)} {
		a := geom.Apply(in.Transform(), p)
		b := geom.Apply(m.Transform(), p)
		assert.InDelta(t, -a.X, b.X, 1e-9)
		assert.InDelta(t, a.Y, b.Y, 1e-9)
	}
	assert.Equal(t, in, m.Mirrored())
}

func TestInstanceRotated(t *testing.T) {
	in := Instance{Block: "x", At: geom.Pt(-20, 5), XScale: -1, YScale: 1}
	r := in.Rotated(180)
	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(3, 4)} {
		a := geom.Apply(in.Transform(), p)
		b := geom.Apply(r.Transform(), p)
		assert.InDelta(t, -a.X, b.X, 1e-9)
		assert.InDelta(t, -a.Y, b.Y, 1e-9)
	}
	back := r.Rotated(180)
	assert.Equal(t, in.At, back.At)
	assert.Zero(t, back.Rotation)
}

func TestComposeShortText(t *testing.T) {
	src := tierSource(2, "laurel")
	glyphs := stubGlyphs{widthTable{'A': 30, 'B': 28}}
	a, err := Compose(Config{Text: "AB", Design: "laurel", Tiers: 2, Spacing: 5, Whitespace: 40},
		ComposeOptions{Templates: src, Glyphs: glyphs})
	require.NoError(t, err)

	assert.Equal(t, 210.0, a.Estimate.Final)
	assert.Empty(t, a.Lines, "未加长时没有加长线")
	// 3 个层级 + 1 个图案，各放置两次；再加 2 个字母
	require.Len(t, a.Instances, 10)
	assert.Len(t, a.Blocks, 6)

	// 旋转 180° 后：原先位于 (-110, 0) 的第三段到了 (110, 0)
	third := a.Instances[4]
	assert.Equal(t, "2_3", third.Block)
	assert.InDelta(t, 110, third.At.X, 1e-9)
	assert.InDelta(t, 0, third.At.Y, 1e-9)
	assert.Equal(t, 180.0, third.Rotation)

	design := a.Instances[6]
	assert.Equal(t, KindDesign, design.Kind)
	assert.InDelta(t, 150, design.At.X, 1e-9)

	// 字母在旋转之后放置，保持正向，从 -63/2 开始
	letterA, letterB := a.Instances[8], a.Instances[9]
	assert.Equal(t, KindGlyph, letterA.Kind)
	assert.Equal(t, geom.Pt(-31.5, 0), letterA.At)
	assert.Zero(t, letterA.Rotation)
	assert.Equal(t, geom.Pt(-31.5+35, 0), letterB.At)
	assert.Equal(t, "B", letterB.Block)
}

func TestComposeMirrorProperty(t *testing.T) {
	src := tierSource(3, "star")
	a, err := Compose(Config{Design: "star", Tiers: 3, Spacing: 5, Whitespace: 40},
		ComposeOptions{Templates: src, Glyphs: stubGlyphs{widthTable{}}})
	require.NoError(t, err)
	require.Len(t, a.Instances, 8)
	for i := 0; i < len(a.Instances); i += 2 {
		orig, mirror := a.Instances[i], a.Instances[i+1]
		b, ok := a.Block(orig.Block)
		require.True(t, ok)
		for _, p := range b.Polylines[0].Points {
			po := geom.Apply(orig.Transform(), p)
			pm := geom.Apply(mirror.Transform(), p)
			assert.InDelta(t, -po.X, pm.X, 1e-9)
			assert.InDelta(t, po.Y, pm.Y, 1e-9)
		}
	}
	// 镜像对称：整体包围盒关于 x = 0 对称
	bounds := a.Bounds()
	assert.InDelta(t, -bounds.MinX, bounds.MaxX, 1e-9)
}

func TestComposeExtension(t *testing.T) {
	src := tierSource(2, "star")
	widths := widthTable{'M': 25}
	a, err := Compose(Config{Text: "MMMMMMMMMM", Design: "star", Tiers: 2, Spacing: 0, Whitespace: 40},
		ComposeOptions{Templates: src, Glyphs: stubGlyphs{widths}})
	require.NoError(t, err)
	require.Equal(t, 70.0, a.Estimate.Extension)

	// 第 2、3 段分别左移 ext/4、ext/2，旋转后取反
	assert.InDelta(t, 20+17.5, a.Instances[2].At.X, 1e-9)
	assert.InDelta(t, 110+35, a.Instances[4].At.X, 1e-9)
	assert.InDelta(t, 110+35+40, a.Instances[6].At.X, 1e-9)

	// 两段 × 2×tiers 行 × 左右各一条
	require.Len(t, a.Lines, 2*4*2)
	ys := map[float64]bool{}
	for _, l := range a.Lines {
		assert.Equal(t, geom.LayerExtension, l.Layer)
		assert.Equal(t, l.A.Y, l.B.Y)
		assert.InDelta(t, 17.5, math.Abs(l.B.X-l.A.X), 1e-9)
		ys[l.A.Y] = true
	}
	assert.Equal(t, map[float64]bool{0: true, -20: true, -40: true, -60: true}, ys)
	// 第一行：第 2 段起点 -37.5 → 旋转后 37.5
	assert.InDelta(t, 37.5, a.Lines[0].A.X, 1e-9)
	assert.InDelta(t, 20, a.Lines[0].B.X, 1e-9)
}

func TestComposeNoLinesWithoutTiers(t *testing.T) {
	widths := widthTable{'M': 25}
	a, err := Compose(Config{Text: "MMMMMMMMMM", Tiers: 0, Whitespace: 40},
		ComposeOptions{Templates: tierSource(0, ""), Glyphs: stubGlyphs{widths}})
	require.NoError(t, err)
	assert.Equal(t, 70.0, a.Estimate.Extension)
	assert.Empty(t, a.Lines)
}

func TestComposeSkipsMissingFragmentsAndGlyphs(t *testing.T) {
	src := &mapSource{fragments: map[string]*templates.Fragment{}}
	widths := widthTable{'A': 30}
	a, err := Compose(Config{Text: "A?C A", Design: "missing", Tiers: 1, Spacing: 5, Whitespace: 40},
		ComposeOptions{Templates: src, Glyphs: stubGlyphs{widths}})
	require.NoError(t, err)
	assert.Equal(t, 1, src.loads["missing"])
	assert.Equal(t, 1, src.loads["1_1"])

	require.Len(t, a.Instances, 2)
	assert.Len(t, a.Blocks, 1, "重复的字母只注册一次")
	// 文字宽度 30 + 0 + 40 + 30 + 3×5；C 没有字形，宽度为 0 但仍占一个间距
	start := -(30.0 + 0 + 40 + 30 + 15) / 2
	assert.Equal(t, start, a.Estimate.Text/-2)
	assert.Equal(t, geom.Pt(start, 0), a.Instances[0].At)
	assert.Equal(t, geom.Pt(start+35+5+40, 0), a.Instances[1].At)
}

func TestComposeRejectsBadInput(t *testing.T) {
	_, err := Compose(Config{Tiers: -1}, ComposeOptions{Templates: tierSource(1, ""), Glyphs: stubGlyphs{}})
	assert.Error(t, err)
	_, err = Compose(Config{}, ComposeOptions{Glyphs: stubGlyphs{}})
	assert.Error(t, err)
	_, err = Compose(Config{}, ComposeOptions{Templates: tierSource(1, "")})
	assert.Error(t, err)
}

func TestAssemblyRotateTwiceRestores(t *testing.T) {
	a, err := Compose(Config{Text: "AB", Design: "star", Tiers: 2, Spacing: 5, Whitespace: 40},
		ComposeOptions{Templates: tierSource(2, "star"), Glyphs: stubGlyphs{widthTable{'A': 30, 'B': 28}}})
	require.NoError(t, err)
	before := a.Flatten()
	a.Rotate(180)
	a.Rotate(180)
	after := a.Flatten()
	require.Len(t, after.Polylines, len(before.Polylines))
	for i := range before.Polylines {
		for j, p := range before.Polylines[i].Points {
			q := after.Polylines[i].Points[j]
			assert.InDelta(t, p.X, q.X, 1e-9)
			assert.InDelta(t, p.Y, q.Y, 1e-9)
		}
	}
}

func TestDebugJSON(t *testing.T) {
	a, err := Compose(Config{Text: "A", Tiers: 1, Spacing: 5, Whitespace: 40},
		ComposeOptions{Templates: tierSource(1, ""), Glyphs: stubGlyphs{widthTable{'A': 30}}})
	require.NoError(t, err)
	data, err := DebugJSON(a)
	require.NoError(t, err)
	var decoded struct {
		Estimate  WidthEstimate `json:"estimate"`
		Instances []Instance    `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, a.Estimate, decoded.Estimate)
	assert.Len(t, decoded.Instances, len(a.Instances))
}
