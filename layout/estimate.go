package layout

import (
	"math"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 结构尺寸（mm）：三段固定跨度之和为基础宽度，文字超过 textBudget 时按 10 向上取整加长。
const (
	baseWidth  = 20.0 + 90.0 + 100.0
	textBudget = 180.0
	widthStep  = 10.0
)

// WidthEstimate 是宽度估算的结果。Extension 总是 10 的非负整数倍。
type WidthEstimate struct {
	Final     float64 `json:"finalWidth"`
	Text      float64 `json:"textWidth"`
	Extension float64 `json:"extension"`
	Min       float64 `json:"minWidth"`
}

// Estimate computes the holder width for text without building geometry.
// Whitespace counts as whitespace wide; letters A–Z (after uppercasing)
// count with their cached width, or 0 when widths has none, and take part
// in the spacing; all other characters count nothing.
func Estimate(text string, widths WidthSource, userWidth, spacing, whitespace float64) WidthEstimate {
	var total float64
	counted := 0
	for _, r := range upper(text) {
		switch {
		case unicode.IsSpace(r):
			total += whitespace
			counted++
		case isLetter(r):
			total += letterWidth(widths, r)
			counted++
		}
	}
	if counted > 0 {
		total += spacing * float64(counted-1)
	}

	ext := ceilStep(total - textBudget)
	est := WidthEstimate{
		Final:     baseWidth + ext,
		Text:      total,
		Extension: ext,
		Min:       baseWidth + ext,
	}
	if userWidth > est.Final {
		est.Final = userWidth
		est.Extension = ceilStep(userWidth - baseWidth)
	}
	return est
}

// ceilStep rounds positive excess up to the next multiple of widthStep.
func ceilStep(excess float64) float64 {
	if excess <= 0 {
		return 0
	}
	return math.Ceil(excess/widthStep) * widthStep
}

func isLetter(r rune) bool { return r >= 'A' && r <= 'Z' }

func letterWidth(widths WidthSource, r rune) float64 {
	if widths == nil {
		return 0
	}
	w, _ := widths.Width(r)
	return w
}

// upper 使用 x/text 的大小写映射（例如 ß → SS），估算与排字保持一致。
func upper(text string) string {
	return cases.Upper(language.Und).String(text)
}
