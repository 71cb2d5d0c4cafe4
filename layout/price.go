package layout

import (
	"math"
	"unicode/utf8"
)

// Quote 是报价接口返回的尺寸与价格。
type Quote struct {
	Width    float64 `json:"width"`
	MinWidth float64 `json:"minWidth"`
	Price    float64 `json:"price"`
}

// Price returns the price in euros rounded to cents:
// 20 + 2.5 per tier + 0.3 per character + 0.01 per millimetre over 400.
func Price(tiers int, text string, finalWidth float64) float64 {
	p := 20 + float64(tiers)*2.5 + float64(utf8.RuneCountInString(text))*0.3 + (finalWidth-400)*0.01
	return math.Round(p*100) / 100
}

// NewQuote builds the quote for cfg from its width estimate.
func NewQuote(cfg Config, est WidthEstimate) Quote {
	return Quote{
		Width:    est.Final,
		MinWidth: est.Min,
		Price:    Price(cfg.Tiers, cfg.Text, est.Final),
	}
}
