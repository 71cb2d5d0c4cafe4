package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unit is the unit a length was written in.
type Unit int

const (
	UnitMM Unit = iota // 默认单位
	UnitCM
	UnitIN
	UnitPT
)

// PtToMm converts typographic points to millimetres.
const PtToMm = 25.4 / 72

func (u Unit) String() string {
	switch u {
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return "mm"
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// MM returns a length in millimetres.
func MM(v float64) Length { return Length{Value: v, Unit: UnitMM} }

// ToMM converts the length to millimetres.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses values such as "2mm", "0.5 cm", "12pt" or a bare
// number, which is taken as millimetres.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitMM
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// UnmarshalYAML accepts a bare number (millimetres) or a string with unit.
func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行: 长度必须是标量", node.Line)
	}
	parsed, err := ParseLength(node.Value)
	if err != nil {
		return fmt.Errorf("第 %d 行: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// MarshalYAML writes the length in the unit it was given in.
func (l Length) MarshalYAML() (any, error) { return l.String(), nil }
