package glyphs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/ByLCY/medalholder/dsl"
)

// ErrMalformedWidths is returned when the width table cannot be parsed or
// contains anything but uppercase letters mapped to integers.
var ErrMalformedWidths = errors.New("glyphs: malformed width table")

// Widths maps uppercase letters to rounded widths in millimetres.
type Widths map[rune]int

// Width implements the width lookup used by layout.Estimate.
func (w Widths) Width(r rune) (float64, bool) {
	v, ok := w[r]
	return float64(v), ok
}

// RoundWidth rounds half to even, the rounding the width table has always
// used.
func RoundWidth(w float64) int {
	return int(math.RoundToEven(w))
}

// ParseWidths reads a table such as {'A': 30, 'B': 28}. Parsing is strict:
// anything that is not a quoted single letter A–Z mapped to an integer is
// rejected with ErrMalformedWidths.
func ParseWidths(r io.Reader) (Widths, error) {
	table, err := dsl.ParseWidthTable(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWidths, err)
	}
	w := make(Widths, len(table.Entries))
	for _, e := range table.Entries {
		key := []rune(string(e.Key))
		if len(key) != 1 || key[0] < 'A' || key[0] > 'Z' {
			return nil, fmt.Errorf("%w: %s: 非法的键 %q", ErrMalformedWidths, e.Pos, string(e.Key))
		}
		if _, dup := w[key[0]]; dup {
			return nil, fmt.Errorf("%w: %s: 重复的键 %q", ErrMalformedWidths, e.Pos, string(e.Key))
		}
		if e.Value < 0 {
			return nil, fmt.Errorf("%w: %s: 宽度 %d 为负数", ErrMalformedWidths, e.Pos, e.Value)
		}
		w[key[0]] = e.Value
	}
	return w, nil
}

// FormatWidths writes w sorted by letter in the table format ParseWidths reads.
func FormatWidths(out io.Writer, w Widths) error {
	keys := make([]rune, 0, len(w))
	for r := range w {
		keys = append(keys, r)
	}
	slices.Sort(keys)

	bw := bufio.NewWriter(out)
	bw.WriteByte('{')
	for i, r := range keys {
		if i > 0 {
			bw.WriteString(", ")
		}
		fmt.Fprintf(bw, "'%c': %d", r, w[r])
	}
	bw.WriteByte('}')
	return bw.Flush()
}
