// Package binding fills artifact name patterns such as
// "${text}_${design}_${tiers}" from request values.
package binding

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${name} 或 ${a.b} 替换为 data 中的值。
// 路径不存在时保留原占位符。
func Interpolate(text string, data map[string]any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

func resolvePath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Sanitize makes name safe to use as a single file name: path separators,
// control characters and anything outside letters, digits, '-', '_' and '.'
// become '_'. Leading dots are dropped. An empty result becomes "unnamed".
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "unnamed"
	}
	return out
}

// ArtifactName interpolates pattern and sanitizes the result. Placeholders
// left unresolved are sanitized like any other text.
func ArtifactName(pattern string, data map[string]any) string {
	return Sanitize(Interpolate(pattern, data))
}
