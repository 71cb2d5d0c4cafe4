package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体，可写为 "builtin:goregular" 或 "built-in:goregular"。
var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"gomono":    gomono.TTF,
}

// Load 返回字体数据。src 的解析顺序：
//  1. builtin:<name> 内置 Go 字体；
//  2. 文件路径（相对路径基于 baseDir）；
//  3. 系统字体文件名，例如 "DejaVuSans.ttf"，通过 go-findfont 查找。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	if name, ok := cutBuiltin(src); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 builtin:%s", name)
		}
		return data, nil
	}

	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if strings.ContainsRune(src, os.PathSeparator) {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}

	found, ferr := findfont.Find(src)
	if ferr != nil {
		return nil, fmt.Errorf("字体 %s 既不是文件也不是系统字体: %w", src, ferr)
	}
	data, err = os.ReadFile(found)
	if err != nil {
		return nil, fmt.Errorf("读取系统字体 %s 失败: %w", found, err)
	}
	return data, nil
}

func cutBuiltin(src string) (string, bool) {
	for _, prefix := range []string{"builtin:", "built-in:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			return strings.ToLower(name), true
		}
	}
	return "", false
}
