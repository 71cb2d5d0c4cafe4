// Package config holds the service configuration: font, cache directories,
// spacing constants, artifact naming and raster settings. Values are read
// from a YAML file over Default().
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/medalholder/layout"
	"github.com/ByLCY/medalholder/outline"
)

// DefaultNaming is the artifact name pattern used when naming by configuration.
const DefaultNaming = "${text}_${design}_${tiers}"

// Config 对应 YAML 配置文件。
type Config struct {
	Font         string  `yaml:"font"`         // 文件路径、builtin:goregular 或系统字体名
	LetterHeight float64 `yaml:"letterHeight"` // 字母高度（mm）
	Tolerance    float64 `yaml:"tolerance"`    // 曲线展平容差（mm）

	LettersDir   string `yaml:"lettersDir"`
	TemplatesDir string `yaml:"templatesDir"`
	ResultsDir   string `yaml:"resultsDir"`

	Spacing    float64 `yaml:"spacing"`
	Whitespace float64 `yaml:"whitespace"`

	Naming              string `yaml:"naming"`
	NameByConfiguration bool   `yaml:"nameByConfiguration"`

	Export Export `yaml:"export"`

	// BaseDir 是配置文件所在目录，用于解析相对的字体路径。
	BaseDir string `yaml:"-"`
}

// Export 控制渲染输出。
type Export struct {
	DPI       float64 `yaml:"dpi"`
	Margin    Length  `yaml:"margin"`
	PDF       bool    `yaml:"pdf"`
	DebugJSON bool    `yaml:"debugJSON"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Font:                "builtin:goregular",
		LetterHeight:        outline.DefaultHeight,
		Tolerance:           outline.DefaultTolerance,
		LettersDir:          "Buchstaben",
		TemplatesDir:        "dxf_vorlagen",
		ResultsDir:          "Warenkorb",
		Spacing:             layout.DefaultSpacing,
		Whitespace:          layout.DefaultWhitespace,
		Naming:              DefaultNaming,
		NameByConfiguration: true,
		Export: Export{
			DPI:    96,
			Margin: MM(2),
		},
	}
}

// Load reads the YAML file at path over Default(). Unknown keys are errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置失败: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML data over Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Font == "":
		return errors.New("config: font 不能为空")
	case c.LetterHeight <= 0:
		return fmt.Errorf("config: letterHeight 必须为正数: %g", c.LetterHeight)
	case c.Tolerance <= 0:
		return fmt.Errorf("config: tolerance 必须为正数: %g", c.Tolerance)
	case c.Spacing < 0:
		return fmt.Errorf("config: spacing 不能为负数: %g", c.Spacing)
	case c.Whitespace < 0:
		return fmt.Errorf("config: whitespace 不能为负数: %g", c.Whitespace)
	case c.LettersDir == "" || c.TemplatesDir == "" || c.ResultsDir == "":
		return errors.New("config: 目录配置不能为空")
	case c.Export.DPI <= 0:
		return fmt.Errorf("config: export.dpi 必须为正数: %g", c.Export.DPI)
	case c.Export.Margin.ToMM() < 0:
		return fmt.Errorf("config: export.margin 不能为负数: %s", c.Export.Margin)
	case c.NameByConfiguration && c.Naming == "":
		return errors.New("config: naming 不能为空")
	}
	return nil
}
