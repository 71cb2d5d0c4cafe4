package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50.0, cfg.LetterHeight)
	assert.Equal(t, 5.0, cfg.Spacing)
	assert.Equal(t, 40.0, cfg.Whitespace)
	assert.Equal(t, 2.0, cfg.Export.Margin.ToMM())
	assert.Equal(t, 96.0, cfg.Export.DPI)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "medalholder.yaml")
	content := `
font: fonts/Custom.ttf
spacing: 6
templatesDir: /srv/vorlagen
export:
  margin: 0.5cm
  pdf: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fonts/Custom.ttf", cfg.Font)
	assert.Equal(t, 6.0, cfg.Spacing)
	assert.Equal(t, "/srv/vorlagen", cfg.TemplatesDir)
	assert.InDelta(t, 5, cfg.Export.Margin.ToMM(), 1e-12)
	assert.True(t, cfg.Export.PDF)
	assert.Equal(t, dir, cfg.BaseDir)
	// 未出现的键保持默认值
	assert.Equal(t, 40.0, cfg.Whitespace)
	assert.Equal(t, DefaultNaming, cfg.Naming)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "colour: red\n",
		"negative space": "spacing: -1\n",
		"zero height":    "letterHeight: 0\n",
		"bad margin":     "export:\n  margin: wide\n",
		"margin list":    "export:\n  margin: [1, 2]\n",
		"zero dpi":       "export:\n  dpi: 0\n",
		"empty naming":   "naming: \"\"\n",
	}
	for name, input := range cases {
		_, err := Parse([]byte(input))
		assert.Error(t, err, name)
	}
}

func TestParseLength(t *testing.T) {
	cases := map[string]float64{
		"2mm":    2,
		"2":      2,
		" 1 cm ": 10,
		"1in":    25.4,
		"72pt":   25.4,
	}
	for input, want := range cases {
		l, err := ParseLength(input)
		require.NoError(t, err, input)
		assert.InDelta(t, want, l.ToMM(), 1e-9, input)
	}
	_, err := ParseLength("")
	assert.Error(t, err)
	_, err = ParseLength("mm")
	assert.Error(t, err)
}

func TestLengthYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Margin Length `yaml:"margin"`
	}{Length{Value: 1.5, Unit: UnitCM}})
	require.NoError(t, err)
	assert.Equal(t, "margin: 1.5cm\n", string(out))
}
