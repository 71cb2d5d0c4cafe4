// Package pipeline wires configuration, glyph cache, template store and
// exporter into the two request operations: quote and generate.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ByLCY/medalholder/binding"
	"github.com/ByLCY/medalholder/config"
	"github.com/ByLCY/medalholder/export"
	"github.com/ByLCY/medalholder/fonts"
	"github.com/ByLCY/medalholder/glyphs"
	"github.com/ByLCY/medalholder/layout"
	"github.com/ByLCY/medalholder/logging"
	"github.com/ByLCY/medalholder/outline"
	canvasrenderer "github.com/ByLCY/medalholder/renderer/canvas"
	"github.com/ByLCY/medalholder/templates"
)

// ErrInvalidRequest is returned for requests with out-of-range values.
var ErrInvalidRequest = errors.New("pipeline: invalid request")

// fallbackName 在未按配置命名且请求没有指定 ID 时使用。
const fallbackName = "medaillenhalter"

// Request 是一次报价或生成请求。
type Request struct {
	Text      string `json:"text"`
	Design    string `json:"design"`
	Tiers     int    `json:"tiers"`
	UserWidth int    `json:"width"`        // 整数毫米，0 表示自动
	ID        string `json:"id,omitempty"` // 为空时按配置生成
}

// Options overrides the sources New would otherwise build from the
// configuration.
type Options struct {
	Templates layout.FragmentSource
	Glyphs    layout.GlyphSource
	Exporter  *export.Exporter
}

// Pipeline is safe for concurrent use. The template store and glyph cache
// are shared; every request builds its own assembly.
type Pipeline struct {
	cfg       config.Config
	templates layout.FragmentSource
	exporter  *export.Exporter

	mu     sync.Mutex
	glyphs layout.GlyphSource
}

// New validates cfg and builds a pipeline. The glyph cache is opened on
// first use so that a pipeline can be created before BuildGlyphs ran.
func New(cfg config.Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:       cfg,
		templates: opts.Templates,
		exporter:  opts.Exporter,
		glyphs:    opts.Glyphs,
	}
	if p.templates == nil {
		p.templates = templates.NewStore(cfg.TemplatesDir)
	}
	if p.exporter == nil {
		p.exporter = newExporter(cfg)
	}
	return p, nil
}

func newExporter(cfg config.Config) *export.Exporter {
	raster := func(format canvasrenderer.Format) *canvasrenderer.Renderer {
		r := canvasrenderer.NewRenderer(format)
		r.DPI = cfg.Export.DPI
		r.Margin = cfg.Export.Margin.ToMM()
		return r
	}
	e := &export.Exporter{
		Dir:       cfg.ResultsDir,
		PNG:       raster(canvasrenderer.PNG),
		SVG:       raster(canvasrenderer.SVG),
		DebugJSON: cfg.Export.DebugJSON,
	}
	if cfg.Export.PDF {
		e.PDF = raster(canvasrenderer.PDF)
	}
	return e
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config { return p.cfg }

// BuildGlyphs runs bulk glyph processing for A–Z with the configured font
// and writes the glyph cache. Later requests use the new glyphs.
func (p *Pipeline) BuildGlyphs() (glyphs.Widths, error) {
	data, err := fonts.Load(p.cfg.Font, p.cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	f, err := outline.LoadFont(data)
	if err != nil {
		return nil, err
	}
	logging.Logger().Info("开始处理字形", "font", f.Name(), "height", p.cfg.LetterHeight)
	set := glyphs.BuildSet(f, glyphs.Options{Height: p.cfg.LetterHeight, Tolerance: p.cfg.Tolerance})
	widths, err := glyphs.WriteCache(p.cfg.LettersDir, set)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.glyphs = set
	p.mu.Unlock()
	return widths, nil
}

func (p *Pipeline) glyphSource() (layout.GlyphSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.glyphs != nil {
		return p.glyphs, nil
	}
	cache, err := glyphs.OpenCache(p.cfg.LettersDir, nil)
	if err != nil {
		return nil, fmt.Errorf("打开字形缓存失败: %w", err)
	}
	p.glyphs = cache
	return cache, nil
}

func (p *Pipeline) layoutConfig(req Request) (layout.Config, error) {
	if req.Tiers < 0 {
		return layout.Config{}, fmt.Errorf("%w: 层数不能为负数: %d", ErrInvalidRequest, req.Tiers)
	}
	if req.UserWidth < 0 {
		return layout.Config{}, fmt.Errorf("%w: 宽度不能为负数: %d", ErrInvalidRequest, req.UserWidth)
	}
	return layout.Config{
		Text:       req.Text,
		Design:     req.Design,
		Tiers:      req.Tiers,
		UserWidth:  float64(req.UserWidth),
		Spacing:    p.cfg.Spacing,
		Whitespace: p.cfg.Whitespace,
	}, nil
}

// Quote estimates width and price without building geometry.
func (p *Pipeline) Quote(req Request) (layout.Quote, error) {
	lc, err := p.layoutConfig(req)
	if err != nil {
		return layout.Quote{}, err
	}
	src, err := p.glyphSource()
	if err != nil {
		return layout.Quote{}, err
	}
	est := layout.Estimate(lc.Text, src, lc.UserWidth, lc.Spacing, lc.Whitespace)
	return layout.NewQuote(lc, est), nil
}

// Generate composes the holder for req and writes its artifacts.
func (p *Pipeline) Generate(req Request) (layout.Quote, export.Artifacts, error) {
	lc, err := p.layoutConfig(req)
	if err != nil {
		return layout.Quote{}, export.Artifacts{}, err
	}
	src, err := p.glyphSource()
	if err != nil {
		return layout.Quote{}, export.Artifacts{}, err
	}
	a, err := layout.Compose(lc, layout.ComposeOptions{Templates: p.templates, Glyphs: src})
	if err != nil {
		return layout.Quote{}, export.Artifacts{}, err
	}
	quote := layout.NewQuote(lc, a.Estimate)
	arts, err := p.exporter.Export(a, p.artifactID(req, a.Estimate))
	return quote, arts, err
}

// artifactID 优先使用请求中的 ID，其次按命名模板生成。
func (p *Pipeline) artifactID(req Request, est layout.WidthEstimate) string {
	if req.ID != "" {
		return binding.Sanitize(req.ID)
	}
	if !p.cfg.NameByConfiguration {
		return fallbackName
	}
	return binding.ArtifactName(p.cfg.Naming, map[string]any{
		"text":   req.Text,
		"design": req.Design,
		"tiers":  req.Tiers,
		"width":  est.Final,
	})
}
