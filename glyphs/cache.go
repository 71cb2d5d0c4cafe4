package glyphs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ByLCY/medalholder/dxf"
	"github.com/ByLCY/medalholder/logging"
	"github.com/ByLCY/medalholder/templates"
)

// WidthsFile is the name of the width table inside the cache directory.
const WidthsFile = "letter_widths.txt"

// ErrNoCache is returned by OpenCache when the directory has no width table.
var ErrNoCache = errors.New("glyphs: glyph cache not built")

// WriteCache writes <dir>/<L>.dxf for every glyph in set and the width table
// <dir>/letter_widths.txt, and returns the table it wrote. The table lists
// all of A–Z; a letter without a drawing is stored with width 0.
func WriteCache(dir string, set *Set) (Widths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建字形目录失败: %w", err)
	}
	for _, r := range Letters {
		g, ok := set.Glyph(r)
		if !ok {
			continue
		}
		if err := writeFile(filepath.Join(dir, string(r)+".dxf"), func(buf *bytes.Buffer) error {
			return dxf.Write(buf, glyphDrawing(g))
		}); err != nil {
			return nil, fmt.Errorf("写入字母 %q 失败: %w", r, err)
		}
	}
	widths := set.Widths()
	if err := writeFile(filepath.Join(dir, WidthsFile), func(buf *bytes.Buffer) error {
		return FormatWidths(buf, widths)
	}); err != nil {
		return nil, fmt.Errorf("写入宽度表失败: %w", err)
	}
	logging.Logger().Info("字形缓存已写入", "dir", dir, "letters", len(widths))
	return widths, nil
}

func glyphDrawing(g *Glyph) *dxf.Drawing {
	d := &dxf.Drawing{}
	d.Entities = append(d.Entities, &dxf.Polyline{Polyline: g.Outer})
	for _, in := range g.Inner {
		d.Entities = append(d.Entities, &dxf.Polyline{Polyline: in})
	}
	return d
}

func writeFile(path string, fill func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Cache serves glyphs from a directory written by WriteCache. Glyph
// fragments are loaded lazily through a templates.Store.
type Cache struct {
	widths Widths
	store  *templates.Store
}

// OpenCache reads the width table in dir. When store is nil a new store
// rooted at dir is used.
func OpenCache(dir string, store *templates.Store) (*Cache, error) {
	f, err := os.Open(filepath.Join(dir, WidthsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoCache, dir)
		}
		return nil, err
	}
	defer f.Close()
	widths, err := ParseWidths(f)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = templates.NewStore(dir)
	}
	return &Cache{widths: widths, store: store}, nil
}

// Widths returns the cached width table.
func (c *Cache) Widths() Widths { return c.widths }

// Width returns the cached width of a letter.
func (c *Cache) Width(r rune) (float64, bool) { return c.widths.Width(r) }

// Fragment loads the glyph drawing of a letter.
func (c *Cache) Fragment(r rune) (*templates.Fragment, error) {
	return c.store.Load(string(r))
}
