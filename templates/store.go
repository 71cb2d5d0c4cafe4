// Package templates loads reusable vector fragments (tier pieces, design
// motifs, letters) from DXF files.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/medalholder/dxf"
	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/logging"
)

var (
	// ErrNotFound means no fragment file exists for the name.
	ErrNotFound = errors.New("templates: fragment not found")
	// ErrMalformed means the fragment file exists but cannot be used.
	ErrMalformed = errors.New("templates: fragment malformed")
)

// Fragment is a named drawing that is inserted by reference. It is shared
// read-only once loaded.
type Fragment struct {
	Name      string          `json:"name"`
	Polylines []geom.Polyline `json:"polylines"`
	Lines     []geom.Line     `json:"lines,omitempty"`
}

// Bounds returns the extents of the fragment in its own coordinates.
func (f *Fragment) Bounds() geom.Rect {
	r := geom.EmptyRect()
	for _, pl := range f.Polylines {
		r = r.Union(pl.Bounds())
	}
	for _, l := range f.Lines {
		r = r.Union(l.Bounds())
	}
	return r
}

// Empty reports whether the fragment has no geometry.
func (f *Fragment) Empty() bool { return len(f.Polylines) == 0 && len(f.Lines) == 0 }

// Store loads fragments from <Dir>/<name>.dxf. Each name is read from disk at
// most once; concurrent first loads of the same name share one read. A Store
// is safe for concurrent use.
type Store struct {
	dir string

	mu        sync.RWMutex
	fragments map[string]*Fragment
	group     singleflight.Group
}

// NewStore creates a store rooted at dir. An empty dir disables disk access;
// only fragments registered with Put are available.
func NewStore(dir string) *Store {
	return &Store{dir: dir, fragments: map[string]*Fragment{}}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// Load returns the fragment called name. Repeated calls return the same
// *Fragment. Errors wrap ErrNotFound or ErrMalformed and are not cached, so a
// fragment that appears later on disk is picked up.
func (s *Store) Load(name string) (*Fragment, error) {
	if f, ok := s.cached(name); ok {
		return f, nil
	}
	v, err, _ := s.group.Do(name, func() (any, error) {
		if f, ok := s.cached(name); ok {
			return f, nil
		}
		f, err := s.read(name)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.fragments[name] = f
		s.mu.Unlock()
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Fragment), nil
}

// Put registers an in-memory fragment under f.Name unless that name is
// already present, and returns the registered fragment.
func (s *Store) Put(f *Fragment) *Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.fragments[f.Name]; ok {
		return existing
	}
	s.fragments[f.Name] = f
	return f
}

func (s *Store) cached(name string) (*Fragment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fragments[name]
	return f, ok
}

func (s *Store) read(name string) (*Fragment, error) {
	if s.dir == "" || name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	path := filepath.Join(s.dir, name+".dxf")
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取模板 %s 失败: %w", path, err)
	}
	defer file.Close()

	d, err := dxf.Read(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	for typ, n := range d.Skipped {
		logging.Logger().Debug("跳过不支持的 DXF 实体", "fragment", name, "type", typ, "count", n)
	}
	f := FromDrawing(name, d)
	if f.Empty() {
		return nil, fmt.Errorf("%w: %s 不包含可用的线条", ErrMalformed, path)
	}
	logging.Logger().Debug("已加载模板", "fragment", name, "polylines", len(f.Polylines), "lines", len(f.Lines))
	return f, nil
}

// FromDrawing flattens a drawing into a fragment: model-space polylines and
// lines are taken as they are, block references are expanded with their
// transforms.
func FromDrawing(name string, d *dxf.Drawing) *Fragment {
	f := &Fragment{Name: name}
	f.collect(d, d.Entities, geom.Identity, 0)
	return f
}

const maxDepth = 8

func (f *Fragment) collect(d *dxf.Drawing, entities []dxf.Entity, m geom.Matrix, depth int) {
	for _, e := range entities {
		switch v := e.(type) {
		case *dxf.Polyline:
			f.Polylines = append(f.Polylines, v.Polyline.Transform(m))
		case *dxf.Line:
			f.Lines = append(f.Lines, v.Line.Transform(m))
		case *dxf.Insert:
			b, ok := d.Block(v.Block)
			if !ok || depth >= maxDepth {
				logging.Logger().Warn("忽略无法解析的块引用", "fragment", f.Name, "block", v.Block)
				continue
			}
			f.collect(d, b.Entities, m.Mul(v.Transform()), depth+1)
		}
	}
}
