// Package export writes the artifacts of one composed holder: the DXF
// drawing plus PNG, SVG and optional PDF renderings.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/medalholder/dxf"
	"github.com/ByLCY/medalholder/geom"
	"github.com/ByLCY/medalholder/layout"
	"github.com/ByLCY/medalholder/logging"
	"github.com/ByLCY/medalholder/renderer"
)

// ErrWriteFailed matches every *WriteError.
var ErrWriteFailed = errors.New("export: write failed")

// WriteError reports which artifact could not be produced.
type WriteError struct {
	Format string
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("生成 %s 失败: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("写入 %s 文件 %s 失败: %v", e.Format, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWriteFailed, e.Err} }

// Artifacts lists the files written for one request. Empty paths were not
// requested.
type Artifacts struct {
	ID        string `json:"id"`
	DXF       string `json:"dxf"`
	PNG       string `json:"png,omitempty"`
	SVG       string `json:"svg,omitempty"`
	PDF       string `json:"pdf,omitempty"`
	DebugJSON string `json:"debugJSON,omitempty"`
}

// Exporter writes artifacts below Dir, one sub-directory per format:
// DXF/<id>.dxf, PNG/<id>.png, SVG/<id>.svg, PDF/<id>.pdf. A nil renderer
// skips its format. Exporter is safe for concurrent use when its renderers
// are.
type Exporter struct {
	Dir       string
	PNG       renderer.Renderer
	SVG       renderer.Renderer
	PDF       renderer.Renderer
	DebugJSON bool // 额外输出 DEBUG/<id>.json
}

type artifact struct {
	format string
	path   string
	dest   *string
	data   []byte
	tmp    string
}

// Export renders and writes every artifact of a. All artifacts are first
// written to temporary files next to their targets; only when every one of
// them succeeded are they renamed into place. A failure before that point
// removes the temporary files and leaves existing artifacts with the same
// id untouched. Errors are returned as *WriteError.
func (e *Exporter) Export(a *layout.Assembly, id string) (Artifacts, error) {
	out := Artifacts{ID: id}
	if a == nil {
		return out, &WriteError{Format: "dxf", Err: errors.New("组装结果为空")}
	}
	if id == "" || id != filepath.Base(id) {
		return out, &WriteError{Format: "dxf", Err: fmt.Errorf("非法的文件名 %q", id)}
	}

	var buf bytes.Buffer
	if err := dxf.Write(&buf, Document(a)); err != nil {
		return out, &WriteError{Format: "dxf", Err: err}
	}
	items := []*artifact{{format: "dxf", path: e.path("DXF", id, ".dxf"), dest: &out.DXF, data: buf.Bytes()}}

	for _, target := range []struct {
		format string
		r      renderer.Renderer
		dir    string
		dest   *string
	}{
		{"png", e.PNG, "PNG", &out.PNG},
		{"svg", e.SVG, "SVG", &out.SVG},
		{"pdf", e.PDF, "PDF", &out.PDF},
	} {
		if target.r == nil {
			continue
		}
		data, err := target.r.Render(a)
		if err != nil {
			return Artifacts{ID: id}, &WriteError{Format: target.format, Err: err}
		}
		items = append(items, &artifact{format: target.format, path: e.path(target.dir, id, "."+target.format), dest: target.dest, data: data})
	}
	if e.DebugJSON {
		data, err := layout.DebugJSON(a)
		if err != nil {
			return Artifacts{ID: id}, &WriteError{Format: "json", Err: err}
		}
		items = append(items, &artifact{format: "json", path: e.path("DEBUG", id, ".json"), dest: &out.DebugJSON, data: data})
	}

	for _, it := range items {
		tmp, err := stage(it.path, it.data)
		if err != nil {
			discard(items)
			return Artifacts{ID: id}, &WriteError{Format: it.format, Path: it.path, Err: err}
		}
		it.tmp = tmp
	}
	for _, it := range items {
		if err := os.Rename(it.tmp, it.path); err != nil {
			discard(items)
			return Artifacts{ID: id}, &WriteError{Format: it.format, Path: it.path, Err: err}
		}
		it.tmp = ""
		*it.dest = it.path
	}

	logging.Logger().Info("导出完成", "id", id, "dxf", out.DXF, "png", out.PNG, "svg", out.SVG)
	return out, nil
}

func (e *Exporter) path(sub, id, ext string) string {
	return filepath.Join(e.Dir, sub, id+ext)
}

// stage writes data to a temporary file in the directory of path and
// returns its name.
func stage(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// discard 删除尚未改名的临时文件。
func discard(items []*artifact) {
	for _, it := range items {
		if it.tmp == "" {
			continue
		}
		if err := os.Remove(it.tmp); err != nil {
			logging.Logger().Warn("清理临时文件失败", "path", it.tmp, "err", err)
		}
		it.tmp = ""
	}
}

// Document converts a into a DXF drawing: one block per registered fragment,
// one INSERT per instance and the extension lines as LINE entities.
func Document(a *layout.Assembly) *dxf.Drawing {
	d := &dxf.Drawing{}
	for _, f := range a.Blocks {
		b := &dxf.Block{Name: f.Name}
		for _, pl := range f.Polylines {
			b.Entities = append(b.Entities, &dxf.Polyline{Polyline: pl})
		}
		for _, l := range f.Lines {
			b.Entities = append(b.Entities, &dxf.Line{Line: l})
		}
		d.Blocks = append(d.Blocks, b)
	}
	for _, in := range a.Instances {
		d.Entities = append(d.Entities, &dxf.Insert{
			Block:    in.Block,
			At:       in.At,
			XScale:   in.XScale,
			YScale:   in.YScale,
			Rotation: in.Rotation,
			Layer:    geom.LayerDefault,
		})
	}
	for _, l := range a.Lines {
		d.Entities = append(d.Entities, &dxf.Line{Line: l})
	}
	return d
}
