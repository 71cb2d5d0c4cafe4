package dxf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ByLCY/medalholder/geom"
)

type pair struct {
	code  int
	value string
	line  int
}

// record is one "0 <TYPE>" group and the pairs that follow it.
type record struct {
	typ   string
	pairs []pair
	line  int
}

// Read parses an ASCII DXF file. Only the BLOCKS and ENTITIES sections are
// interpreted; entity types other than LINE, LWPOLYLINE, POLYLINE and INSERT
// are counted in Drawing.Skipped.
func Read(r io.Reader) (*Drawing, error) {
	pairs, err := readPairs(r)
	if err != nil {
		return nil, err
	}
	records := groupRecords(pairs)

	d := &Drawing{Skipped: map[string]int{}}
	foundEntities := false
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec.typ != "SECTION" {
			continue
		}
		name, _ := rec.value(2)
		end := i + 1
		for end < len(records) && records[end].typ != "ENDSEC" {
			end++
		}
		if end == len(records) {
			return nil, fmt.Errorf("%w: 第 %d 行的 %s 段缺少 ENDSEC", ErrMalformed, rec.line, name)
		}
		body := records[i+1 : end]
		switch name {
		case "BLOCKS":
			blocks, err := d.parseBlocks(body)
			if err != nil {
				return nil, err
			}
			d.Blocks = blocks
		case "ENTITIES":
			foundEntities = true
			entities, err := d.parseEntities(body)
			if err != nil {
				return nil, err
			}
			d.Entities = entities
		}
		i = end
	}
	if !foundEntities {
		return nil, fmt.Errorf("%w: 缺少 ENTITIES 段", ErrMalformed)
	}
	return d, nil
}

func readPairs(r io.Reader) ([]pair, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var (
		pairs []pair
		line  int
	)
	for sc.Scan() {
		line++
		codeText := strings.TrimSpace(sc.Text())
		code, err := strconv.Atoi(codeText)
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行组码 %q 无效", ErrMalformed, line, codeText)
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: 第 %d 行组码 %d 缺少取值", ErrMalformed, line, code)
		}
		line++
		p := pair{code: code, value: strings.TrimSpace(sc.Text()), line: line}
		pairs = append(pairs, p)
		if p.code == 0 && p.value == "EOF" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("读取 DXF 失败: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: 文件为空", ErrMalformed)
	}
	return pairs, nil
}

func groupRecords(pairs []pair) []record {
	var records []record
	for _, p := range pairs {
		if p.code == 0 {
			records = append(records, record{typ: p.value, line: p.line})
			continue
		}
		if len(records) == 0 {
			continue
		}
		last := &records[len(records)-1]
		last.pairs = append(last.pairs, p)
	}
	return records
}

func (rec record) value(code int) (string, bool) {
	for _, p := range rec.pairs {
		if p.code == code {
			return p.value, true
		}
	}
	return "", false
}

func (rec record) float(code int, def float64) (float64, error) {
	v, ok := rec.value(code)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: 第 %d 行 %s 的组码 %d 取值 %q 不是数字", ErrMalformed, rec.line, rec.typ, code, v)
	}
	return f, nil
}

func (rec record) point(code int) (geom.Point, error) {
	x, err := rec.float(code, 0)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := rec.float(code+10, 0)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

func (rec record) layer() string {
	if v, ok := rec.value(8); ok && v != "" {
		return v
	}
	return geom.LayerDefault
}

func (d *Drawing) parseBlocks(body []record) ([]*Block, error) {
	var blocks []*Block
	for i := 0; i < len(body); i++ {
		if body[i].typ != "BLOCK" {
			continue
		}
		name, _ := body[i].value(2)
		end := i + 1
		for end < len(body) && body[end].typ != "ENDBLK" {
			end++
		}
		if end == len(body) {
			return nil, fmt.Errorf("%w: 块 %q 缺少 ENDBLK", ErrMalformed, name)
		}
		entities, err := d.parseEntities(body[i+1 : end])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &Block{Name: name, Entities: entities})
		i = end
	}
	return blocks, nil
}

func (d *Drawing) parseEntities(body []record) ([]Entity, error) {
	var entities []Entity
	for i := 0; i < len(body); i++ {
		rec := body[i]
		switch rec.typ {
		case "LINE":
			a, err := rec.point(10)
			if err != nil {
				return nil, err
			}
			b, err := rec.point(11)
			if err != nil {
				return nil, err
			}
			entities = append(entities, &Line{geom.Line{A: a, B: b, Layer: rec.layer()}})
		case "LWPOLYLINE":
			pl, err := parseLWPolyline(rec)
			if err != nil {
				return nil, err
			}
			entities = append(entities, pl)
		case "POLYLINE":
			pl, next, err := parsePolyline(body, i)
			if err != nil {
				return nil, err
			}
			entities = append(entities, pl)
			i = next
		case "INSERT":
			in, err := parseInsert(rec)
			if err != nil {
				return nil, err
			}
			entities = append(entities, in)
		default:
			d.Skipped[rec.typ]++
		}
	}
	return entities, nil
}

func flagsOf(rec record) (int, error) {
	v, ok := rec.value(70)
	if !ok {
		return 0, nil
	}
	flags, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: 第 %d 行 %s 的标志 %q 无效", ErrMalformed, rec.line, rec.typ, v)
	}
	return flags, nil
}

// LWPOLYLINE 的顶点以重复的 10/20 组码依次给出。
func parseLWPolyline(rec record) (*Polyline, error) {
	flags, err := flagsOf(rec)
	if err != nil {
		return nil, err
	}
	pl := &Polyline{geom.Polyline{Closed: flags&1 != 0, Layer: rec.layer()}}
	for _, p := range rec.pairs {
		switch p.code {
		case 10:
			x, err := strconv.ParseFloat(p.value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行坐标 %q 无效", ErrMalformed, p.line, p.value)
			}
			pl.Points = append(pl.Points, geom.Point{X: x})
		case 20:
			if len(pl.Points) == 0 {
				return nil, fmt.Errorf("%w: 第 %d 行的 y 坐标缺少对应的 x", ErrMalformed, p.line)
			}
			y, err := strconv.ParseFloat(p.value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行坐标 %q 无效", ErrMalformed, p.line, p.value)
			}
			pl.Points[len(pl.Points)-1].Y = y
		}
	}
	return pl, nil
}

// parsePolyline consumes POLYLINE, its VERTEX records and SEQEND; it returns
// the index of the last consumed record.
func parsePolyline(body []record, i int) (*Polyline, int, error) {
	head := body[i]
	flags, err := flagsOf(head)
	if err != nil {
		return nil, 0, err
	}
	pl := &Polyline{geom.Polyline{Closed: flags&1 != 0, Layer: head.layer()}}
	j := i + 1
	for ; j < len(body); j++ {
		switch body[j].typ {
		case "VERTEX":
			p, err := body[j].point(10)
			if err != nil {
				return nil, 0, err
			}
			pl.Points = append(pl.Points, p)
			continue
		case "SEQEND":
			return pl, j, nil
		}
		break
	}
	return nil, 0, fmt.Errorf("%w: 第 %d 行的 POLYLINE 缺少 SEQEND", ErrMalformed, head.line)
}

func parseInsert(rec record) (*Insert, error) {
	name, ok := rec.value(2)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: 第 %d 行的 INSERT 缺少块名", ErrMalformed, rec.line)
	}
	at, err := rec.point(10)
	if err != nil {
		return nil, err
	}
	in := &Insert{Block: name, At: at, Layer: rec.layer()}
	if in.XScale, err = rec.float(41, 1); err != nil {
		return nil, err
	}
	if in.YScale, err = rec.float(42, 1); err != nil {
		return nil, err
	}
	if in.Rotation, err = rec.float(50, 0); err != nil {
		return nil, err
	}
	return in, nil
}
