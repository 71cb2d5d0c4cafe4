package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/medalholder/dsl"
)

func TestParseWidthTable(t *testing.T) {
	table, err := dsl.ParseWidthTableString(`{'A': 30, 'B': 28, "C": 31}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(table.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(table.Entries))
	}
	want := []struct {
		key   string
		value int
	}{{"A", 30}, {"B", 28}, {"C", 31}}
	for i, w := range want {
		e := table.Entries[i]
		if string(e.Key) != w.key || e.Value != w.value {
			t.Fatalf("entry %d: got %s=%d, want %s=%d", i, e.Key, e.Value, w.key, w.value)
		}
	}
}

func TestParseWidthTableMultiline(t *testing.T) {
	input := "{\n  'A': 30,\n  'Z': 27,\n}\n"
	table, err := dsl.ParseWidthTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(table.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table.Entries))
	}
	if table.Entries[1].Pos.Line != 3 {
		t.Fatalf("expected second entry on line 3, got %d", table.Entries[1].Pos.Line)
	}
}

func TestParseWidthTableEmpty(t *testing.T) {
	table, err := dsl.ParseWidthTableString("{}")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(table.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(table.Entries))
	}
}

// 宽度表不能包含表达式或函数调用，解析必须直接失败。
func TestParseWidthTableRejectsCode(t *testing.T) {
	bad := []string{
		`{'A': __import__('os').system('ls')}`,
		`{'A': 30.5}`,
		`{'A' 30}`,
		`{'A': 30`,
		`['A', 30]`,
		``,
	}
	for _, input := range bad {
		if _, err := dsl.ParseWidthTableString(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
