package tabular

import (
	"reflect"
	"testing"
)

func TestDedupColumnsKeepsFirst(t *testing.T) {
	tbl := New("player", "goals", "Player", "goals")
	tbl.AppendRow("Kane", "30", "dup", "31")

	out := tbl.DedupColumns()
	if got := out.Columns(); !reflect.DeepEqual(got, []string{"player", "goals"}) {
		t.Fatalf("columns = %v", got)
	}
	if got := out.Cell(0, "goals"); got != "30" {
		t.Fatalf("first occurrence must win, got %q", got)
	}
}

func TestAppendAlignsByColumnName(t *testing.T) {
	dst := New("player", "goals")
	dst.AppendRow("Kane", "30")

	src := New("xg", "player")
	src.AppendRow("24.5", "Haaland")

	dst.Append(src)
	if dst.Len() != 2 {
		t.Fatalf("len = %d", dst.Len())
	}
	if got := dst.Cell(1, "player"); got != "Haaland" {
		t.Fatalf("player = %q", got)
	}
	if got := dst.Cell(1, "xg"); got != "24.5" {
		t.Fatalf("xg = %q", got)
	}
	if got := dst.Cell(0, "xg"); got != "" {
		t.Fatalf("missing cell should be empty, got %q", got)
	}
}

func TestAppendEmptyIsNoop(t *testing.T) {
	dst := New("player")
	dst.AppendRow("Kane")
	dst.Append(nil)
	dst.Append(New("player"))
	if dst.Len() != 1 {
		t.Fatalf("len = %d", dst.Len())
	}
}

func TestAddConstStampsEveryRow(t *testing.T) {
	tbl := New("player")
	tbl.AppendRow("Kane")
	tbl.AppendRow("Son")
	tbl.AddConst("source", "fbref")

	for i := 0; i < tbl.Len(); i++ {
		if got := tbl.Cell(i, "source"); got != "fbref" {
			t.Fatalf("row %d source = %q", i, got)
		}
	}
}

func TestPickColumnPriorityOrder(t *testing.T) {
	tbl := New("club", "squad")
	if col, ok := tbl.PickColumn("squad", "team", "club"); !ok || col != "squad" {
		t.Fatalf("got %q ok=%t", col, ok)
	}
	if _, ok := tbl.PickColumn("nope"); ok {
		t.Fatal("expected no match")
	}
}

func TestFlattenHeader(t *testing.T) {
	levels := [][]string{
		{"", "Performance", "Performance", "Expected"},
		{"Player", "Gls", "Ast", "xG"},
	}
	got := FlattenHeader(levels, "_")
	want := []string{"Player", "Performance_Gls", "Performance_Ast", "Expected_xG"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNumericCoercion(t *testing.T) {
	tests := []struct {
		in        string
		wantInt   int
		wantFloat float64
	}{
		{"900", 900, 900},
		{"1,234", 1234, 1234},
		{"4.2", 4, 4.2},
		{"", 0, 0},
		{"n/a", 0, 0},
	}
	for _, tt := range tests {
		if got := AsInt(tt.in); got != tt.wantInt {
			t.Fatalf("AsInt(%q) = %d, want %d", tt.in, got, tt.wantInt)
		}
		if got := AsFloat(tt.in); got != tt.wantFloat {
			t.Fatalf("AsFloat(%q) = %v, want %v", tt.in, got, tt.wantFloat)
		}
	}
}

func TestNilTableIsEmpty(t *testing.T) {
	var tbl *Table
	if !tbl.IsEmpty() {
		t.Fatal("nil table must be empty")
	}
	if tbl.Len() != 0 || tbl.Columns() != nil || tbl.Rows() != nil {
		t.Fatal("nil table accessors must return zero values")
	}
}
