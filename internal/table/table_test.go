package table_test

import (
	"strings"
	"testing"

	"tablemerge/internal/table"
)

func TestColumnIndex(t *testing.T) {
	tbl := table.New("id", "name", "score")

	idx, ok := tbl.ColumnIndex("name")
	if !ok || idx != 1 {
		t.Fatalf("ColumnIndex(name) = %d, %v; want 1, true", idx, ok)
	}
	if _, ok := tbl.ColumnIndex("missing"); ok {
		t.Fatal("ColumnIndex(missing) should not be found")
	}
}

func TestAppendRowPadsShortRows(t *testing.T) {
	tbl := table.New("a", "b", "c")
	tbl.AppendRow("x")

	if got := len(tbl.Rows[0]); got != 3 {
		t.Fatalf("row length = %d, want 3", got)
	}
	if tbl.Rows[0][2] != nil {
		t.Fatalf("missing cell should be nil, got %v", tbl.Rows[0][2])
	}
}

func TestCloneIsDeep(t *testing.T) {
	tbl := table.New("a")
	tbl.AppendRow("original")

	cp := tbl.Clone()
	cp.Rows[0][0] = "changed"
	cp.Columns[0] = "renamed"

	if tbl.Rows[0][0] != "original" {
		t.Fatal("Clone shares row storage with the original")
	}
	if tbl.Columns[0] != "a" {
		t.Fatal("Clone shares column storage with the original")
	}
}

func TestCellString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{[]byte("xyz"), "xyz"},
		{42.0, "42"},
		{3.14, "3.14"},
		{int64(7), "7"},
		{true, "true"},
	}
	for _, c := range cases {
		if got := table.CellString(c.in); got != c.want {
			t.Errorf("CellString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderLimitsRows(t *testing.T) {
	tbl := table.New("id", "val")
	for i := 0; i < 10; i++ {
		tbl.AppendRow(int64(i), "v")
	}

	out := table.RenderString(tbl, 3)
	if !strings.Contains(out, "... 7 more rows") {
		t.Fatalf("expected truncation note, got:\n%s", out)
	}
	// header + separator + 3 rows + truncation note
	if got := strings.Count(out, "\n"); got != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", got, out)
	}
}

func TestWriteCSVNullsAsEmpty(t *testing.T) {
	tbl := table.New("a", "b")
	tbl.AppendRow("x", nil)

	var b strings.Builder
	if err := table.WriteCSV(&b, tbl); err != nil {
		t.Fatal(err)
	}
	want := "a,b\nx,\n"
	if b.String() != want {
		t.Fatalf("WriteCSV = %q, want %q", b.String(), want)
	}
}
