package merge_test

import (
	"testing"

	"tablemerge/internal/merge"
	"tablemerge/internal/table"
)

func primaryFixture() *table.Table {
	t := table.New("id")
	t.AppendRow("1")
	t.AppendRow("2")
	t.AppendRow("3")
	return t
}

func externalFixture() *table.Table {
	t := table.New("id", "val")
	t.AppendRow("2", "x")
	t.AppendRow("3", "y")
	t.AppendRow("4", "z")
	return t
}

func TestJoinLeft(t *testing.T) {
	out := merge.Join(primaryFixture(), externalFixture(), "id", "id", merge.JoinLeft)

	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	if out.Rows[0][0] != "1" || out.Rows[0][1] != nil {
		t.Fatalf("unmatched primary row should carry a null val, got %v", out.Rows[0])
	}
	if out.Rows[1][1] != "x" || out.Rows[2][1] != "y" {
		t.Fatalf("matched rows wrong: %v", out.Rows)
	}
}

func TestJoinInner(t *testing.T) {
	out := merge.Join(primaryFixture(), externalFixture(), "id", "id", merge.JoinInner)

	if out.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", out.NumRows())
	}
	if out.Rows[0][0] != "2" || out.Rows[1][0] != "3" {
		t.Fatalf("inner join keys = %v", out.Rows)
	}
}

func TestJoinOuter(t *testing.T) {
	out := merge.Join(primaryFixture(), externalFixture(), "id", "id", merge.JoinOuter)

	if out.NumRows() != 4 {
		t.Fatalf("rows = %d, want 4", out.NumRows())
	}
	// Unmatched external row comes last and carries its key in the
	// shared key column.
	last := out.Rows[3]
	if last[0] != "4" || last[1] != "z" {
		t.Fatalf("outer join unmatched external row = %v", last)
	}
}

func TestJoinRight(t *testing.T) {
	out := merge.Join(primaryFixture(), externalFixture(), "id", "id", merge.JoinRight)

	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	// External order preserved; id 4 has no primary match but keeps
	// its key and val.
	if out.Rows[2][0] != "4" || out.Rows[2][1] != "z" {
		t.Fatalf("right join rows = %v", out.Rows)
	}
}

func TestJoinDifferentKeyNamesKeepsBothColumns(t *testing.T) {
	left := table.New("pid", "name")
	left.AppendRow("1", "a")
	right := table.New("xid", "val")
	right.AppendRow("1", "v")

	out := merge.Join(left, right, "pid", "xid", merge.JoinLeft)

	want := []string{"pid", "name", "xid", "val"}
	for i, c := range want {
		if out.Columns[i] != c {
			t.Fatalf("columns = %v, want %v", out.Columns, want)
		}
	}
	if out.Rows[0][2] != "1" {
		t.Fatalf("external key column should carry its value, got %v", out.Rows[0])
	}
}

func TestJoinCollisionSuffix(t *testing.T) {
	left := table.New("id", "name", "name_ext")
	left.AppendRow("1", "a", "b")
	right := table.New("id", "name")
	right.AppendRow("1", "c")

	out := merge.Join(left, right, "id", "id", merge.JoinLeft)

	want := []string{"id", "name", "name_ext", "name_ext2"}
	for i, c := range want {
		if out.Columns[i] != c {
			t.Fatalf("columns = %v, want %v", out.Columns, want)
		}
	}
	if out.Rows[0][3] != "c" {
		t.Fatalf("suffixed column should hold the external value, got %v", out.Rows[0])
	}
}

func TestJoinDuplicateKeysCartesian(t *testing.T) {
	left := table.New("id", "name")
	left.AppendRow("1", "a")
	left.AppendRow("1", "b")
	left.AppendRow("2", "c")
	right := table.New("id", "val")
	right.AppendRow("1", "x")
	right.AppendRow("1", "y")
	right.AppendRow("2", "z")

	out := merge.Join(left, right, "id", "id", merge.JoinInner)

	// 2x2 for key 1 plus 1x1 for key 2.
	if out.NumRows() != 5 {
		t.Fatalf("rows = %d, want 5", out.NumRows())
	}
}

func TestJoinNumericAndStringKeysMatch(t *testing.T) {
	// Keys are compared in stringified form, so 2.0 from a
	// spreadsheet matches "2" from a CSV.
	left := table.New("id")
	left.AppendRow(2.0)
	right := table.New("id", "val")
	right.AppendRow("2", "x")

	out := merge.Join(left, right, "id", "id", merge.JoinInner)
	if out.NumRows() != 1 {
		t.Fatalf("rows = %d, want 1", out.NumRows())
	}
}
