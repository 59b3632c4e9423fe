package merge_test

import (
	"errors"
	"strings"
	"testing"

	"tablemerge/internal/merge"
	"tablemerge/internal/table"
)

func TestExpandSplitsAndTrims(t *testing.T) {
	src := table.New("id", "name")
	src.AppendRow("A,B, C", "group1")

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}

	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	wantKeys := []string{"A", "B", "C"}
	for i, k := range wantKeys {
		if out.Rows[i][0] != k {
			t.Errorf("row %d key = %v, want %q", i, out.Rows[i][0], k)
		}
		if out.Rows[i][1] != "group1" {
			t.Errorf("row %d should carry the source row's other cells, got %v", i, out.Rows[i][1])
		}
	}
}

func TestExpandRowCount(t *testing.T) {
	// Total expanded rows = sum over rows of (delimiter occurrences + 1).
	src := table.New("id")
	rows := []string{"A,B,C", "D", "E,F", ",", ""}
	for _, r := range rows {
		src.AppendRow(r)
	}

	want := 0
	for _, r := range rows {
		want += strings.Count(r, ",") + 1
	}

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != want {
		t.Fatalf("rows = %d, want %d", out.NumRows(), want)
	}
}

func TestExpandNoDelimiterOccurrence(t *testing.T) {
	src := table.New("id")
	src.AppendRow("  lone  ")

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 1 || out.Rows[0][0] != "lone" {
		t.Fatalf("got %v, want single trimmed row", out.Rows)
	}
}

func TestExpandKeepsEmptyPieces(t *testing.T) {
	src := table.New("id")
	src.AppendRow("A,,B")

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", out.NumRows())
	}
	if out.Rows[1][0] != "" {
		t.Fatalf("empty piece should stay as an empty-string key, got %v", out.Rows[1][0])
	}
}

func TestExpandNullKey(t *testing.T) {
	// A nil key stringifies to "" and yields one row with an empty key.
	src := table.New("id", "v")
	src.AppendRow(nil, "x")

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 1 {
		t.Fatalf("rows = %d, want 1", out.NumRows())
	}
	if out.Rows[0][0] != "" || out.Rows[0][1] != "x" {
		t.Fatalf("got %v, want empty key with other cells kept", out.Rows[0])
	}
}

func TestExpandPreservesRowOrder(t *testing.T) {
	src := table.New("id")
	src.AppendRow("B,A")
	src.AppendRow("D,C")

	out, err := merge.Expand(src, "id", ",")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"B", "A", "D", "C"}
	for i, k := range want {
		if out.Rows[i][0] != k {
			t.Fatalf("order = %v, want %v", out.Rows, want)
		}
	}
}

func TestExpandDoesNotMutateSource(t *testing.T) {
	src := table.New("id")
	src.AppendRow("A,B")

	if _, err := merge.Expand(src, "id", ","); err != nil {
		t.Fatal(err)
	}
	if src.NumRows() != 1 || src.Rows[0][0] != "A,B" {
		t.Fatalf("source table changed: %v", src.Rows)
	}
}

func TestExpandUnknownColumn(t *testing.T) {
	src := table.New("id")

	_, err := merge.Expand(src, "missing", ",")
	var cnf *merge.ColumnNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("err = %v, want ColumnNotFoundError", err)
	}
	if cnf.Column != "missing" || cnf.Table != "external" {
		t.Fatalf("error fields = %+v", cnf)
	}
}
