package merge

import (
	"fmt"

	"tablemerge/internal/table"
)

// ── Join execution ─────────────────────────────────────────
// Hash equi-join on stringified key cells. Duplicate keys on both
// sides produce the cartesian product within the matching group.
//
// Output layout: all left columns in their original order, then the
// included right columns in their original order. When both key
// columns share one name the right key is not repeated. A non-key
// right column whose name is already taken is renamed with an "_ext"
// suffix ("_ext2", "_ext3", ... if that is taken too).

func join(left, right *table.Table, leftKey, rightKey string, how JoinKind) *table.Table {
	lKey, _ := left.ColumnIndex(leftKey)
	rKey, _ := right.ColumnIndex(rightKey)
	sameKeyName := leftKey == rightKey

	cols := append([]string(nil), left.Columns...)
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[c] = true
	}

	// Right columns carried into the output, by right-side index.
	var rightOut []int
	for i, c := range right.Columns {
		if sameKeyName && i == rKey {
			continue
		}
		name := c
		if taken[name] {
			name = suffixed(c, taken)
		}
		taken[name] = true
		cols = append(cols, name)
		rightOut = append(rightOut, i)
	}

	out := table.New(cols...)
	base := len(left.Columns)

	emit := func(lrow, rrow []any) {
		row := make([]any, len(cols))
		copy(row, lrow)
		if rrow != nil {
			for j, ri := range rightOut {
				row[base+j] = rrow[ri]
			}
			// With a shared key name the key column lives on the left
			// side; unmatched right rows still carry their key there.
			if sameKeyName && lrow == nil {
				row[lKey] = rrow[rKey]
			}
		}
		out.Rows = append(out.Rows, row)
	}

	switch how {
	case JoinRight:
		lGroups := groupByKey(left, lKey)
		for _, rrow := range right.Rows {
			matches := lGroups[table.CellString(rrow[rKey])]
			if len(matches) == 0 {
				emit(nil, rrow)
				continue
			}
			for _, li := range matches {
				emit(left.Rows[li], rrow)
			}
		}

	default: // left, inner, outer share the left-driven pass
		rGroups := groupByKey(right, rKey)
		matched := make([]bool, len(right.Rows))
		for _, lrow := range left.Rows {
			matches := rGroups[table.CellString(lrow[lKey])]
			if len(matches) == 0 {
				if how != JoinInner {
					emit(lrow, nil)
				}
				continue
			}
			for _, ri := range matches {
				matched[ri] = true
				emit(lrow, right.Rows[ri])
			}
		}
		if how == JoinOuter {
			for ri, rrow := range right.Rows {
				if !matched[ri] {
					emit(nil, rrow)
				}
			}
		}
	}

	return out
}

// groupByKey maps each stringified key to the row indices holding it,
// preserving row order within a group.
func groupByKey(t *table.Table, keyIdx int) map[string][]int {
	groups := make(map[string][]int, len(t.Rows))
	for i, row := range t.Rows {
		k := table.CellString(row[keyIdx])
		groups[k] = append(groups[k], i)
	}
	return groups
}

// suffixed returns the first free "_ext"-suffixed variant of name.
func suffixed(name string, taken map[string]bool) string {
	candidate := name + "_ext"
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s_ext%d", name, n)
	}
	return candidate
}
