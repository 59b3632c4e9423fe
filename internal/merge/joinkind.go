package merge

import "fmt"

// JoinKind selects the relational join mode for Merge.
type JoinKind string

const (
	JoinLeft  JoinKind = "left"  // keep all primary rows
	JoinRight JoinKind = "right" // keep all external rows
	JoinInner JoinKind = "inner" // keep matching rows only
	JoinOuter JoinKind = "outer" // keep the union of keys
)

// ParseJoinKind validates a join kind string. The empty string
// defaults to left, matching Merge's default.
func ParseJoinKind(s string) (JoinKind, error) {
	switch JoinKind(s) {
	case "":
		return JoinLeft, nil
	case JoinLeft, JoinRight, JoinInner, JoinOuter:
		return JoinKind(s), nil
	default:
		return "", fmt.Errorf("unknown join kind %q (want left, right, inner, or outer)", s)
	}
}
