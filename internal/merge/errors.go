package merge

import (
	"errors"
	"fmt"
)

// ── Error taxonomy ─────────────────────────────────────────
// Every failure is terminal for the operation that raised it and
// leaves both tables untouched. ErrMergeCanceled is a deliberate
// operator decision, not a fault; callers branch on it with
// errors.Is.

var (
	// ErrNoTableLoaded means an operation needed the external table
	// before any file or query was loaded.
	ErrNoTableLoaded = errors.New("no external table loaded")

	// ErrBindingMissing means Merge was called without a prior Bind.
	ErrBindingMissing = errors.New("merge key binding not set")

	// ErrMergeCanceled means the double-merge guard fired and the
	// confirmation decision was negative.
	ErrMergeCanceled = errors.New("merge canceled")
)

// ColumnNotFoundError reports a bind against a column that does not
// exist, naming which table was searched.
type ColumnNotFoundError struct {
	Table  string // "primary" or "external"
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in the %s table", e.Column, e.Table)
}
