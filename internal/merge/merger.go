package merge

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tablemerge/internal/dbclient"
	"tablemerge/internal/ingest"
	"tablemerge/internal/table"
)

// ── Merger ─────────────────────────────────────────────────
// Stateful merge engine: one primary table, at most one external
// table and one key binding at a time, mutated only by explicit
// calls. A single instance is not safe for concurrent use; callers
// needing concurrency use one instance per primary table.

// ConfirmFunc decides whether a suspected double merge proceeds.
// It is called exactly once per detected condition. Production code
// wires it to a prompt; tests pass canned answers.
type ConfirmFunc func(prompt string) bool

// Merger merges a primary table with an externally loaded table on
// bound key columns. The primary table is never modified; every
// merge produces a fresh table.
type Merger struct {
	primary  *table.Table
	external *table.Table
	source   string // path or DSN description, for log messages

	primaryKey  string
	externalKey string
	delimiter   string
	bound       bool

	confirm ConfirmFunc
}

// New creates a Merger over the caller's primary table. confirm may
// be nil, in which case a detected double merge is declined — the
// safe default for non-interactive use.
func New(primary *table.Table, confirm ConfirmFunc) *Merger {
	return &Merger{primary: primary, confirm: confirm}
}

// Primary returns the primary table the engine was built over.
func (m *Merger) Primary() *table.Table { return m.primary }

// External returns the currently loaded external table, or nil.
func (m *Merger) External() *table.Table { return m.external }

// ── Loading ────────────────────────────────────────────────

// LoadFile reads an external table from path, replacing any
// previously loaded table wholesale. The key binding is invalidated
// because it may reference columns the new table lacks.
func (m *Merger) LoadFile(path string) error {
	t, err := ingest.Load(path)
	if err != nil {
		return err
	}
	m.setExternal(t, path)
	return nil
}

// LoadQuery reads an external table from a live database query.
// driver is one of dbclient's supported drivers.
func (m *Merger) LoadQuery(ctx context.Context, driver, dsn, query string) error {
	t, err := dbclient.Query(ctx, driver, dsn, query)
	if err != nil {
		return err
	}
	m.setExternal(t, fmt.Sprintf("%s query", driver))
	return nil
}

// SetExternal installs an already built table as the external side.
func (m *Merger) SetExternal(t *table.Table) {
	m.setExternal(t, "in-memory table")
}

func (m *Merger) setExternal(t *table.Table, source string) {
	m.external = t
	m.source = source
	m.bound = false
	log.Printf("[merge] loaded external table from %s, shape %s", source, t.Shape())
}

// Preview renders the first n rows of the external table as text.
// n <= 0 uses the default of 5 rows.
func (m *Merger) Preview(n int) (string, error) {
	if m.external == nil {
		return "", ErrNoTableLoaded
	}
	if n <= 0 {
		n = 5
	}
	return table.RenderString(m.external, n), nil
}

// ── Binding ────────────────────────────────────────────────

// Bind stores the key columns (and optional composite-key delimiter)
// for the next merge. Both columns must exist; the external table
// must already be loaded. The binding is consumed by a successful
// Merge and must be re-established before the next one.
func (m *Merger) Bind(primaryCol, externalCol, delimiter string) error {
	if m.external == nil {
		return ErrNoTableLoaded
	}
	if !m.primary.HasColumn(primaryCol) {
		return &ColumnNotFoundError{Table: "primary", Column: primaryCol}
	}
	if !m.external.HasColumn(externalCol) {
		return &ColumnNotFoundError{Table: "external", Column: externalCol}
	}

	m.primaryKey = primaryCol
	m.externalKey = externalCol
	m.delimiter = delimiter
	m.bound = true

	log.Printf("[merge] merging on primary column %q, external column %q", primaryCol, externalCol)
	if delimiter != "" {
		log.Printf("[merge] composite keys in the external column split on %q", delimiter)
	}
	return nil
}

// ── Merge ──────────────────────────────────────────────────

// Merge joins the primary table with the external table (expanded
// first when a delimiter is bound) and returns the result as a new
// table. The double-merge guard runs before every attempt. Any
// failure aborts before the join with both tables unchanged.
func (m *Merger) Merge(how JoinKind) (*table.Table, error) {
	return m.MergeWithConfirm(how, m.confirm)
}

// MergeWithConfirm is Merge with a per-call confirmation decision,
// for callers whose answer arrives with the request (a job's stored
// policy, a tool argument) rather than from a prompt.
func (m *Merger) MergeWithConfirm(how JoinKind, confirm ConfirmFunc) (*table.Table, error) {
	kind, err := ParseJoinKind(string(how))
	if err != nil {
		return nil, err
	}
	if m.external == nil {
		return nil, ErrNoTableLoaded
	}
	if !m.bound {
		return nil, ErrBindingMissing
	}

	if m.isLikelyDoubleMerge() {
		log.Printf("[merge] warning: all non-key external columns already exist in the primary table; possible double merge")
		prompt := "All columns from the external table (except the merge column) already exist " +
			"in the primary table. This might be a double merge. Do you want to proceed? (y/n): "
		if confirm == nil || !confirm(prompt) {
			log.Printf("[merge] merge canceled")
			return nil, ErrMergeCanceled
		}
	}

	right := m.external
	if m.delimiter != "" {
		// Expansion is transient: the stored external table keeps its
		// composite keys so repeated merges behave identically.
		expanded, err := Expand(m.external, m.externalKey, m.delimiter)
		if err != nil {
			return nil, err
		}
		right = expanded
	}

	result := join(m.primary, right, m.primaryKey, m.externalKey, kind)
	m.bound = false

	log.Printf("[merge] merged table shape %s using how=%q", result.Shape(), kind)
	return result, nil
}

// isLikelyDoubleMerge reports whether every external column except
// the key is already present in the primary table.
func (m *Merger) isLikelyDoubleMerge() bool {
	for _, c := range m.external.Columns {
		if c == m.externalKey {
			continue
		}
		if !m.primary.HasColumn(c) {
			return false
		}
	}
	return true
}

// Affirmative reports whether a prompt answer counts as a yes.
// Accepted tokens are "y" and "yes", case-insensitive, with
// surrounding whitespace ignored. Everything else is a no.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
