package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"tablemerge/internal/table"
)

// ── JSON files ─────────────────────────────────────────────
// .json holding an array of flat objects. Columns are the union of
// keys across objects, sorted for a deterministic order (JSON object
// keys carry no order of their own). Absent keys are nulls; nested
// values are kept as their JSON text.

type jsonDecoder struct{}

func init() { Register(&jsonDecoder{}) }

func (d *jsonDecoder) Extensions() []string { return []string{".json"} }

func (d *jsonDecoder) Decode(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("parse json (expected an array of objects): %w", err)
	}

	seen := make(map[string]bool)
	var cols []string
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	t := table.New(cols...)
	for _, obj := range objects {
		cells := make([]any, len(cols))
		for i, c := range cols {
			v, ok := obj[c]
			if !ok || v == nil {
				continue
			}
			switch vv := v.(type) {
			case string, float64, bool:
				cells[i] = vv
			default:
				raw, _ := json.Marshal(vv)
				cells[i] = string(raw)
			}
		}
		t.AppendRow(cells...)
	}
	return t, nil
}
