package ingest

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tablemerge/internal/table"
)

// ── File ingestion ─────────────────────────────────────────
// Extension-keyed decoder registry. Format selection is purely by
// file extension, case-insensitive. Implementations live in this
// package — one file per format, registered via init().

var (
	// ErrFileNotFound means the path does not resolve to a readable file.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat means no decoder is registered for the
	// file's extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Decoder turns a file of one format into a table.
type Decoder interface {
	// Extensions lists the lowercased extensions (dot included) this
	// decoder claims.
	Extensions() []string

	// Decode reads the file at path into a table with named columns.
	Decode(path string) (*table.Table, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Decoder{}
)

// Register claims a decoder's extensions. Called from init() in each
// format file.
func Register(d Decoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, ext := range d.Extensions() {
		registry[ext] = d
	}
}

// Load reads the file at path into a table, dispatching on its
// extension. Fails with ErrFileNotFound or ErrUnsupportedFormat.
func Load(path string) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	d, ok := registry[ext]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	t, err := d.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Printf("[ingest] read %s, shape %s", path, t.Shape())
	return t, nil
}
