// Package csvfile reads the dataset from a CSV file on local disk.
package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"trafico/internal/core"
	"trafico/internal/sources"
)

var _ sources.RowReader = (*Reader)(nil)

type Reader struct {
	path string
}

func New(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the file the reader loads.
func (r *Reader) Path() string { return r.path }

// ReadRows opens and parses the file on every call so edits are picked up
// on reload.
func (r *Reader) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rows, skipped, err := sources.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed CSV rows", "component", "sources", "path", r.path, "skipped", skipped)
	}
	return rows, nil
}
