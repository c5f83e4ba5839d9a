// Package sources reads the raw traffic dataset from wherever it lives: a
// local CSV file, a Google Sheets range, an S3 object or the SQLite store.
package sources

import (
	"context"
	"errors"

	"trafico/internal/core"
)

// Ports for inbound adapters.
type (
	// RowReader returns every raw row of the dataset in source order.
	RowReader interface {
		ReadRows(ctx context.Context) ([]core.RawRow, error)
	}

	// RowWriter replaces the stored dataset with rows.
	RowWriter interface {
		ReplaceRows(ctx context.Context, rows []core.RawRow) (int, error)
	}
)

// ErrMissingColumn is returned when a dataset header lacks a required field.
var ErrMissingColumn = errors.New("missing required column")

// RequiredFields must be present in every dataset header.
var RequiredFields = []string{core.FieldYear}
