// Package memory keeps the dataset in process. It backs tests and can be
// seeded from a directory of CSV files.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"trafico/internal/core"
	"trafico/internal/sources"
)

var (
	_ sources.RowReader = (*Store)(nil)
	_ sources.RowWriter = (*Store)(nil)
)

type Store struct {
	mu   sync.Mutex
	rows []core.RawRow
}

func New(rows ...core.RawRow) *Store {
	return &Store{rows: slices.Clone(rows)}
}

// NewFromDir loads every *.csv file of dir in name order.
func NewFromDir(dir string) (*Store, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	s := New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		rows, _, err := sources.ParseCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		s.rows = append(s.rows, rows...)
	}
	return s, nil
}

// ReadRows returns a snapshot of the stored rows.
func (s *Store) ReadRows(_ context.Context) ([]core.RawRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows), nil
}

// ReplaceRows swaps the stored rows.
func (s *Store) ReplaceRows(_ context.Context, rows []core.RawRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Clone(rows)
	return len(rows), nil
}

// Append adds rows after the existing ones.
func (s *Store) Append(rows ...core.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
}
