// Package worker copies the dataset from its sources into the local store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"trafico/internal/core"
	"trafico/internal/sources"
)

// RunRecorder keeps an audit trail of completed imports.
type RunRecorder interface {
	RecordImport(ctx context.Context, source string, rows int, started, finished time.Time) (string, error)
}

// Source is one named input of an import.
type Source struct {
	Name   string
	Reader sources.RowReader
}

// Result summarizes one import.
type Result struct {
	RunID    string
	Rows     int
	Valid    int
	Dropped  int
	Duration time.Duration
}

var ErrNoSources = errors.New("no import sources")

// ImportWorker reads every source concurrently and replaces the stored
// dataset with their rows, in source order.
type ImportWorker struct {
	writer      sources.RowWriter
	recorder    RunRecorder
	clock       clockwork.Clock
	concurrency int
}

// NewImportWorker creates a worker. recorder may be nil; a nil clock uses
// the wall clock.
func NewImportWorker(writer sources.RowWriter, recorder RunRecorder, clock clockwork.Clock, concurrency int) *ImportWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if concurrency < 1 {
		concurrency = 4
	}
	return &ImportWorker{
		writer:      writer,
		recorder:    recorder,
		clock:       clock,
		concurrency: concurrency,
	}
}

// Import reads all sources and writes their concatenated rows. Nothing is
// written if any source fails.
func (w *ImportWorker) Import(ctx context.Context, srcs []Source) (Result, error) {
	if len(srcs) == 0 {
		return Result{}, ErrNoSources
	}
	started := w.clock.Now()

	parts := make([][]core.RawRow, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, src := range srcs {
		g.Go(func() error {
			rows, err := src.Reader.ReadRows(gctx)
			if err != nil {
				return fmt.Errorf("read %s: %w", src.Name, err)
			}
			slog.DebugContext(gctx, "Source read", "component", "import", "source", src.Name, "rows", len(rows))
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var all []core.RawRow
	for _, p := range parts {
		all = append(all, p...)
	}

	n, err := w.writer.ReplaceRows(ctx, all)
	if err != nil {
		return Result{}, fmt.Errorf("replace rows: %w", err)
	}

	store := core.NewRecordStore(all)
	finished := w.clock.Now()
	res := Result{
		Rows:     n,
		Valid:    store.Len(),
		Dropped:  store.Dropped(),
		Duration: finished.Sub(started),
	}

	if w.recorder != nil {
		id, err := w.recorder.RecordImport(ctx, sourceNames(srcs), n, started, finished)
		if err != nil {
			return res, fmt.Errorf("record import: %w", err)
		}
		res.RunID = id
	}

	slog.InfoContext(ctx, "Import completed",
		"component", "import",
		"sources", len(srcs),
		"rows", res.Rows,
		"valid", res.Valid,
		"dropped", res.Dropped,
		"run_id", res.RunID,
		"duration", res.Duration)
	return res, nil
}

func sourceNames(srcs []Source) string {
	if len(srcs) == 1 {
		return srcs[0].Name
	}
	return fmt.Sprintf("%s (+%d)", srcs[0].Name, len(srcs)-1)
}
