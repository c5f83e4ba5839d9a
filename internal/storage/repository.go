// Package storage keeps the raw dataset in SQLite so the dashboard can start
// without reaching the upstream source.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"trafico/internal/core"
	"trafico/internal/sources"

	_ "modernc.org/sqlite"
)

var (
	_ sources.RowReader = (*SQLiteRepository)(nil)
	_ sources.RowWriter = (*SQLiteRepository)(nil)
)

// Fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoImports is returned by LastImport on a database that was never loaded.
var ErrNoImports = errors.New("no import recorded")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// ImportRun describes one completed ReplaceRows pass.
type ImportRun struct {
	ID         string
	Source     string
	Rows       int
	StartedAt  time.Time
	FinishedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceRows swaps the stored dataset for rows in a single transaction.
// Readers see either the old rows or the new ones.
func (r *SQLiteRepository) ReplaceRows(ctx context.Context, rows []core.RawRow) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTrafficRows(ctx); err != nil {
		return 0, fmt.Errorf("clear traffic rows: %w", err)
	}
	for i, row := range rows {
		err := q.InsertTrafficRow(ctx, InsertTrafficRowParams{
			Anio:         row.Get(core.FieldYear),
			Mes:          row.Get(core.FieldMonth),
			Departamento: row.Get(core.FieldDepartment),
			Estacion:     row.Get(core.FieldStation),
			TraficoTotal: row.Get(core.FieldTraffic),
		})
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Replaced stored rows", "component", "storage", "rows", len(rows))
	return len(rows), nil
}

// ReadRows returns the stored rows in ingestion order.
func (r *SQLiteRepository) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	items, err := r.queries.ListTrafficRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list traffic rows: %w", err)
	}
	rows := make([]core.RawRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, core.RawRow{
			core.FieldYear:       it.Anio,
			core.FieldMonth:      it.Mes,
			core.FieldDepartment: it.Departamento,
			core.FieldStation:    it.Estacion,
			core.FieldTraffic:    it.TraficoTotal,
		})
	}
	return rows, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountTrafficRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("count traffic rows: %w", err)
	}
	return int(n), nil
}

// RecordImport stores an import run and returns its generated ID.
func (r *SQLiteRepository) RecordImport(ctx context.Context, source string, rows int, started, finished time.Time) (string, error) {
	id := uuid.NewString()
	err := r.queries.InsertImportRun(ctx, ImportRunRow{
		ID:         id,
		Source:     source,
		Rows:       int64(rows),
		StartedAt:  started.UTC().Format(timeLayout),
		FinishedAt: finished.UTC().Format(timeLayout),
	})
	if err != nil {
		return "", fmt.Errorf("insert import run: %w", err)
	}
	return id, nil
}

// LastImport returns the most recently finished import run.
func (r *SQLiteRepository) LastImport(ctx context.Context) (ImportRun, error) {
	row, err := r.queries.LastImportRun(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRun{}, ErrNoImports
	}
	if err != nil {
		return ImportRun{}, fmt.Errorf("get last import: %w", err)
	}
	started, err := time.Parse(timeLayout, row.StartedAt)
	if err != nil {
		return ImportRun{}, fmt.Errorf("parse started_at: %w", err)
	}
	finished, err := time.Parse(timeLayout, row.FinishedAt)
	if err != nil {
		return ImportRun{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return ImportRun{
		ID:         row.ID,
		Source:     row.Source,
		Rows:       int(row.Rows),
		StartedAt:  started,
		FinishedAt: finished,
	}, nil
}
