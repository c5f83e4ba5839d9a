package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TrafficRow struct {
	ID           int64
	Anio         string
	Mes          string
	Departamento string
	Estacion     string
	TraficoTotal string
}

type ImportRunRow struct {
	ID         string
	Source     string
	Rows       int64
	StartedAt  string
	FinishedAt string
}

const deleteTrafficRows = `DELETE FROM traffic_rows`

func (q *Queries) DeleteTrafficRows(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTrafficRows)
	return err
}

const insertTrafficRow = `INSERT INTO traffic_rows (anio, mes, departamento, estacion, trafico_total)
VALUES (?, ?, ?, ?, ?)`

type InsertTrafficRowParams struct {
	Anio         string
	Mes          string
	Departamento string
	Estacion     string
	TraficoTotal string
}

func (q *Queries) InsertTrafficRow(ctx context.Context, arg InsertTrafficRowParams) error {
	_, err := q.db.ExecContext(ctx, insertTrafficRow,
		arg.Anio,
		arg.Mes,
		arg.Departamento,
		arg.Estacion,
		arg.TraficoTotal,
	)
	return err
}

const listTrafficRows = `SELECT id, anio, mes, departamento, estacion, trafico_total
FROM traffic_rows
ORDER BY id`

func (q *Queries) ListTrafficRows(ctx context.Context) ([]TrafficRow, error) {
	rows, err := q.db.QueryContext(ctx, listTrafficRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TrafficRow
	for rows.Next() {
		var i TrafficRow
		if err := rows.Scan(
			&i.ID,
			&i.Anio,
			&i.Mes,
			&i.Departamento,
			&i.Estacion,
			&i.TraficoTotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTrafficRows = `SELECT COUNT(*) FROM traffic_rows`

func (q *Queries) CountTrafficRows(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTrafficRows)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertImportRun = `INSERT INTO import_runs (id, source, row_count, started_at, finished_at)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertImportRun(ctx context.Context, arg ImportRunRow) error {
	_, err := q.db.ExecContext(ctx, insertImportRun,
		arg.ID,
		arg.Source,
		arg.Rows,
		arg.StartedAt,
		arg.FinishedAt,
	)
	return err
}

const lastImportRun = `SELECT id, source, row_count, started_at, finished_at
FROM import_runs
ORDER BY finished_at DESC
LIMIT 1`

func (q *Queries) LastImportRun(ctx context.Context) (ImportRunRow, error) {
	row := q.db.QueryRowContext(ctx, lastImportRun)
	var i ImportRunRow
	err := row.Scan(
		&i.ID,
		&i.Source,
		&i.Rows,
		&i.StartedAt,
		&i.FinishedAt,
	)
	return i, err
}
