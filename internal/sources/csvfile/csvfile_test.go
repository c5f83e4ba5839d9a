package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"trafico/internal/core"
	"trafico/internal/sources"
)

func TestReader_ReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_trafico_total.csv")
	data := "estacion,anio,mes,departamento,trafico_total\n" +
		"Siberia,2023,1,Cundinamarca,300\n" +
		"Tuta,,2,Boyaca,10\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := New(path)
	rows, err := r.ReadRows(context.Background())
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	store := core.NewRecordStore(rows)
	if store.Len() != 1 || store.Dropped() != 1 {
		t.Fatalf("store len=%d dropped=%d, want 1/1", store.Len(), store.Dropped())
	}
}

func TestReader_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.csv")).ReadRows(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReader_BadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := New(path).ReadRows(context.Background())
	if !errors.Is(err, sources.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("unused.csv").ReadRows(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
