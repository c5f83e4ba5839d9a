package s3

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trafico/internal/core"
	"trafico/internal/sources"
)

func newMockReader(t *testing.T, objects map[string]string) *Reader {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := objects[r.URL.Path]
		if r.Method != http.MethodGet || !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	r, err := New(context.Background(), Config{
		Bucket:          "trafico",
		Key:             "data_trafico_total.csv",
		Endpoint:        srv.URL,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestReader_ReadRows(t *testing.T) {
	r := newMockReader(t, map[string]string{
		"/trafico/data_trafico_total.csv": "anio;mes;departamento;estacion;trafico_total\n2023;3;Meta;Pipiral;42\n",
	})

	rows, err := r.ReadRows(context.Background())
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	rec, ok := core.NormalizeRow(rows[0])
	if !ok {
		t.Fatal("row should normalize")
	}
	want := core.Record{Station: "PIPIRAL", Department: "META", Year: 2023, Month: 3, Traffic: 42}
	if rec != want {
		t.Fatalf("record = %+v, want %+v", rec, want)
	}
}

func TestReader_MissingObject(t *testing.T) {
	r := newMockReader(t, nil)
	if _, err := r.ReadRows(context.Background()); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestReader_BadHeader(t *testing.T) {
	r := newMockReader(t, map[string]string{"/trafico/data_trafico_total.csv": "x,y\n1,2\n"})
	_, err := r.ReadRows(context.Background())
	if !errors.Is(err, sources.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Key: "k"}); err == nil {
		t.Error("expected error for missing bucket")
	}
	if _, err := New(ctx, Config{Bucket: "b"}); err == nil {
		t.Error("expected error for missing key")
	}
}
