package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"

	"trafico/internal/core"
	"trafico/internal/sources"
)

func newTestReader(t *testing.T, body string, status int) *Reader {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-id/values/") {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("valueRenderOption"); got != "UNFORMATTED_VALUE" {
			t.Errorf("valueRenderOption = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	r, err := New(context.Background(),
		Config{SpreadsheetID: "sheet-id", Range: "trafico!A:E"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestReader_ReadRows(t *testing.T) {
	body := `{"range":"trafico!A1:E3","majorDimension":"ROWS","values":[
		["estacion","anio","mes","departamento","trafico_total"],
		["Siberia",2023,1,"Cundinamarca",300.5],
		["Tuta",2024,"febrero","Boyacá"]
	]}`
	r := newTestReader(t, body, http.StatusOK)

	rows, err := r.ReadRows(context.Background())
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	store := core.NewRecordStore(rows)
	recs := store.Records()
	if recs[0].Year != 2023 || recs[0].Traffic != 300.5 {
		t.Errorf("unexpected first record %+v", recs[0])
	}
	if recs[1].Month != 2 || recs[1].Department != "BOYACA" || recs[1].Traffic != 0 {
		t.Errorf("unexpected second record %+v", recs[1])
	}
}

func TestReader_MissingHeader(t *testing.T) {
	r := newTestReader(t, `{"values":[["a","b"],[1,2]]}`, http.StatusOK)
	_, err := r.ReadRows(context.Background())
	if !errors.Is(err, sources.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReader_APIError(t *testing.T) {
	r := newTestReader(t, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	if _, err := r.ReadRows(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Range: "A:E"}); err == nil {
		t.Error("expected error for missing spreadsheet ID")
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x"}); err == nil {
		t.Error("expected error for missing range")
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x", Range: "A:E", CredentialsFile: "/non/existent.json"}); err == nil {
		t.Error("expected error for unreadable credentials file")
	}
}
