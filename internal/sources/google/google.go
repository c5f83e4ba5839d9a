// Package google reads the dataset from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"trafico/internal/core"
	"trafico/internal/sources"
)

var _ sources.RowReader = (*Reader)(nil)

// Config selects the spreadsheet range and the service account used to
// read it. With neither credential set, application default credentials
// apply.
type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
	CredentialsJSON string
}

type Reader struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

// New creates a Sheets reader. Extra client options are appended after the
// credentials, so tests can point the client at a local endpoint.
func New(ctx context.Context, cfg Config, extra ...goption.ClientOption) (*Reader, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(cfg.Range) == "" {
		return nil, errors.New("missing sheet range")
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsReadonlyScope)}
	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		opts = append(opts, goption.WithCredentialsJSON(creds))
	}
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.DebugContext(ctx, "Google Sheets service created", "component", "sources", "spreadsheet_id", cfg.SpreadsheetID, "range", cfg.Range)

	return &Reader{svc: svc, spreadsheetID: cfg.SpreadsheetID, rng: cfg.Range}, nil
}

func credentialsJSON(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

// ReadRows fetches the configured range with unformatted values so numbers
// arrive without locale separators.
func (r *Reader) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, r.rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get %s: %w", r.rng, err)
	}
	rows, err := sources.RowsFromMatrix(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("sheets range %s: %w", r.rng, err)
	}
	return rows, nil
}
