package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafico/internal/core"
)

func newJSONLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   NewHandler(buf, slog.LevelDebug, "json"),
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, ComponentDashboard)

	logger.Info("hello", "k", "v")
	logger.WithComponent(ComponentCache).Warn("evicted")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, ComponentDashboard, lines[0][FieldComponent])
	assert.Equal(t, "v", lines[0]["k"])
	assert.Equal(t, ComponentCache, lines[1][FieldComponent])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	logger := newJSONLogger(&bytes.Buffer{}, ComponentHTTP)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newJSONLogger(&buf, ComponentHTTP))
	ctx := context.Background()

	req := httptest.NewRequest("GET", "/api/dashboard?anio=2023", nil)
	sl.LogHTTPEnd(ctx, req, "req-1", 503, 12*time.Millisecond, "10.0.0.1")

	sl.LogDashboardComputed(ctx, core.Dashboard{
		Requested: core.Filter{Year: 2023, Department: "X"},
		Filter:    core.Filter{Year: 2023},
		Rows:      4,
	}, true)

	sl.LogError(ctx, "load failed", errors.New("boom"), OpLoad, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "req-1", lines[0][FieldRequestID])
	assert.Equal(t, float64(503), lines[0][FieldStatusCode])
	assert.Equal(t, false, lines[0][FieldSuccess])

	assert.Equal(t, float64(2023), lines[1][FieldYear])
	assert.Equal(t, true, lines[1][FieldCacheHit])
	assert.Equal(t, []any{"departamento"}, lines[1][FieldReset])

	assert.Equal(t, "boom", lines[2][FieldError])
	assert.Equal(t, OpLoad, lines[2][FieldOperation])
}
