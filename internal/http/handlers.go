package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trafico/internal/core"
	applog "trafico/internal/log"
	"trafico/internal/narrative"
	"trafico/internal/services"
)

const notReadyMessage = "Los datos aún se están cargando. Intenta de nuevo en unos segundos."

// filterJSON is the wire form of a filter; unset facets are omitted.
type filterJSON struct {
	Year       int    `json:"anio,omitempty"`
	Month      int    `json:"mes,omitempty"`
	Department string `json:"departamento,omitempty"`
	Station    string `json:"estacion,omitempty"`
}

func toFilterJSON(f core.Filter) filterJSON {
	return filterJSON{Year: f.Year, Month: f.Month, Department: f.Department, Station: f.Station}
}

type dashboardResponse struct {
	core.Dashboard
	Filter    filterJSON        `json:"filter"`
	Requested filterJSON        `json:"requested"`
	Reset     []core.Facet      `json:"reset"`
	Summary   narrative.Summary `json:"summary"`
	Narrative []string          `json:"narrative"`
}

func newDashboardResponse(d core.Dashboard) dashboardResponse {
	reset := d.Reset()
	if reset == nil {
		reset = []core.Facet{}
	}
	summary := narrative.New(d)
	return dashboardResponse{
		Dashboard: d,
		Filter:    toFilterJSON(d.Filter),
		Requested: toFilterJSON(d.Requested),
		Reset:     reset,
		Summary:   summary,
		Narrative: summary.Paragraphs(),
	}
}

// dashboard parses the request filter and asks the provider for the
// dashboard, logging facets whose values could not be parsed.
func (s *Server) dashboard(r *http.Request) (core.Dashboard, error) {
	filter, invalid := ParseFilter(r.URL.Query())
	if len(invalid) > 0 {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Ignoring invalid filter values",
			"facets", strings.Join(invalid, ","), applog.FieldQuery, r.URL.RawQuery)
	}
	return s.provider.Dashboard(r.Context(), filter)
}

// handleIndex renders the full page for the filter in the query string.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Página no encontrada").Write(w)
		return
	}
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	var data pageData
	d, err := s.dashboard(r)
	switch {
	case err == nil:
		data = newPageData(d)
	case errors.Is(err, services.ErrNotReady):
		status = http.StatusServiceUnavailable
		data = pageData{Message: notReadyMessage}
	default:
		s.logError(r, "Dashboard computation failed", err)
		InternalServerError("No fue posible calcular el tablero").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logError(r, "Index template execution failed", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// handleSummary renders the filters, KPIs and story as an HTMX partial.
// The reconciled filter travels in the HX-Trigger header so the charts can
// follow it.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	d, err := s.dashboard(r)
	if err != nil {
		if errors.Is(err, services.ErrNotReady) {
			ServiceUnavailableError(notReadyMessage).Write(w)
			return
		}
		s.logError(r, "Dashboard computation failed", err)
		InternalServerError("No fue posible calcular el tablero").Write(w)
		return
	}

	data := newPageData(d)
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard", data); err != nil {
		s.logError(r, "Summary template execution failed", err)
		InternalServerError("template error").Write(w)
		return
	}

	push := "/"
	if data.Query != "" {
		push += "?" + data.Query
	}
	b := NewHTMXResponse().
		BodyHTML(buf.String()).
		TriggerDashboardUpdated(d.Filter).
		PushURL(push)
	if reset := d.Reset(); len(reset) > 0 {
		b.TriggerFilterReset(reset).
			TriggerWarningNotification(data.Paragraphs[0])
	}
	b.Write(w)
}

// handleAPIDashboard returns the dashboard as JSON for the charts and map.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	d, err := s.dashboard(r)
	if err != nil {
		if errors.Is(err, services.ErrNotReady) {
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		s.logError(r, "Dashboard computation failed", err)
		writeJSONError(w, http.StatusInternalServerError, "dashboard computation failed")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.clock.Now().Format(time.RFC3339),
		"uptime":    s.clock.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 until the dataset has been loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"templates": "ok", "dataset": "ok"}
	status, code := "ready", http.StatusOK
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if err := s.provider.CheckReadiness(ctx); err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	logger := applog.FromContext(r.Context())
	logger.ErrorContext(r.Context(), msg, applog.FieldError, err.Error(),
		applog.FieldPath, r.URL.Path, applog.FieldQuery, r.URL.RawQuery)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
