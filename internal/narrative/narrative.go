// Package narrative turns a computed dashboard into the figures and the
// short Spanish reading shown next to the charts.
package narrative

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"trafico/internal/core"
)

// Locale used for every figure.
var Locale = language.MustParse("es-CO")

const missing = "—"

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var facetLabels = map[core.Facet]string{
	core.FacetYear:       "año",
	core.FacetMonth:      "mes",
	core.FacetDepartment: "departamento",
	core.FacetStation:    "estación",
}

// FormatNumber rounds v and groups thousands the Colombian way (1.234.567).
func FormatNumber(v float64) string {
	p := message.NewPrinter(Locale)
	return p.Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent renders a 0..1 share with one decimal, e.g. "12,5%".
func FormatPercent(share float64) string {
	p := message.NewPrinter(Locale)
	return p.Sprintf("%.1f", share*100) + "%"
}

// MonthName returns the Spanish name of month 1-12, or "" otherwise.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// FacetLabel returns the Spanish label of a facet.
func FacetLabel(f core.Facet) string {
	return facetLabels[f]
}

// Lead is a formatted ranking leader.
type Lead struct {
	Name  string `json:"name"`
	Total string `json:"total"`
	Share string `json:"share"`
}

// Summary holds the formatted figures of one dashboard.
type Summary struct {
	Total       string `json:"total"`
	Rows        string `json:"rows"`
	Departments int    `json:"departments"`
	Stations    int    `json:"stations"`
	Coverage    string `json:"coverage"`

	LeadingDepartment Lead `json:"leading_department"`
	LeadingStation    Lead `json:"leading_station"`

	// Reset lists the labels of facets dropped because no record matched.
	Reset []string `json:"reset,omitempty"`
	Empty bool     `json:"empty"`
}

// New formats d.
func New(d core.Dashboard) Summary {
	s := Summary{
		Total:             FormatNumber(d.Total),
		Rows:              FormatNumber(float64(d.Rows)),
		Departments:       d.Departments,
		Stations:          d.Stations,
		Coverage:          fmt.Sprintf("%d deptos · %d estaciones", d.Departments, d.Stations),
		LeadingDepartment: lead(d.LeadingDepartment, d.DepartmentShare),
		LeadingStation:    lead(d.LeadingStation, d.StationShare),
		Empty:             d.Rows == 0,
	}
	for _, f := range d.Reset() {
		s.Reset = append(s.Reset, FacetLabel(f))
	}
	return s
}

func lead(e *core.Entry, share float64) Lead {
	if e == nil {
		return Lead{Name: missing, Total: missing, Share: FormatPercent(0)}
	}
	return Lead{Name: e.Key, Total: FormatNumber(e.Sum), Share: FormatPercent(share)}
}

// Paragraphs returns the reading of the dashboard as plain-text paragraphs.
func (s Summary) Paragraphs() []string {
	out := make([]string, 0, 5)
	if len(s.Reset) > 0 {
		out = append(out, fmt.Sprintf(
			"Ningún registro coincidía con la selección; se restableció el filtro de %s.",
			strings.Join(s.Reset, ", ")))
	}
	out = append(out,
		fmt.Sprintf("Con los filtros actuales, el tráfico total suma %s. Estamos viendo %s registros, que cubren %d departamentos y %d estaciones.",
			s.Total, s.Rows, s.Departments, s.Stations),
		fmt.Sprintf("Concentración: el departamento líder es %s con %s (%s).",
			s.LeadingDepartment.Name, s.LeadingDepartment.Total, s.LeadingDepartment.Share),
		fmt.Sprintf("Estación crítica: la estación #1 es %s con %s (%s).",
			s.LeadingStation.Name, s.LeadingStation.Total, s.LeadingStation.Share),
		"Lectura operativa: si el objetivo es maximizar impacto, una estrategia razonable es comenzar por el top territorial (departamentos) y luego por el top de estaciones dentro de cada territorio.",
	)
	return out
}

// Text joins the paragraphs with blank lines.
func (s Summary) Text() string {
	return strings.Join(s.Paragraphs(), "\n\n")
}
