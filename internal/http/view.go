package http

import (
	"fmt"
	"strconv"

	"trafico/internal/core"
	"trafico/internal/narrative"
)

// allLabel is the empty option of every select.
const allLabel = "(Todos)"

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type facetSelect struct {
	Name    string
	Label   string
	Options []selectOption
}

// pageData feeds index.html and the dashboard partial.
type pageData struct {
	Ready      bool
	Message    string
	Query      string
	Selects    []facetSelect
	Summary    narrative.Summary
	Paragraphs []string
	Dashboard  core.Dashboard
}

func newPageData(d core.Dashboard) pageData {
	summary := narrative.New(d)
	data := pageData{
		Ready:      true,
		Query:      FilterQuery(d.Filter).Encode(),
		Summary:    summary,
		Paragraphs: summary.Paragraphs(),
		Dashboard:  d,
	}
	if summary.Empty {
		data.Message = "No hay registros para mostrar."
	}

	for _, facet := range core.Facets {
		sel := facetSelect{Name: string(facet), Label: narrative.FacetLabel(facet)}
		selected := d.Filter.Value(facet)
		sel.Options = append(sel.Options, selectOption{Value: "", Label: allLabel, Selected: selected == ""})
		for _, v := range optionValues(d.Options, facet) {
			sel.Options = append(sel.Options, selectOption{
				Value:    v.value,
				Label:    v.label,
				Selected: v.value == selected,
			})
		}
		data.Selects = append(data.Selects, sel)
	}
	return data
}

type optionValue struct{ value, label string }

func optionValues(opts core.Options, facet core.Facet) []optionValue {
	var out []optionValue
	switch facet {
	case core.FacetYear:
		for _, y := range opts.Years {
			s := strconv.Itoa(y)
			out = append(out, optionValue{s, s})
		}
	case core.FacetMonth:
		for _, m := range opts.Months {
			out = append(out, optionValue{strconv.Itoa(m), fmt.Sprintf("%02d · %s", m, narrative.MonthName(m))})
		}
	case core.FacetDepartment:
		for _, v := range opts.Departments {
			out = append(out, optionValue{v, v})
		}
	case core.FacetStation:
		for _, v := range opts.Stations {
			out = append(out, optionValue{v, v})
		}
	}
	return out
}
