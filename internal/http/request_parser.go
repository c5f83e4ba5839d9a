// Package http serves the dashboard page, its HTML partials and the JSON API.
package http

import (
	"net/http"
	"net/url"
	"strings"

	"trafico/internal/core"
)

// queryAliases maps alternative parameter names to facets.
var queryAliases = map[string]core.Facet{
	"depto": core.FacetDepartment,
	"year":  core.FacetYear,
	"month": core.FacetMonth,
}

// ParseFilter reads the four facets from query parameters. Values that do
// not parse (anio=abc, mes=0) leave the facet unset; their names are
// returned so the caller can log them.
func ParseFilter(query url.Values) (core.Filter, []string) {
	var (
		f       core.Filter
		invalid []string
	)
	for _, facet := range core.Facets {
		raw := facetValue(query, facet)
		next, err := f.With(facet, sanitizeInput(raw))
		if err != nil {
			invalid = append(invalid, string(facet))
			continue
		}
		f = next
	}
	return f, invalid
}

func facetValue(query url.Values, facet core.Facet) string {
	if v := strings.TrimSpace(query.Get(string(facet))); v != "" {
		return v
	}
	for alias, target := range queryAliases {
		if target == facet {
			if v := strings.TrimSpace(query.Get(alias)); v != "" {
				return v
			}
		}
	}
	return ""
}

// FilterQuery renders f as query parameters, omitting unset facets.
func FilterQuery(f core.Filter) url.Values {
	q := url.Values{}
	for _, facet := range core.Facets {
		if v := f.Value(facet); v != "" {
			q.Set(string(facet), v)
		}
	}
	return q
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET allows GET and HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
