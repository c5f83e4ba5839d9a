package core

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Facet identifies one of the four filterable dimensions.
type Facet string

const (
	FacetYear       Facet = "anio"
	FacetMonth      Facet = "mes"
	FacetDepartment Facet = "departamento"
	FacetStation    Facet = "estacion"
)

// Facets lists every facet in display order.
var Facets = []Facet{FacetYear, FacetMonth, FacetDepartment, FacetStation}

var ErrUnknownFacet = errors.New("unknown facet")

// ParseFacet resolves a facet name such as "anio" or "estacion".
func ParseFacet(s string) (Facet, error) {
	f := Facet(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FacetYear, FacetMonth, FacetDepartment, FacetStation:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFacet, s)
}

// Filter constrains records facet by facet. A zero field is unset and
// matches every record. Filter is comparable and can be used as a map key.
type Filter struct {
	Year       int
	Month      int
	Department string
	Station    string
}

// IsEmpty reports whether no facet is constrained.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Matches reports whether r satisfies every set constraint.
func (f Filter) Matches(r Record) bool {
	return f.mismatch(r) == 0
}

// mismatch returns a bit set of the facets r fails.
func (f Filter) mismatch(r Record) uint8 {
	var m uint8
	if f.Year != 0 && r.Year != f.Year {
		m |= bitYear
	}
	if f.Month != 0 && r.Month != f.Month {
		m |= bitMonth
	}
	if f.Department != "" && r.Department != f.Department {
		m |= bitDepartment
	}
	if f.Station != "" && r.Station != f.Station {
		m |= bitStation
	}
	return m
}

const (
	bitYear uint8 = 1 << iota
	bitMonth
	bitDepartment
	bitStation
)

// Without returns a copy of f with facet cleared.
func (f Filter) Without(facet Facet) Filter {
	switch facet {
	case FacetYear:
		f.Year = 0
	case FacetMonth:
		f.Month = 0
	case FacetDepartment:
		f.Department = ""
	case FacetStation:
		f.Station = ""
	}
	return f
}

// With returns a copy of f with facet set from its text form. Empty text
// clears the facet. Strings are normalized so accents and case do not
// matter; year and month must be integers.
func (f Filter) With(facet Facet, value string) (Filter, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return f.Without(facet), nil
	}
	switch facet {
	case FacetYear, FacetMonth:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("invalid %s value %q", facet, value)
		}
		if facet == FacetYear {
			f.Year = n
		} else {
			f.Month = n
		}
	case FacetDepartment:
		f.Department = NormalizeText(value)
	case FacetStation:
		f.Station = NormalizeText(value)
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownFacet, facet)
	}
	return f, nil
}

// Value returns the text form of the facet, or "" when unset.
func (f Filter) Value(facet Facet) string {
	switch facet {
	case FacetYear:
		if f.Year != 0 {
			return strconv.Itoa(f.Year)
		}
	case FacetMonth:
		if f.Month != 0 {
			return strconv.Itoa(f.Month)
		}
	case FacetDepartment:
		return f.Department
	case FacetStation:
		return f.Station
	}
	return ""
}

// String renders the filter as a stable key, e.g. "anio=2023&mes=&...".
func (f Filter) String() string {
	var b strings.Builder
	for i, facet := range Facets {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(string(facet))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value(facet)))
	}
	return b.String()
}

// Apply returns the records matching f, preserving their order. The input
// is never modified; an empty filter or empty input returns it unchanged.
func Apply(records []Record, f Filter) []Record {
	if len(records) == 0 || f.IsEmpty() {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
