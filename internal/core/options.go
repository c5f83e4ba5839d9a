package core

import (
	"cmp"
	"slices"
)

// Options holds the selectable values of every facet.
type Options struct {
	Years       []int    `json:"anio"`
	Months      []int    `json:"mes"`
	Departments []string `json:"departamento"`
	Stations    []string `json:"estacion"`
}

// Contains reports whether value is selectable for facet.
func (o Options) Contains(facet Facet, f Filter) bool {
	switch facet {
	case FacetYear:
		_, ok := slices.BinarySearch(o.Years, f.Year)
		return ok
	case FacetMonth:
		_, ok := slices.BinarySearch(o.Months, f.Month)
		return ok
	case FacetDepartment:
		_, ok := slices.BinarySearch(o.Departments, f.Department)
		return ok
	case FacetStation:
		_, ok := slices.BinarySearch(o.Stations, f.Station)
		return ok
	}
	return false
}

// ResolveOptions computes, per facet, the values present among records that
// satisfy every constraint of f except that facet's own. Selecting a value
// therefore never narrows its own menu, only the other three.
func ResolveOptions(records []Record, f Filter) Options {
	years := make(map[int]struct{})
	months := make(map[int]struct{})
	depts := make(map[string]struct{})
	stations := make(map[string]struct{})

	for _, r := range records {
		miss := f.mismatch(r)
		// A record feeds facet F's menu when F is the only facet it fails,
		// or when it fails none.
		if miss&^bitYear == 0 {
			years[r.Year] = struct{}{}
		}
		if miss&^bitMonth == 0 && r.HasMonth() {
			months[r.Month] = struct{}{}
		}
		if miss&^bitDepartment == 0 && r.Department != "" {
			depts[r.Department] = struct{}{}
		}
		if miss&^bitStation == 0 && r.Station != "" {
			stations[r.Station] = struct{}{}
		}
	}

	return Options{
		Years:       sortedKeys(years),
		Months:      sortedKeys(months),
		Departments: sortedKeys(depts),
		Stations:    sortedKeys(stations),
	}
}

// Reconcile keeps each set facet of f only if its value is still offered by
// opts. Every facet is checked against the same opts snapshot.
func Reconcile(f Filter, opts Options) Filter {
	out := f
	for _, facet := range Facets {
		if f.Value(facet) == "" {
			continue
		}
		if !opts.Contains(facet, f) {
			out = out.Without(facet)
		}
	}
	return out
}

// Resolve computes the options for the requested filter and reconciles the
// selection against them in one step. When a facet was reset the options
// are recomputed for the effective filter; dropping constraints only widens
// menus, so every retained value stays selectable.
func Resolve(records []Record, requested Filter) (Filter, Options) {
	opts := ResolveOptions(records, requested)
	effective := Reconcile(requested, opts)
	if effective != requested {
		opts = ResolveOptions(records, effective)
	}
	return effective, opts
}

func sortedKeys[K cmp.Ordered](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
