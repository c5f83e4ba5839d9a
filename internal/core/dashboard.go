package core

// Limits bounds the rankings of a dashboard.
type Limits struct {
	TopStations    int
	TopDepartments int
	MapDepartments int
}

// DefaultLimits matches the dashboard layout: two top-12 charts and a map
// shaded from the 200 largest departments.
func DefaultLimits() Limits {
	return Limits{TopStations: 12, TopDepartments: 12, MapDepartments: 200}
}

// Dashboard is everything the presentation layer renders for one filter.
type Dashboard struct {
	Requested Filter  `json:"-"`
	Filter    Filter  `json:"-"`
	Options   Options `json:"options"`

	Total       float64 `json:"total"`
	Rows        int     `json:"rows"`
	Departments int     `json:"departments"`
	Stations    int     `json:"stations"`

	Series           []Entry            `json:"series"`
	TopStations      []Entry            `json:"top_stations"`
	TopDepartments   []Entry            `json:"top_departments"`
	DepartmentValues map[string]float64 `json:"department_values"`

	LeadingDepartment *Entry  `json:"leading_department,omitempty"`
	LeadingStation    *Entry  `json:"leading_station,omitempty"`
	DepartmentShare   float64 `json:"department_share"`
	StationShare      float64 `json:"station_share"`
}

// Reset lists the facets that were requested but dropped by reconciliation.
func (d Dashboard) Reset() []Facet {
	var out []Facet
	for _, facet := range Facets {
		if d.Requested.Value(facet) != "" && d.Filter.Value(facet) == "" {
			out = append(out, facet)
		}
	}
	return out
}

// Compute runs one full recomputation cycle: facet options for the
// requested filter, reconciliation of the selection, then every aggregate
// over the records matching the reconciled filter.
func Compute(records []Record, requested Filter, limits Limits) Dashboard {
	effective, opts := Resolve(records, requested)
	subset := Apply(records, effective)

	byDept := GroupSum(subset, DepartmentKey)
	byStation := GroupSum(subset, StationKey)
	total := Total(subset)

	d := Dashboard{
		Requested:      requested,
		Filter:         effective,
		Options:        opts,
		Total:          total,
		Rows:           len(subset),
		Departments:    Distinct(subset, DepartmentKey),
		Stations:       Distinct(subset, StationKey),
		Series:         Series(GroupSum(subset, YearMonthKey)),
		TopStations:    TopN(byStation, limits.TopStations),
		TopDepartments: TopN(byDept, limits.TopDepartments),
	}

	d.DepartmentValues = make(map[string]float64)
	for _, e := range TopN(byDept, limits.MapDepartments) {
		d.DepartmentValues[e.Key] = e.Sum
	}

	if len(d.TopDepartments) > 0 {
		lead := d.TopDepartments[0]
		d.LeadingDepartment = &lead
		d.DepartmentShare = Share(lead.Sum, total)
	}
	if len(d.TopStations) > 0 {
		lead := d.TopStations[0]
		d.LeadingStation = &lead
		d.StationShare = Share(lead.Sum, total)
	}
	return d
}
