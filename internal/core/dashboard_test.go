package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRecords() []Record {
	return []Record{
		{Year: 2023, Month: 1, Department: "A", Station: "X", Traffic: 10},
		{Year: 2023, Month: 2, Department: "B", Station: "Y", Traffic: 30},
		{Year: 2024, Month: 1, Department: "A", Station: "X", Traffic: 5},
	}
}

func TestCompute_NoFilter(t *testing.T) {
	d := Compute(scenarioRecords(), Filter{}, DefaultLimits())

	assert.Equal(t, 45.0, d.Total)
	assert.Equal(t, 3, d.Rows)
	assert.Equal(t, 2, d.Departments)
	assert.Equal(t, 2, d.Stations)
	assert.Equal(t, []Entry{{"B", 30}, {"A", 15}}, d.TopDepartments)
	assert.Equal(t, []Entry{{"Y", 30}, {"X", 15}}, d.TopStations)
	assert.Equal(t, []Entry{{"2023-01", 10}, {"2023-02", 30}, {"2024-01", 5}}, d.Series)
	assert.Equal(t, map[string]float64{"A": 15, "B": 30}, d.DepartmentValues)

	require.NotNil(t, d.LeadingDepartment)
	assert.Equal(t, "B", d.LeadingDepartment.Key)
	assert.InDelta(t, 30.0/45.0, d.DepartmentShare, 1e-9)
	require.NotNil(t, d.LeadingStation)
	assert.Equal(t, "Y", d.LeadingStation.Key)
	assert.InDelta(t, 30.0/45.0, d.StationShare, 1e-9)
}

func TestCompute_YearFilter(t *testing.T) {
	d := Compute(scenarioRecords(), Filter{Year: 2023}, DefaultLimits())

	assert.Equal(t, Filter{Year: 2023}, d.Filter)
	assert.Equal(t, 40.0, d.Total)
	assert.Equal(t, 2, d.Rows)
	assert.Equal(t, []Entry{{"B", 30}, {"A", 10}}, d.TopDepartments)
	assert.Equal(t, []int{2023, 2024}, d.Options.Years)
	assert.Equal(t, []string{"A", "B"}, d.Options.Departments)
	assert.Equal(t, []int{1, 2}, d.Options.Months)
	assert.Equal(t, []string{"X", "Y"}, d.Options.Stations)
	assert.Empty(t, d.Reset())
}

func TestCompute_EmptyDataset(t *testing.T) {
	for _, f := range []Filter{{}, {Year: 2023, Station: "X"}} {
		d := Compute(nil, f, DefaultLimits())

		assert.Zero(t, d.Total)
		assert.Zero(t, d.Rows)
		assert.Zero(t, d.Departments)
		assert.Zero(t, d.Stations)
		assert.Empty(t, d.Series)
		assert.Empty(t, d.TopStations)
		assert.Empty(t, d.TopDepartments)
		assert.Empty(t, d.DepartmentValues)
		assert.Nil(t, d.LeadingDepartment)
		assert.Nil(t, d.LeadingStation)
		assert.Zero(t, d.DepartmentShare)
		assert.Zero(t, d.StationShare)
		assert.Empty(t, d.Options.Years)
		assert.True(t, d.Filter.IsEmpty(), "selections must reset when nothing is selectable")
	}
}

func TestCompute_ZeroTrafficShares(t *testing.T) {
	recs := []Record{{Year: 2023, Month: 1, Department: "A", Station: "X"}}
	d := Compute(recs, Filter{}, DefaultLimits())

	require.NotNil(t, d.LeadingDepartment)
	assert.Zero(t, d.Total)
	assert.Zero(t, d.DepartmentShare)
	assert.Zero(t, d.StationShare)
}

func TestCompute_ResetsStaleSelection(t *testing.T) {
	recs := append(scenarioRecords(), Record{Year: 2024, Month: 3, Department: "C", Station: "Z", Traffic: 7})

	// C only exists in 2024, so year=2023 and department=C exclude each other.
	d := Compute(recs, Filter{Year: 2023, Department: "C"}, DefaultLimits())

	assert.True(t, d.Filter.IsEmpty())
	assert.ElementsMatch(t, []Facet{FacetYear, FacetDepartment}, d.Reset())
	assert.Equal(t, 52.0, d.Total)
	assert.Equal(t, []int{2023, 2024}, d.Options.Years)
	assert.Equal(t, []string{"A", "B", "C"}, d.Options.Departments)
}

func TestCompute_MapDepartmentsBounded(t *testing.T) {
	recs := []Record{
		{Year: 2023, Department: "A", Traffic: 1},
		{Year: 2023, Department: "B", Traffic: 2},
		{Year: 2023, Department: "C", Traffic: 3},
	}
	d := Compute(recs, Filter{}, Limits{TopStations: 1, TopDepartments: 1, MapDepartments: 2})

	assert.Equal(t, []Entry{{"C", 3}}, d.TopDepartments)
	assert.Equal(t, map[string]float64{"C": 3, "B": 2}, d.DepartmentValues)
}

func TestController(t *testing.T) {
	store := NewRecordStoreFromRecords(scenarioRecords())
	c := NewController(store, DefaultLimits())

	assert.Equal(t, 45.0, c.Dashboard().Total)

	d, err := c.Select(FacetYear, "2023")
	require.NoError(t, err)
	assert.Equal(t, 40.0, d.Total)
	assert.Equal(t, Filter{Year: 2023}, c.Filter())

	d, err = c.Select(FacetDepartment, " a ")
	require.NoError(t, err)
	assert.Equal(t, Filter{Year: 2023, Department: "A"}, d.Filter)
	assert.Equal(t, 10.0, d.Total)
	assert.Equal(t, []int{2023, 2024}, d.Options.Years)
	assert.Equal(t, []string{"X"}, d.Options.Stations)

	_, err = c.Select(FacetMonth, "enero")
	require.Error(t, err)
	assert.Equal(t, Filter{Year: 2023, Department: "A"}, c.Filter(), "a rejected change keeps the selection")

	d = c.Clear(FacetYear)
	assert.Equal(t, Filter{Department: "A"}, d.Filter)
	assert.Equal(t, 15.0, d.Total)

	d, err = c.Select(FacetStation, "Y")
	require.NoError(t, err)
	assert.Equal(t, Filter{}, d.Filter, "station Y and department A exclude each other")
	assert.Equal(t, 45.0, d.Total)
}
