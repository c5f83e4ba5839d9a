package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupSum(t *testing.T) {
	recs := sampleRecords()

	assert.Equal(t, map[string]float64{
		"ANTIOQUIA":    210,
		"CUNDINAMARCA": 650,
		"BOYACA":       55,
	}, GroupSum(recs, DepartmentKey))

	assert.Equal(t, map[string]float64{
		"2022-12": 120,
		"2023-01": 390,
		"2023-02": 310,
		"2024-02": 55,
	}, GroupSum(recs, YearMonthKey), "records without a month are left out of the series only")

	assert.Empty(t, GroupSum(nil, StationKey))
}

func TestTotalMatchesGroupings(t *testing.T) {
	recs := sampleRecords()
	total := Total(recs)
	assert.Equal(t, 915.0, total)

	for name, key := range map[string]KeyFunc{"department": DepartmentKey, "station": StationKey} {
		var sum float64
		for _, v := range GroupSum(recs, key) {
			sum += v
		}
		assert.Equal(t, total, sum, name)
	}

	var series float64
	for _, v := range GroupSum(recs, YearMonthKey) {
		series += v
	}
	assert.Equal(t, total-40, series)

	assert.Zero(t, Total(nil))
}

func TestTopN(t *testing.T) {
	sums := map[string]float64{"D": 5, "B": 10, "A": 10, "C": 1, "E": 10}

	assert.Equal(t, []Entry{{"A", 10}, {"B", 10}, {"E", 10}, {"D", 5}, {"C", 1}}, TopN(sums, 10))
	assert.Equal(t, []Entry{{"A", 10}, {"B", 10}}, TopN(sums, 2))
	assert.Empty(t, TopN(sums, 0))
	assert.Empty(t, TopN(nil, 3))

	for i := 0; i < 20; i++ {
		assert.Equal(t, TopN(sums, 3), TopN(sums, 3), "ranking must be deterministic")
	}
}

func TestTopN_SubsetOfInput(t *testing.T) {
	sums := GroupSum(sampleRecords(), StationKey)
	top := TopN(sums, 3)

	assert.Len(t, top, 3)
	for i, e := range top {
		assert.Equal(t, sums[e.Key], e.Sum)
		if i > 0 {
			assert.GreaterOrEqual(t, top[i-1].Sum, e.Sum)
		}
	}
}

func TestSeries(t *testing.T) {
	got := Series(map[string]float64{"2024-01": 5, "2023-02": 30, "2023-01": 10})
	assert.Equal(t, []Entry{{"2023-01", 10}, {"2023-02", 30}, {"2024-01", 5}}, got)
	assert.Empty(t, Series(nil))
}

func TestDistinctAndShare(t *testing.T) {
	recs := append(sampleRecords(), Record{Year: 2023, Department: "", Station: ""})
	assert.Equal(t, 3, Distinct(recs, DepartmentKey))
	assert.Equal(t, 4, Distinct(recs, StationKey))

	assert.Equal(t, 0.5, Share(5, 10))
	assert.Zero(t, Share(5, 0))
}

func TestYearMonthKeyPadding(t *testing.T) {
	k, ok := YearMonthKey(Record{Year: 2023, Month: 3})
	assert.True(t, ok)
	assert.Equal(t, "2023-03", k)

	_, ok = YearMonthKey(Record{Year: 2023})
	assert.False(t, ok)
}
