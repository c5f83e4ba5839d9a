package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Bogotá ", "BOGOTA"},
		{"BOGOTA", "BOGOTA"},
		{"bogota", "BOGOTA"},
		{"Nariño", "NARINO"},
		{"Peaje Chusacá", "PEAJE CHUSACA"},
		{"", ""},
		{"   ", ""},
		{"ÁÉÍÓÚ ü", "AEIOU U"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := NormalizeText(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, NormalizeText(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeText_AccentAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeText("Cundinamarca"), NormalizeText("CUNDINAMARCÁ "))
	assert.Equal(t, NormalizeText("Quindío"), NormalizeText("quindio"))
}

func TestCanonicalField(t *testing.T) {
	cases := map[string]string{
		"anio":          FieldYear,
		"Año":           FieldYear,
		"\ufeffanio":    FieldYear,
		"MES":           FieldMonth,
		"Departamento":  FieldDepartment,
		"Estación":      FieldStation,
		"Peaje":         FieldStation,
		"Trafico_Total": FieldTraffic,
		"Tráfico Total": FieldTraffic,
	}
	for header, want := range cases {
		got, ok := CanonicalField(header)
		require.True(t, ok, header)
		assert.Equal(t, want, got, header)
	}

	_, ok := CanonicalField("codigo_estacion")
	assert.False(t, ok)
}

func TestNormalizeRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rec, ok := NormalizeRow(RawRow{
			FieldYear:       "2023",
			FieldMonth:      "4",
			FieldDepartment: " Antioquia",
			FieldStation:    "Peaje Copacabana ",
			FieldTraffic:    "1520.5",
		})
		require.True(t, ok)
		assert.Equal(t, Record{
			Station:    "PEAJE COPACABANA",
			Department: "ANTIOQUIA",
			Year:       2023,
			Month:      4,
			Traffic:    1520.5,
		}, rec)
	})

	t.Run("unparsable year drops the row", func(t *testing.T) {
		for _, year := range []string{"", "  ", "abc", "NaN", "Inf", "2023.5", "0", "-2023"} {
			_, ok := NormalizeRow(RawRow{FieldYear: year, FieldTraffic: "10"})
			assert.False(t, ok, "year %q", year)
		}
	})

	t.Run("integral float year is accepted", func(t *testing.T) {
		rec, ok := NormalizeRow(RawRow{FieldYear: "2024.0"})
		require.True(t, ok)
		assert.Equal(t, 2024, rec.Year)
	})

	t.Run("month fallbacks", func(t *testing.T) {
		cases := map[string]int{
			"1":          1,
			"12":         12,
			"03":         3,
			"7.0":        7,
			"enero":      1,
			"Septiembre": 9,
			"SETIEMBRE":  9,
			"":           NoMonth,
			"13":         NoMonth,
			"0":          NoMonth,
			"x":          NoMonth,
		}
		for in, want := range cases {
			rec, ok := NormalizeRow(RawRow{FieldYear: "2023", FieldMonth: in})
			require.True(t, ok)
			assert.Equal(t, want, rec.Month, "month %q", in)
			assert.Equal(t, want != NoMonth, rec.HasMonth())
		}
	})

	t.Run("traffic fallbacks", func(t *testing.T) {
		cases := map[string]float64{
			"10":    10,
			" 2.5 ": 2.5,
			"":      0,
			"abc":   0,
			"NaN":   0,
			"+Inf":  0,
			"-40":   0,
		}
		for in, want := range cases {
			rec, ok := NormalizeRow(RawRow{FieldYear: "2023", FieldTraffic: in})
			require.True(t, ok)
			assert.Equal(t, want, rec.Traffic, "traffic %q", in)
		}
	})
}

func TestNewRawRow(t *testing.T) {
	header := []string{"estacion", "Año", "mes", "codigo_estacion", "departamento", "trafico_total"}
	row := NewRawRow(header, []string{"Siberia", "2023", "enero", "S1", "Cundinamarca"})

	assert.Equal(t, "Siberia", row.Get(FieldStation))
	assert.Equal(t, "2023", row.Get(FieldYear))
	assert.Equal(t, "enero", row.Get(FieldMonth))
	assert.Equal(t, "Cundinamarca", row.Get(FieldDepartment))
	assert.Equal(t, "", row.Get(FieldTraffic))
	assert.Len(t, row, 5)
}

func TestNewRecordStore(t *testing.T) {
	store := NewRecordStore([]RawRow{
		{FieldYear: "2023", FieldStation: "a", FieldTraffic: "1"},
		{FieldYear: "", FieldStation: "b", FieldTraffic: "2"},
		{FieldYear: "2024", FieldStation: "c", FieldTraffic: "x"},
	})

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.Dropped())

	recs := store.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].Station)
	assert.Equal(t, "C", recs[1].Station)
	assert.Zero(t, recs[1].Traffic)

	recs[0].Station = "mutated"
	assert.Equal(t, "A", store.Records()[0].Station, "store must not expose its backing slice")
}
