package sources

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafico/internal/core"
)

const sampleCSV = "\ufeffestacion,anio,mes,codigo_estacion,departamento,trafico_total\n" +
	"Siberia,2023,1,S1,Cundinamarca,300\n" +
	"\n" +
	"Copacabana,2023,,S2,Antioquia,\n" +
	"\"Peaje, Norte\",2024,2,S3,Boyacá,55.5\n"

func TestParseCSV(t *testing.T) {
	rows, skipped, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 3)

	assert.Equal(t, core.RawRow{
		core.FieldStation:    "Siberia",
		core.FieldYear:       "2023",
		core.FieldMonth:      "1",
		core.FieldDepartment: "Cundinamarca",
		core.FieldTraffic:    "300",
	}, rows[0])
	assert.Equal(t, "", rows[1].Get(core.FieldMonth))
	assert.Equal(t, "Peaje, Norte", rows[2].Get(core.FieldStation))

	store := core.NewRecordStore(rows)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 355.5, core.Total(store.Records()))
}

func TestParseCSV_SemicolonDelimiter(t *testing.T) {
	data := "Año;Mes;Departamento;Estación;Tráfico Total\n2022;diciembre;Nariño;Pasto;10\n"

	rows, _, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec, ok := core.NormalizeRow(rows[0])
	require.True(t, ok)
	assert.Equal(t, core.Record{Station: "PASTO", Department: "NARINO", Year: 2022, Month: 12, Traffic: 10}, rec)
}

func TestParseCSV_MissingYearColumn(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("estacion,mes,trafico_total\nA,1,2\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, _, err = ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseCSV_ShortRows(t *testing.T) {
	rows, _, err := ParseCSV(strings.NewReader("anio,estacion,trafico_total\n2023\n2024,B,7,extra\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0].Get(core.FieldStation))
	assert.Equal(t, "7", rows[1].Get(core.FieldTraffic))
}

func TestRowsFromMatrix(t *testing.T) {
	values := [][]interface{}{
		{"Estacion", "Anio", "Mes", "Departamento", "Trafico_Total"},
		{"Siberia", 2023.0, 1.0, "Cundinamarca", 300.5},
		{},
		{"Tuta", "2024", nil, "Boyaca"},
	}

	rows, err := RowsFromMatrix(values)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2023", rows[0].Get(core.FieldYear))
	assert.Equal(t, "300.5", rows[0].Get(core.FieldTraffic))
	assert.Equal(t, "", rows[1].Get(core.FieldMonth))
	assert.Equal(t, "", rows[1].Get(core.FieldTraffic))

	_, err = RowsFromMatrix(nil)
	assert.ErrorIs(t, err, ErrMissingColumn)
	_, err = RowsFromMatrix([][]interface{}{{"estacion"}})
	assert.ErrorIs(t, err, ErrMissingColumn)
}
