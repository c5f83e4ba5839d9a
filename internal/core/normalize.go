package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Raw field names as exported by the dataset pipeline.
const (
	FieldYear       = "anio"
	FieldMonth      = "mes"
	FieldDepartment = "departamento"
	FieldStation    = "estacion"
	FieldTraffic    = "trafico_total"
)

// headerAliases maps canonical header spellings to raw field names.
// Keys are already passed through canonicalHeader.
var headerAliases = map[string]string{
	"anio":          FieldYear,
	"ano":           FieldYear,
	"year":          FieldYear,
	"mes":           FieldMonth,
	"month":         FieldMonth,
	"departamento":  FieldDepartment,
	"depto":         FieldDepartment,
	"department":    FieldDepartment,
	"estacion":      FieldStation,
	"peaje":         FieldStation,
	"station":       FieldStation,
	"trafico_total": FieldTraffic,
	"total_trafico": FieldTraffic,
	"traffic":       FieldTraffic,
}

var monthNames = map[string]int{
	"ENERO":      1,
	"FEBRERO":    2,
	"MARZO":      3,
	"ABRIL":      4,
	"MAYO":       5,
	"JUNIO":      6,
	"JULIO":      7,
	"AGOSTO":     8,
	"SEPTIEMBRE": 9,
	"SETIEMBRE":  9,
	"OCTUBRE":    10,
	"NOVIEMBRE":  11,
	"DICIEMBRE":  12,
}

func stripMarks() transform.Transformer {
	// Transformers keep internal state, so each call gets its own chain.
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// NormalizeText canonicalizes a text field: accents are stripped, the result
// is uppercased and surrounding whitespace removed. It is idempotent.
func NormalizeText(s string) string {
	out, _, err := transform.String(stripMarks(), s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToUpper(out))
}

// CanonicalField resolves a header cell to one of the Field* names.
// The second result is false for columns the dashboard does not use.
func CanonicalField(header string) (string, bool) {
	f, ok := headerAliases[canonicalHeader(header)]
	return f, ok
}

func canonicalHeader(h string) string {
	h = strings.ToLower(NormalizeText(strings.TrimPrefix(h, "\ufeff")))
	return strings.ReplaceAll(h, " ", "_")
}

// NormalizeRow turns a raw row into a Record. It reports false when the row
// has no usable year; every other field falls back to a default instead.
func NormalizeRow(row RawRow) (Record, bool) {
	year, ok := parseInt(row.Get(FieldYear))
	if !ok || year <= 0 {
		return Record{}, false
	}
	return Record{
		Station:    NormalizeText(row.Get(FieldStation)),
		Department: NormalizeText(row.Get(FieldDepartment)),
		Year:       year,
		Month:      parseMonth(row.Get(FieldMonth)),
		Traffic:    parseTraffic(row.Get(FieldTraffic)),
	}, true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func parseMonth(s string) int {
	if m, ok := parseInt(s); ok {
		if m >= 1 && m <= 12 {
			return m
		}
		return NoMonth
	}
	if m, ok := monthNames[NormalizeText(s)]; ok {
		return m
	}
	return NoMonth
}

func parseTraffic(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
