// Package core filters, aggregates and resolves facet options over the
// traffic dataset. Everything here is pure and synchronous.
package core

import "slices"

// NoMonth marks a record whose month could not be parsed.
const NoMonth = 0

type (
	// RawRow is one unparsed dataset row keyed by canonical field name.
	RawRow map[string]string

	// Record is a normalized dataset row.
	Record struct {
		Station    string
		Department string
		Year       int
		Month      int // 1-12, or NoMonth
		Traffic    float64
	}
)

// NewRawRow builds a RawRow from a header line and its values. Unknown
// columns are ignored and missing trailing cells read as empty.
func NewRawRow(header, values []string) RawRow {
	row := make(RawRow, len(header))
	for i, h := range header {
		field, ok := CanonicalField(h)
		if !ok {
			continue
		}
		if _, seen := row[field]; seen {
			continue
		}
		if i < len(values) {
			row[field] = values[i]
		} else {
			row[field] = ""
		}
	}
	return row
}

// Get returns the raw text of a field, or "" when absent.
func (r RawRow) Get(field string) string {
	return r[field]
}

// HasMonth reports whether the record carries a valid month.
func (r Record) HasMonth() bool {
	return r.Month != NoMonth
}

// RecordStore holds the normalized dataset. It is built once and never
// modified afterwards, so it is safe to share between goroutines.
type RecordStore struct {
	records []Record
	dropped int
}

// NewRecordStore normalizes rows in order, dropping the ones without a year.
func NewRecordStore(rows []RawRow) *RecordStore {
	s := &RecordStore{records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		rec, ok := NormalizeRow(row)
		if !ok {
			s.dropped++
			continue
		}
		s.records = append(s.records, rec)
	}
	return s
}

// NewRecordStoreFromRecords wraps already normalized records.
func NewRecordStoreFromRecords(records []Record) *RecordStore {
	return &RecordStore{records: slices.Clone(records)}
}

// Records returns a copy of the stored records in ingestion order.
func (s *RecordStore) Records() []Record {
	return slices.Clone(s.records)
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int { return len(s.records) }

// Dropped returns how many rows were rejected during ingestion.
func (s *RecordStore) Dropped() int { return s.dropped }

// Compute builds the dashboard for a requested filter over the whole store.
func (s *RecordStore) Compute(requested Filter, limits Limits) Dashboard {
	return Compute(s.records, requested, limits)
}
