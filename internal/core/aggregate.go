package core

import (
	"cmp"
	"fmt"
	"slices"
)

// KeyFunc extracts a grouping key from a record. Returning false skips the
// record for that grouping.
type KeyFunc func(Record) (string, bool)

// Entry is one (key, sum) pair of a grouped aggregate.
type Entry struct {
	Key string  `json:"key"`
	Sum float64 `json:"sum"`
}

// YearMonthKey groups by "YYYY-MM". Records without a month are skipped.
func YearMonthKey(r Record) (string, bool) {
	if !r.HasMonth() {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month), true
}

// DepartmentKey groups by department.
func DepartmentKey(r Record) (string, bool) { return r.Department, true }

// StationKey groups by station.
func StationKey(r Record) (string, bool) { return r.Station, true }

// GroupSum totals traffic per key.
func GroupSum(records []Record, key KeyFunc) map[string]float64 {
	sums := make(map[string]float64)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		sums[k] += r.Traffic
	}
	return sums
}

// Total sums the traffic of records; 0 for none.
func Total(records []Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Traffic
	}
	return total
}

// TopN returns at most n entries ordered by sum descending. Equal sums are
// ordered by key ascending so the result never depends on map iteration.
func TopN(sums map[string]float64, n int) []Entry {
	if n <= 0 || len(sums) == 0 {
		return []Entry{}
	}
	entries := entriesOf(sums)
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Sum, a.Sum); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Series returns every entry ordered by key ascending.
func Series(sums map[string]float64) []Entry {
	entries := entriesOf(sums)
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })
	return entries
}

// Distinct counts the different non-empty keys among records.
func Distinct(records []Record, key KeyFunc) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if k, ok := key(r); ok && k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// Share returns part/total, or 0 when total is 0.
func Share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}

func entriesOf(sums map[string]float64) []Entry {
	entries := make([]Entry, 0, len(sums))
	for k, v := range sums {
		entries = append(entries, Entry{Key: k, Sum: v})
	}
	return entries
}
