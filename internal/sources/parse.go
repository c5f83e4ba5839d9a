package sources

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"trafico/internal/core"
)

// ParseCSV reads a header line followed by data rows. The delimiter is
// sniffed from the header (comma or semicolon). Rows that are not valid CSV
// are skipped; their count is returned alongside the rows.
func ParseCSV(r io.Reader) ([]core.RawRow, int, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("%w: empty dataset", ErrMissingColumn)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, 0, err
	}

	var (
		rows    []core.RawRow
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read csv row: %w", err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, core.NewRawRow(header, record))
	}
	return rows, skipped, nil
}

// RowsFromMatrix converts a values matrix, as returned by spreadsheet APIs,
// into raw rows. The first row is the header.
func RowsFromMatrix(values [][]interface{}) ([]core.RawRow, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrMissingColumn)
	}
	header := toStrings(values[0])
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	rows := make([]core.RawRow, 0, len(values)-1)
	for _, v := range values[1:] {
		record := toStrings(v)
		if blank(record) {
			continue
		}
		rows = append(rows, core.NewRawRow(header, record))
	}
	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		if field, ok := core.CanonicalField(h); ok {
			present[field] = true
		}
	}
	var missing []string
	for _, f := range RequiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s; got headers=%v", ErrMissingColumn, strings.Join(missing, ","), header)
	}
	return nil
}

func sniffDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
