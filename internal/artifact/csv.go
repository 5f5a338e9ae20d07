// Package artifact serializes extracted fields into the CSV files the
// pipeline publishes alongside the archived source documents.
package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// ToCSV renders one record as a header row of field names followed by a
// single data row of values. Column order is the caller's header order,
// never the map's iteration order. Missing fields render as empty cells.
func ToCSV(headers []string, fields map[string]string) (string, error) {
	row := make([]string, 0, len(headers))
	for _, h := range headers {
		row = append(row, fields[h])
	}
	return render(headers, [][]string{row})
}

// RowsToCSV renders a header row followed by the given data rows, used
// by the multi-document expense output.
func RowsToCSV(headers []string, rows [][]string) (string, error) {
	return render(headers, rows)
}

func render(headers []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
