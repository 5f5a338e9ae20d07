package artifact

import (
	"encoding/csv"
	"reflect"
	"strings"
	"testing"
)

func TestToCSVRoundTrip(t *testing.T) {
	headers := []string{"Name", "Email", "Phone"}
	fields := map[string]string{
		"Name":  "Jane Doe",
		"Email": "a@b.com",
		"Phone": "555-0100",
	}

	out, err := ToCSV(headers, fields)
	if err != nil {
		t.Fatalf("to csv: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header plus one data row", len(records))
	}
	if !reflect.DeepEqual(records[0], headers) {
		t.Fatalf("header row = %v, want %v", records[0], headers)
	}
	want := []string{"Jane Doe", "a@b.com", "555-0100"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("data row = %v, want %v", records[1], want)
	}
}

func TestToCSVUsesCallerColumnOrder(t *testing.T) {
	headers := []string{"Phone", "Name"}
	fields := map[string]string{"Name": "Jane", "Phone": "555"}

	out, err := ToCSV(headers, fields)
	if err != nil {
		t.Fatalf("to csv: %v", err)
	}
	if !strings.HasPrefix(out, "Phone,Name\n555,Jane\n") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestToCSVDefaultsMissingFieldsToEmpty(t *testing.T) {
	headers := []string{"Name", "Email"}
	out, err := ToCSV(headers, map[string]string{"Name": "Jane"})
	if err != nil {
		t.Fatalf("to csv: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if records[1][1] != "" {
		t.Fatalf("missing field = %q, want empty cell", records[1][1])
	}
}

func TestRowsToCSVMultipleRows(t *testing.T) {
	headers := []string{"Vendor", "Date", "Total", "InvoiceNumber"}
	rows := [][]string{
		{"ACME Corp", "2026-01-15", "120.50", "INV-1"},
		{"Globex", "2026-02-01", "75.00", "INV-2"},
	}

	out, err := RowsToCSV(headers, rows)
	if err != nil {
		t.Fatalf("rows to csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want 3", len(records))
	}
	if !reflect.DeepEqual(records[2], rows[1]) {
		t.Fatalf("row = %v, want %v", records[2], rows[1])
	}
}
