package expense

import (
	"context"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/storage"
)

const testBucket = "receipts-bucket"

type fakeAnalyzer struct {
	docs []analysis.ExpenseDocument
	err  error
}

func (f *fakeAnalyzer) AnalyzeExpense(ctx context.Context, source analysis.Location) ([]analysis.ExpenseDocument, error) {
	_ = ctx
	_ = source
	return f.docs, f.err
}

func receiptDoc() analysis.ExpenseDocument {
	return analysis.ExpenseDocument{SummaryFields: []analysis.ExpenseField{
		{Type: "VENDOR_NAME", Value: "ACME Corp"},
		{Type: "INVOICE_RECEIPT_DATE", Value: "2026-01-15"},
		{Type: "TOTAL", Value: "120.50"},
		{Type: "INVOICE_RECEIPT_ID", Value: "INV-1"},
		{Type: "TAX", Value: "ignored"},
	}}
}

func TestProcessWritesCSVAndArchives(t *testing.T) {
	store := storage.NewMemoryStore()
	meta := metadata.NewMemoryStore()
	if err := store.Put(context.Background(), testBucket, "uploads/receipt.pdf", "application/pdf", []byte("%PDF")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	proc := &Processor{Analyzer: &fakeAnalyzer{docs: []analysis.ExpenseDocument{receiptDoc()}}, Store: store, Metadata: meta}

	if err := proc.Process(context.Background(), testBucket, "uploads/receipt.pdf"); err != nil {
		t.Fatalf("process: %v", err)
	}

	body, err := store.Get(context.Background(), testBucket, "output/receipt.csv")
	if err != nil {
		t.Fatalf("csv missing: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if !reflect.DeepEqual(records[0], Headers) {
		t.Fatalf("header = %v", records[0])
	}
	want := []string{"ACME Corp", "2026-01-15", "120.50", "INV-1"}
	if !reflect.DeepEqual(records[1], want) {
		t.Fatalf("row = %v, want %v", records[1], want)
	}

	if !store.Exists(testBucket, "archive/receipt.pdf") {
		t.Fatal("source was not archived")
	}
	if store.Exists(testBucket, "uploads/receipt.pdf") {
		t.Fatal("source still in uploads")
	}
	if rec, ok := meta.Get("output/receipt.csv"); !ok || rec.Status != metadata.StatusProcessed {
		t.Fatalf("metadata record = %+v ok=%v", rec, ok)
	}
}

func TestProcessOneRowPerDocument(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Put(context.Background(), testBucket, "uploads/multi.pdf", "application/pdf", []byte("%PDF")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	proc := &Processor{
		Analyzer: &fakeAnalyzer{docs: []analysis.ExpenseDocument{receiptDoc(), receiptDoc()}},
		Store:    store,
	}

	if err := proc.Process(context.Background(), testBucket, "uploads/multi.pdf"); err != nil {
		t.Fatalf("process: %v", err)
	}
	body, _ := store.Get(context.Background(), testBucket, "output/multi.csv")
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header plus two", len(records))
	}
}

func TestProcessPropagatesAnalyzerFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	proc := &Processor{
		Analyzer: &fakeAnalyzer{err: &analysis.ServiceError{Op: "analyze expense", Err: errors.New("denied")}},
		Store:    store,
	}

	err := proc.Process(context.Background(), testBucket, "uploads/receipt.pdf")
	if err == nil {
		t.Fatal("expected analyzer failure to propagate")
	}
	if store.Exists(testBucket, "output/receipt.csv") {
		t.Fatal("csv written despite failed analysis")
	}
}
