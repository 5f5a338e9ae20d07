// Package expense is the synchronous sibling of the resume pipeline:
// one-shot expense analysis with no job, no notification, and no
// pagination. Receipts land under uploads/ and the CSV lands under
// output/.
package expense

import (
	"context"
	"strings"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/artifact"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/storage"
	"resume-pipeline/internal/telemetry"
)

const (
	uploadsPrefix = "uploads/"
	outputPrefix  = "output/"
	archivePrefix = "archive/"
)

// Headers is the receipt CSV column order.
var Headers = []string{"Vendor", "Date", "Total", "InvoiceNumber"}

// Analyzer runs a one-shot expense analysis against a stored document.
type Analyzer interface {
	AnalyzeExpense(ctx context.Context, source analysis.Location) ([]analysis.ExpenseDocument, error)
}

// Processor handles one receipt document end to end.
type Processor struct {
	Analyzer Analyzer
	Store    storage.ObjectStore
	Metadata metadata.Store
}

// Process analyzes one receipt, writes its CSV, records metadata, and
// archives the source. Errors propagate so the triggering event is
// redelivered.
func (p *Processor) Process(ctx context.Context, bucket, key string) error {
	docs, err := p.Analyzer.AnalyzeExpense(ctx, analysis.Location{Bucket: bucket, Key: key})
	if err != nil {
		return err
	}

	csvBody, err := artifact.RowsToCSV(Headers, summaryRows(docs))
	if err != nil {
		return err
	}

	csvKey := outputKey(key)
	if err := p.Store.Put(ctx, bucket, csvKey, "text/csv", []byte(csvBody)); err != nil {
		return err
	}
	telemetry.Info("expense.csv_written", map[string]any{"bucket": bucket, "key": csvKey})

	if p.Metadata != nil {
		if err := p.Metadata.Upsert(ctx, metadata.Record{
			ID:           csvKey,
			OriginalFile: key,
			Status:       metadata.StatusProcessed,
		}); err != nil {
			return err
		}
	}

	archiveKey := strings.Replace(key, uploadsPrefix, archivePrefix, 1)
	if err := p.Store.Copy(ctx, bucket, key, archiveKey); err != nil {
		return err
	}
	if err := p.Store.Delete(ctx, bucket, key); err != nil {
		return err
	}
	telemetry.Info("expense.archived", map[string]any{"bucket": bucket, "key": archiveKey})
	return nil
}

// summaryRows flattens each analyzed document's typed summary fields
// into one CSV row in Headers order.
func summaryRows(docs []analysis.ExpenseDocument) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		var vendor, date, total, invoiceNum string
		for _, f := range doc.SummaryFields {
			switch f.Type {
			case "VENDOR_NAME":
				vendor = f.Value
			case "INVOICE_RECEIPT_DATE":
				date = f.Value
			case "TOTAL":
				total = f.Value
			case "INVOICE_RECEIPT_ID":
				invoiceNum = f.Value
			}
		}
		rows = append(rows, []string{vendor, date, total, invoiceNum})
	}
	return rows
}

// outputKey keeps the source's directory shape, so a nested upload like
// uploads/2026/receipt.pdf maps to output/2026/receipt.csv.
func outputKey(key string) string {
	out := strings.Replace(key, uploadsPrefix, outputPrefix, 1)
	if base, ok := strings.CutSuffix(out, ".pdf"); ok {
		return base + ".csv"
	}
	return out + ".csv"
}
