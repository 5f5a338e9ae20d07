package metadata

import "context"

// StatusProcessed is the terminal status written for successful jobs.
const StatusProcessed = "PROCESSED"

// Record is one processed document's metadata, keyed by the CSV artifact
// path so reprocessing the same document overwrites instead of duplicating.
type Record struct {
	ID             string            `dynamodbav:"ResumeId" json:"resumeId"`
	OriginalFile   string            `dynamodbav:"OriginalFile" json:"originalFile"`
	Status         string            `dynamodbav:"Status" json:"status"`
	CompletionTime string            `dynamodbav:"CompletionTime" json:"completionTime"`
	JobID          string            `dynamodbav:"JobId" json:"jobId"`
	ExtractedData  map[string]string `dynamodbav:"ExtractedData" json:"extractedData"`
}

// Store persists processed-document metadata.
type Store interface {
	// Upsert writes a record, overwriting any record with the same ID.
	Upsert(ctx context.Context, rec Record) error
}
