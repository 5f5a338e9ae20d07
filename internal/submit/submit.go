// Package submit reacts to new-document events and starts one analysis
// job per document. It keeps no local state: job correlation rides the
// notification channel back through the queue.
package submit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/metrics"
	"resume-pipeline/internal/telemetry"
)

// Submitter starts analysis jobs for incoming documents.
type Submitter struct {
	Analysis analysis.Client
	Queries  []analysis.Query
	TopicARN string
	RoleARN  string
}

// New constructs a Submitter with the resume query set.
func New(client analysis.Client, topicARN, roleARN string) *Submitter {
	return &Submitter{
		Analysis: client,
		Queries:  analysis.ResumeQueries(),
		TopicARN: topicARN,
		RoleARN:  roleARN,
	}
}

// HandleEvent starts one analysis job per referenced document. Any
// StartAnalysis failure propagates so the invoker does not consume the
// triggering event and redelivers it; a duplicate started job on retry
// is acceptable.
func (s *Submitter) HandleEvent(ctx context.Context, event events.S3Event) error {
	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key, err := DecodeKey(record.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("decode object key %q: %w", record.S3.Object.Key, err)
		}

		jobID, err := s.Analysis.StartAnalysis(ctx, analysis.StartRequest{
			Source:   analysis.Location{Bucket: bucket, Key: key},
			Queries:  s.Queries,
			TopicARN: s.TopicARN,
			RoleARN:  s.RoleARN,
		})
		if err != nil {
			telemetry.Error("submit.start_failed", map[string]any{
				"bucket": bucket,
				"key":    key,
				"error":  err.Error(),
			})
			return err
		}

		metrics.IncJobsSubmitted()
		telemetry.Info("submit.job_started", map[string]any{
			"bucket": bucket,
			"key":    key,
			"job_id": jobID,
		})
	}
	return nil
}

// DecodeKey undoes the percent-encoding applied to object keys in
// storage events, treating "+" as a space.
func DecodeKey(raw string) (string, error) {
	return url.QueryUnescape(raw)
}
