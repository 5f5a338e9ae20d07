package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"resume-pipeline/internal/analysis"
)

type startRecorder struct {
	requests []analysis.StartRequest
	err      error
}

func (r *startRecorder) StartAnalysis(ctx context.Context, req analysis.StartRequest) (string, error) {
	_ = ctx
	r.requests = append(r.requests, req)
	if r.err != nil {
		return "", r.err
	}
	return "job-1", nil
}

func (r *startRecorder) GetAnalysisPage(ctx context.Context, jobID, nextToken string) (analysis.Page, error) {
	_ = ctx
	_ = jobID
	_ = nextToken
	return analysis.Page{}, errors.New("not implemented")
}

func s3Event(keys ...string) events.S3Event {
	var event events.S3Event
	for _, key := range keys {
		event.Records = append(event.Records, events.S3EventRecord{
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "resume-bucket"},
				Object: events.S3Object{Key: key},
			},
		})
	}
	return event
}

func TestHandleEventStartsOneJobPerDocument(t *testing.T) {
	recorder := &startRecorder{}
	sub := New(recorder, "arn:topic", "arn:role")

	if err := sub.HandleEvent(context.Background(), s3Event("incoming/a.pdf", "incoming/b.pdf")); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(recorder.requests) != 2 {
		t.Fatalf("got %d jobs, want 2", len(recorder.requests))
	}
	req := recorder.requests[0]
	if req.Source.Bucket != "resume-bucket" || req.Source.Key != "incoming/a.pdf" {
		t.Fatalf("unexpected source: %+v", req.Source)
	}
	if req.TopicARN != "arn:topic" || req.RoleARN != "arn:role" {
		t.Fatalf("notification channel not wired: %+v", req)
	}
	if len(req.Queries) != 7 {
		t.Fatalf("got %d queries, want the fixed resume set of 7", len(req.Queries))
	}
}

func TestHandleEventDecodesObjectKey(t *testing.T) {
	recorder := &startRecorder{}
	sub := New(recorder, "arn:topic", "arn:role")

	if err := sub.HandleEvent(context.Background(), s3Event("incoming/my+resume%282%29.pdf")); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if got := recorder.requests[0].Source.Key; got != "incoming/my resume(2).pdf" {
		t.Fatalf("decoded key = %q", got)
	}
}

func TestHandleEventPropagatesStartFailure(t *testing.T) {
	recorder := &startRecorder{err: &analysis.ServiceError{Op: "start analysis", Err: errors.New("denied")}}
	sub := New(recorder, "arn:topic", "arn:role")

	err := sub.HandleEvent(context.Background(), s3Event("incoming/a.pdf"))
	if err == nil {
		t.Fatal("expected start failure to propagate for event redelivery")
	}
	var svcErr *analysis.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
}
