package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-processor

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/config"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/metrics"
	"resume-pipeline/internal/pipeline"
	"resume-pipeline/internal/storage"
)

var (
	initOnce sync.Once
	initErr  error
	proc     *pipeline.Processor
)

func initApp() {
	ctx := context.Background()
	cfg := config.Load()

	client, err := analysis.NewTextractClient(ctx, cfg.AWSRegion)
	if err != nil {
		initErr = err
		return
	}
	store, err := storage.NewS3Store(ctx, cfg.AWSRegion)
	if err != nil {
		initErr = err
		return
	}
	meta, err := metadata.NewDynamoStore(ctx, cfg.AWSRegion, cfg.TableName)
	if err != nil {
		initErr = err
		return
	}
	proc = pipeline.NewProcessor(client, store, meta, cfg.MalformedPolicy)
}

// handler drains one batch of completion notifications. Messages whose
// processing fails are reported as batch item failures so the queue
// redelivers only those; a message the processor consumed (including a
// dropped malformed one) is acknowledged by omission.
func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("init error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncMessagesReceived()
		if err := proc.ProcessMessage(ctx, record.Body); err != nil {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}
