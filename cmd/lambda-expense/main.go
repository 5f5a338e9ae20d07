package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-expense

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/config"
	"resume-pipeline/internal/expense"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/storage"
	"resume-pipeline/internal/submit"
	"resume-pipeline/internal/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	proc     *expense.Processor
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
	proc = &expense.Processor{Analyzer: client, Store: store}
	if cfg.TableName != "" {
		meta, err := metadata.NewDynamoStore(ctx, cfg.AWSRegion, cfg.TableName)
		if err != nil {
			initErr = err
			return
		}
		proc.Metadata = meta
	}
}

// handler runs the synchronous receipt path for each created object.
func handler(ctx context.Context, event events.S3Event) error {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("init error: %v", initErr)
		return initErr
	}

	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key, err := submit.DecodeKey(record.S3.Object.Key)
		if err != nil {
			telemetry.Error("expense.bad_key", map[string]any{
				"key":   record.S3.Object.Key,
				"error": err.Error(),
			})
			continue
		}
		if err := proc.Process(ctx, bucket, key); err != nil {
			telemetry.Error("expense.process_failed", map[string]any{
				"bucket": bucket,
				"key":    key,
				"error":  err.Error(),
			})
			return err
		}
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
