package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-submitter

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/config"
	"resume-pipeline/internal/submit"
)

var (
	initOnce  sync.Once
	initErr   error
	submitter *submit.Submitter
)

func initApp() {
	cfg := config.Load()
	client, err := analysis.NewTextractClient(context.Background(), cfg.AWSRegion)
	if err != nil {
		initErr = err
		return
	}
	submitter = submit.New(client, cfg.SNSTopicARN, cfg.SNSRoleARN)
}

// handler starts one analysis job per created object. Returning an
// error keeps the triggering event undelivered so the platform retries.
func handler(ctx context.Context, event events.S3Event) error {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("init error: %v", initErr)
		return initErr
	}
	return submitter.HandleEvent(ctx, event)
}

func main() {
	lambda.Start(handler)
}
