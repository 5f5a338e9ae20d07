package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const receiveWaitSeconds = 20

// sqsAPI is the slice of the SQS client this package calls.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

// SQSConsumer implements Consumer against AWS SQS. The queue's own
// redrive policy handles dead-lettering after the max receive count.
type SQSConsumer struct {
	client            sqsAPI
	queueURL          string
	visibilitySeconds int32
}

// NewSQSConsumer constructs an SQS-backed consumer.
func NewSQSConsumer(ctx context.Context, region, queueURL string, visibilitySeconds int) (*SQSConsumer, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("queue url is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SQSConsumer{
		client:            sqs.NewFromConfig(cfg),
		queueURL:          queueURL,
		visibilitySeconds: int32(visibilitySeconds),
	}, nil
}

// Receive long-polls the queue for up to max messages.
func (c *SQSConsumer) Receive(ctx context.Context, max int) ([]Message, error) {
	if max < 1 {
		max = 1
	}
	if max > 10 {
		max = 10
	}
	resp, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     receiveWaitSeconds,
		VisibilityTimeout:   c.visibilitySeconds,
		AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive message: %w", err)
	}

	messages := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			ReceiveCount:  receiveCount(m),
		})
	}
	return messages, nil
}

// Delete acknowledges a message.
func (c *SQSConsumer) Delete(ctx context.Context, msg Message) error {
	if msg.ReceiptHandle == "" {
		return fmt.Errorf("sqs delete message id=%s: missing receipt handle", msg.ID)
	}
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	}); err != nil {
		return fmt.Errorf("sqs delete message id=%s: %w", msg.ID, err)
	}
	return nil
}

// Extend lengthens the visibility timeout on a leased message.
func (c *SQSConsumer) Extend(ctx context.Context, msg Message, d time.Duration) error {
	if _, err := c.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(c.queueURL),
		ReceiptHandle:     aws.String(msg.ReceiptHandle),
		VisibilityTimeout: int32(d / time.Second),
	}); err != nil {
		return fmt.Errorf("sqs change visibility id=%s: %w", msg.ID, err)
	}
	return nil
}

func receiveCount(m sqstypes.Message) int {
	if m.Attributes == nil {
		return 0
	}
	raw := m.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

var _ Consumer = (*SQSConsumer)(nil)
