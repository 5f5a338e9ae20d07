package metadata

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoStore implements Store against a DynamoDB table keyed by ResumeId.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoStore constructs a DynamoDB-backed metadata store.
func NewDynamoStore(ctx context.Context, region, table string) (*DynamoStore, error) {
	if table == "" {
		return nil, fmt.Errorf("metadata table name is required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &DynamoStore{client: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// Upsert writes the record, replacing any item with the same key.
func (s *DynamoStore) Upsert(ctx context.Context, rec Record) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal metadata record id=%s: %w", rec.ID, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb put item table=%s id=%s: %w", s.table, rec.ID, err)
	}
	return nil
}

var _ Store = (*DynamoStore)(nil)
