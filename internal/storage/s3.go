package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Store implements ObjectStore against Amazon S3.
type S3Store struct {
	client *s3.Client
}

// NewS3Store constructs an S3-backed object store.
func NewS3Store(ctx context.Context, region string) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg)}, nil
}

// Get downloads an object's full contents.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, key, notFound(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: read: %w", bucket, key, err)
	}
	return data, nil
}

// Put uploads an object, overwriting any existing object at the key.
func (s *S3Store) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", bucket, key, err)
	}
	return nil
}

// Copy duplicates an object within a bucket.
func (s *S3Store) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	}); err != nil {
		return fmt.Errorf("s3 copy object bucket=%s src=%s dst=%s: %w", bucket, srcKey, dstKey, notFound(err))
	}
	return nil
}

// Delete removes an object.
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", bucket, key, err)
	}
	return nil
}

// notFound maps the service's missing-key error onto ErrNotFound so
// callers can branch with errors.Is.
func notFound(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.ErrorMessage())
	}
	return err
}

var _ ObjectStore = (*S3Store)(nil)
