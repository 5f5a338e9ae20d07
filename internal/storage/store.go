package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a missing object.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the object-storage operations the pipeline uses.
// Writes are keyed by deterministic paths, so redelivered messages
// overwrite rather than duplicate.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key, contentType string, body []byte) error
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
	Delete(ctx context.Context, bucket, key string) error
}
