package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory ObjectStore for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte // "bucket/key" -> body
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// Get returns a stored object's contents.
func (m *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.data[objectKey(bucket, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

// Put stores an object, overwriting any existing one.
func (m *MemoryStore) Put(ctx context.Context, bucket, key, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_ = contentType
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(body))
	copy(stored, body)
	m.data[objectKey(bucket, key)] = stored
	return nil
}

// Copy duplicates an object within a bucket.
func (m *MemoryStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.data[objectKey(bucket, srcKey)]
	if !ok {
		return ErrNotFound
	}
	stored := make([]byte, len(body))
	copy(stored, body)
	m.data[objectKey(bucket, dstKey)] = stored
	return nil
}

// Delete removes an object. Deleting a missing object is a no-op,
// matching S3 semantics.
func (m *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, objectKey(bucket, key))
	return nil
}

// Exists reports whether an object is present, for tests.
func (m *MemoryStore) Exists(bucket, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[objectKey(bucket, key)]
	return ok
}

var _ ObjectStore = (*MemoryStore)(nil)
