// Package queue is the pipeline's buffering-queue seam. Consumers lease
// messages for a visibility window: an unacknowledged message becomes
// deliverable again when its lease expires, and repeated failures route
// it to a dead-letter destination. That redelivery loop is the
// pipeline's only retry mechanism.
package queue

import (
	"context"
	"time"
)

// Message is one leased queue message.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
	ReceiveCount  int
}

// Consumer drains a queue under lease semantics.
type Consumer interface {
	// Receive leases up to max messages for the consumer's visibility
	// window. It may return fewer, or none.
	Receive(ctx context.Context, max int) ([]Message, error)
	// Delete acknowledges a message, removing it permanently.
	Delete(ctx context.Context, msg Message) error
	// Extend lengthens the lease on a message still being processed.
	Extend(ctx context.Context, msg Message, d time.Duration) error
}
