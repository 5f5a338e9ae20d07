package queue

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryQueue is an in-memory Consumer with real lease semantics:
// received messages are invisible until their lease expires, expired
// leases make the message deliverable again, and a message received
// more than maxReceive times moves to the dead-letter list. It is the
// test seam for retry behavior, no live queue needed.
type MemoryQueue struct {
	mu         sync.Mutex
	visibility time.Duration
	maxReceive int
	nextID     int
	nextLease  int
	messages   []*memoryMessage
	dead       []Message
	now        func() time.Time
}

type memoryMessage struct {
	id           string
	body         string
	receiveCount int
	leasedUntil  time.Time
	lease        string // current receipt handle, invalidated on expiry
}

// NewMemoryQueue constructs a MemoryQueue. maxReceive <= 0 disables
// dead-lettering.
func NewMemoryQueue(visibility time.Duration, maxReceive int) *MemoryQueue {
	return &MemoryQueue{
		visibility: visibility,
		maxReceive: maxReceive,
		now:        time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (q *MemoryQueue) SetNow(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

// Enqueue adds a message body to the queue.
func (q *MemoryQueue) Enqueue(body string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.messages = append(q.messages, &memoryMessage{
		id:   "m-" + strconv.Itoa(q.nextID),
		body: body,
	})
}

// Receive leases up to max deliverable messages.
func (q *MemoryQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var out []Message
	kept := q.messages[:0]
	for _, m := range q.messages {
		if len(out) >= max || now.Before(m.leasedUntil) {
			kept = append(kept, m)
			continue
		}
		m.receiveCount++
		if q.maxReceive > 0 && m.receiveCount > q.maxReceive {
			q.dead = append(q.dead, Message{ID: m.id, Body: m.body, ReceiveCount: m.receiveCount})
			continue
		}
		q.nextLease++
		m.lease = "lease-" + strconv.Itoa(q.nextLease)
		m.leasedUntil = now.Add(q.visibility)
		kept = append(kept, m)
		out = append(out, Message{
			ID:            m.id,
			Body:          m.body,
			ReceiptHandle: m.lease,
			ReceiveCount:  m.receiveCount,
		})
	}
	q.messages = kept
	return out, nil
}

// Delete acknowledges a message if its lease is still current.
func (q *MemoryQueue) Delete(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.messages {
		if m.id == msg.ID && m.lease == msg.ReceiptHandle {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return nil
		}
	}
	// Expired lease or already-deleted message; mirror the remote
	// queue's tolerance of stale acknowledgments.
	return nil
}

// Extend pushes out the lease expiry for a message still being processed.
func (q *MemoryQueue) Extend(ctx context.Context, msg Message, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range q.messages {
		if m.id == msg.ID && m.lease == msg.ReceiptHandle {
			m.leasedUntil = q.now().Add(d)
			return nil
		}
	}
	return nil
}

// DeadLetters returns messages routed past the max receive count.
func (q *MemoryQueue) DeadLetters() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.dead...)
}

// Len returns the number of queued (live) messages.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

var _ Consumer = (*MemoryQueue)(nil)
