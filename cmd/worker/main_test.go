package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-pipeline/internal/queue"
)

type fakeProcessor struct {
	err    error
	bodies []string
}

func (f *fakeProcessor) ProcessMessage(ctx context.Context, body string) error {
	_ = ctx
	f.bodies = append(f.bodies, body)
	return f.err
}

func TestHandleMessageDeletesOnSuccess(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute, 0)
	q.Enqueue("payload")
	msgs, _ := q.Receive(context.Background(), 1)

	proc := &fakeProcessor{}
	handleMessage(context.Background(), q, proc, msgs[0])

	if len(proc.bodies) != 1 || proc.bodies[0] != "payload" {
		t.Fatalf("processor saw %v", proc.bodies)
	}
	if q.Len() != 0 {
		t.Fatal("message not acknowledged after success")
	}
}

func TestHandleMessageLeavesMessageOnFailure(t *testing.T) {
	q := queue.NewMemoryQueue(time.Minute, 0)
	q.Enqueue("payload")
	msgs, _ := q.Receive(context.Background(), 1)

	proc := &fakeProcessor{err: errors.New("boom")}
	handleMessage(context.Background(), q, proc, msgs[0])

	if q.Len() != 1 {
		t.Fatal("failed message must stay leased for redelivery")
	}
}

func TestFailedMessageEventuallyDeadLetters(t *testing.T) {
	now := time.Unix(1000, 0)
	q := queue.NewMemoryQueue(time.Second, 2)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("poison")
	proc := &fakeProcessor{err: errors.New("boom")}

	for i := 0; i < 2; i++ {
		msgs, _ := q.Receive(context.Background(), 1)
		if len(msgs) != 1 {
			t.Fatalf("delivery %d: got %d messages", i+1, len(msgs))
		}
		handleMessage(context.Background(), q, proc, msgs[0])
		now = now.Add(2 * time.Second)
	}

	if msgs, _ := q.Receive(context.Background(), 1); len(msgs) != 0 {
		t.Fatal("poison message delivered past max receives")
	}
	if dead := q.DeadLetters(); len(dead) != 1 {
		t.Fatalf("dead letters = %d, want 1", len(dead))
	}
}
