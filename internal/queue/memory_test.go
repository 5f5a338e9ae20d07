package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueueLeaseHidesMessage(t *testing.T) {
	q := NewMemoryQueue(time.Minute, 0)
	q.Enqueue("one")

	first, err := q.Receive(context.Background(), 10)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(first) != 1 || first[0].Body != "one" {
		t.Fatalf("got %+v, want the enqueued message", first)
	}

	second, err := q.Receive(context.Background(), 10)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("leased message was redelivered: %+v", second)
	}
}

func TestMemoryQueueRedeliversAfterLeaseExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	q := NewMemoryQueue(30*time.Second, 0)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("one")

	first, _ := q.Receive(context.Background(), 10)
	if len(first) != 1 || first[0].ReceiveCount != 1 {
		t.Fatalf("unexpected first delivery: %+v", first)
	}

	now = now.Add(31 * time.Second)
	second, _ := q.Receive(context.Background(), 10)
	if len(second) != 1 {
		t.Fatal("expected redelivery after lease expiry")
	}
	if second[0].ReceiveCount != 2 {
		t.Fatalf("receive count = %d, want 2", second[0].ReceiveCount)
	}
	if second[0].ReceiptHandle == first[0].ReceiptHandle {
		t.Fatal("redelivery reused the expired lease handle")
	}
}

func TestMemoryQueueDeleteAcknowledges(t *testing.T) {
	now := time.Unix(1000, 0)
	q := NewMemoryQueue(30*time.Second, 0)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("one")

	msgs, _ := q.Receive(context.Background(), 10)
	if err := q.Delete(context.Background(), msgs[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	now = now.Add(time.Hour)
	again, _ := q.Receive(context.Background(), 10)
	if len(again) != 0 {
		t.Fatal("acknowledged message was redelivered")
	}
	if q.Len() != 0 {
		t.Fatalf("queue length = %d, want 0", q.Len())
	}
}

func TestMemoryQueueStaleDeleteIsIgnored(t *testing.T) {
	now := time.Unix(1000, 0)
	q := NewMemoryQueue(30*time.Second, 0)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("one")

	first, _ := q.Receive(context.Background(), 10)
	now = now.Add(time.Minute)
	second, _ := q.Receive(context.Background(), 10)

	// The first lease expired; deleting with its handle must not remove
	// the message out from under the second consumer.
	if err := q.Delete(context.Background(), first[0]); err != nil {
		t.Fatalf("stale delete: %v", err)
	}
	if q.Len() != 1 {
		t.Fatal("stale lease deleted a re-leased message")
	}
	if err := q.Delete(context.Background(), second[0]); err != nil {
		t.Fatalf("current delete: %v", err)
	}
	if q.Len() != 0 {
		t.Fatal("current lease failed to delete")
	}
}

func TestMemoryQueueExtendKeepsLease(t *testing.T) {
	now := time.Unix(1000, 0)
	q := NewMemoryQueue(30*time.Second, 0)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("one")

	msgs, _ := q.Receive(context.Background(), 10)
	if err := q.Extend(context.Background(), msgs[0], 5*time.Minute); err != nil {
		t.Fatalf("extend: %v", err)
	}

	now = now.Add(2 * time.Minute)
	again, _ := q.Receive(context.Background(), 10)
	if len(again) != 0 {
		t.Fatal("extended lease was redelivered early")
	}
}

func TestMemoryQueueDeadLettersAfterMaxReceives(t *testing.T) {
	now := time.Unix(1000, 0)
	q := NewMemoryQueue(time.Second, 3)
	q.SetNow(func() time.Time { return now })
	q.Enqueue("poison")

	for i := 0; i < 3; i++ {
		msgs, _ := q.Receive(context.Background(), 10)
		if len(msgs) != 1 {
			t.Fatalf("delivery %d: got %d messages", i+1, len(msgs))
		}
		now = now.Add(2 * time.Second)
	}

	msgs, _ := q.Receive(context.Background(), 10)
	if len(msgs) != 0 {
		t.Fatal("message delivered past the max receive count")
	}
	dead := q.DeadLetters()
	if len(dead) != 1 || dead[0].Body != "poison" {
		t.Fatalf("dead letters = %+v, want the poison message", dead)
	}
	if q.Len() != 0 {
		t.Fatal("dead-lettered message still queued")
	}
}
