package mps_test

import (
	"testing"

	"github.com/lumenrt/igc/internal/mps"
)

func TestMessageQueueDropsMessagesUntilEnabled(t *testing.T) {
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	q := arena.Messages()
	q.Post(mps.Message{Ref: 0x1000})
	if q.Pending() != 0 {
		t.Fatal("message posted before Enable was queued")
	}

	q.Enable()
	q.Post(mps.Message{Ref: 0x2000})
	if q.Pending() != 1 {
		t.Fatalf("Pending: got %d, want 1", q.Pending())
	}
}

func TestMessageQueueDequeueDrainsAndClears(t *testing.T) {
	arena, err := mps.NewArena(mps.ClassVM)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	q := arena.Messages()
	q.Enable()

	ran := false
	q.Post(mps.Message{Ref: 0x3000, Finalize: func() { ran = true }})
	q.Post(mps.Message{Ref: 0x4000})

	msgs := q.Dequeue()
	if len(msgs) != 2 {
		t.Fatalf("Dequeue: got %d messages, want 2", len(msgs))
	}
	if q.Pending() != 0 {
		t.Fatal("Dequeue did not clear the queue")
	}
	for _, m := range msgs {
		if m.Finalize != nil {
			m.Finalize()
		}
	}
	if !ran {
		t.Fatal("finalize callback never invoked")
	}
}
