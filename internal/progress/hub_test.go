package progress

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestHubPublishAssignsSequence(t *testing.T) {
	hub := NewHub(2)
	hub.Stage("main", "fetching %s deck", "main")
	hub.Resolved("main", 1, 3)
	hub.Resolved("main", 2, 3)

	events := hub.Tail(0)
	if len(events) != 2 {
		t.Fatalf("expected bounded buffer of 2, got %d", len(events))
	}
	if events[0].Sequence != 2 || events[1].Sequence != 3 {
		t.Fatalf("unexpected sequences %d %d", events[0].Sequence, events[1].Sequence)
	}
	if events[1].Message != "resolved 2 of 3" {
		t.Fatalf("message = %q", events[1].Message)
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}
}

func TestHubSinkReceivesEvents(t *testing.T) {
	hub := NewHub(8)
	var mu sync.Mutex
	var got []Event
	hub.AddSink(SinkFunc(func(evt Event) {
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	}))
	hub.Stage("side", "fetching side deck")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Kind != KindStage || got[0].Section != "side" {
		t.Fatalf("unexpected sink events %+v", got)
	}
}

func TestHubFetchWaitsForEvent(t *testing.T) {
	hub := NewHub(8)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan []Event, 1)
	go func() {
		events, _, _ := hub.Fetch(ctx, 0, true)
		done <- events
	}()
	time.Sleep(20 * time.Millisecond)
	hub.Resolved("main", 1, 1)

	select {
	case events := <-done:
		if len(events) != 1 || events[0].Kind != KindResolved {
			t.Fatalf("unexpected events %+v", events)
		}
	case <-time.After(time.Second):
		t.Fatal("Fetch did not wake")
	}
}

func TestHubFetchHonoursCancel(t *testing.T) {
	hub := NewHub(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := hub.Fetch(ctx, 0, true); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNilHubIsSafe(t *testing.T) {
	var hub *Hub
	hub.Stage("main", "ignored")
	hub.Resolved("main", 1, 1)
	if hub.Tail(5) != nil {
		t.Fatal("nil hub should have no events")
	}
}
