package fetch

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"ydkpoints/internal/progress"
	"ydkpoints/internal/services"
)

func TestResolveAllPreservesOrderUnderRandomLatency(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}
	s := &Scheduler{Width: 7}
	got := ResolveAll(context.Background(), s, items, func(_ context.Context, v int) int {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		return v * 10
	})
	if len(got) != len(items) {
		t.Fatalf("len = %d, want %d", len(got), len(items))
	}
	for i, v := range got {
		if v != i*10 {
			t.Fatalf("got[%d] = %d, want %d", i, v, i*10)
		}
	}
}

func TestResolveAllRespectsWidth(t *testing.T) {
	var inFlight, peak atomic.Int64
	items := make([]int, 30)
	s := &Scheduler{Width: 3}
	ResolveAll(context.Background(), s, items, func(context.Context, int) struct{} {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	})
	if peak.Load() > 3 {
		t.Fatalf("peak concurrency %d exceeds width 3", peak.Load())
	}
}

func TestResolveAllPublishesProgress(t *testing.T) {
	hub := progress.NewHub(64)
	s := &Scheduler{Width: 2, Progress: hub}
	ctx := services.WithSection(context.Background(), "main")

	ResolveAll(ctx, s, []string{"a", "b", "c"}, func(_ context.Context, v string) string { return v })

	events := hub.Tail(0)
	if len(events) != 3 {
		t.Fatalf("expected 3 progress events, got %d", len(events))
	}
	maxDone := 0
	for _, evt := range events {
		if evt.Total != 3 || evt.Section != "main" {
			t.Fatalf("unexpected event %+v", evt)
		}
		maxDone = max(maxDone, evt.Done)
	}
	if maxDone != 3 {
		t.Fatalf("final count = %d, want 3", maxDone)
	}
}

func TestResolveAllEmptyAndDefaults(t *testing.T) {
	if got := ResolveAll(context.Background(), nil, []int{}, func(context.Context, int) int { return 1 }); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	got := ResolveAll(context.Background(), nil, []int{1, 2}, func(_ context.Context, v int) int { return v + 1 })
	if got[0] != 2 || got[1] != 3 {
		t.Fatalf("got %v", got)
	}
}
