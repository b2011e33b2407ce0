// Package progress carries one-way progress events from a calculation to
// whoever is presenting it.
package progress

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Kind classifies a progress event.
type Kind string

const (
	KindStage    Kind = "stage"
	KindResolved Kind = "resolved"
	KindLookup   Kind = "lookup"
	KindDone     Kind = "done"
)

// Event is one progress notification.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Kind      Kind      `json:"kind"`
	Section   string    `json:"section,omitempty"`
	Message   string    `json:"msg"`
	Done      int       `json:"done,omitempty"`
	Total     int       `json:"total,omitempty"`
}

// Sink receives every published event synchronously.
type Sink interface {
	Append(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Append calls f(evt).
func (f SinkFunc) Append(evt Event) { f(evt) }

// Hub buffers recent events and wakes waiters when new ones arrive. A nil Hub
// discards everything.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	buffer   []Event
	nextSeq  uint64
	sinks    []Sink
}

// NewHub constructs a bounded event buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	h := &Hub{capacity: capacity}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// AddSink wires a sink that receives every later event.
func (h *Hub) AddSink(sink Sink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish appends evt and fans it out to the sinks.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	sinks := append([]Sink(nil), h.sinks...)
	h.cond.Broadcast()
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Append(evt)
	}
}

// Stage publishes a section-level status message.
func (h *Hub) Stage(section, format string, args ...any) {
	h.Publish(Event{Kind: KindStage, Section: section, Message: fmt.Sprintf(format, args...)})
}

// Resolved publishes a batch counter update.
func (h *Hub) Resolved(section string, done, total int) {
	h.Publish(Event{
		Kind:    KindResolved,
		Section: section,
		Message: fmt.Sprintf("resolved %d of %d", done, total),
		Done:    done,
		Total:   total,
	})
}

// Fetch returns events with sequence greater than since. When wait is true it
// blocks until at least one event is available or ctx ends.
func (h *Hub) Fetch(ctx context.Context, since uint64, wait bool) ([]Event, uint64, error) {
	if h == nil {
		return nil, since, nil
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.mu.Lock()
				h.cond.Broadcast()
				h.mu.Unlock()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		events := h.snapshotLocked(since)
		if len(events) > 0 || !wait {
			return events, h.nextSeq, nil
		}
		if err := contextError(ctx); err != nil {
			return nil, h.nextSeq, err
		}
		h.cond.Wait()
	}
}

// Tail returns the most recent limit events without blocking.
func (h *Hub) Tail(limit int) []Event {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.buffer) {
		limit = len(h.buffer)
	}
	out := make([]Event, limit)
	copy(out, h.buffer[len(h.buffer)-limit:])
	return out
}

func (h *Hub) snapshotLocked(since uint64) []Event {
	for i, evt := range h.buffer {
		if evt.Sequence > since {
			out := make([]Event, len(h.buffer)-i)
			copy(out, h.buffer[i:])
			return out
		}
	}
	return nil
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
