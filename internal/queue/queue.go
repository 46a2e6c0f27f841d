// Package queue provides the two bounded FIFO flavours used between pipeline
// stages.
//
// Both queues are built on buffered channels, so they are safe for concurrent
// producers and consumers and preserve insertion order. They differ only in
// overflow policy:
//
//   - [DropOldest] evicts the longest-resident item to admit a new one. Used
//     for raw audio frames, where the queue should always represent the most
//     recent slice of the input stream and losing a stale frame is cheap.
//   - [DropNewest] rejects the incoming item and keeps the existing contents.
//     Used for completed utterances, where losing finished work should be
//     visible to the caller (drop-and-warn).
//
// Push never blocks on either flavour; the producer side is safe to call from
// an audio driver callback.
package queue

import (
	"context"
	"time"
)

// DropOldest is a bounded FIFO that evicts its head on overflow.
type DropOldest[T any] struct {
	ch chan T
}

// NewDropOldest creates a drop-oldest queue with the given capacity.
// Capacity must be at least 1.
func NewDropOldest[T any](capacity int) *DropOldest[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &DropOldest[T]{ch: make(chan T, capacity)}
}

// Push inserts v without blocking. When the queue is full the oldest item is
// evicted and the insert retried once; if another producer refills the queue
// in between, v is discarded. Returns the number of items dropped (0, or 1
// when either an eviction happened or v itself was discarded).
func (q *DropOldest[T]) Push(v T) int {
	select {
	case q.ch <- v:
		return 0
	default:
	}

	// Full: evict the head, then retry once.
	select {
	case <-q.ch:
	default:
	}
	select {
	case q.ch <- v:
		return 1
	default:
		// Pathological back-to-back overflow; drop v itself.
		return 1
	}
}

// Pop removes the head of the queue, waiting up to timeout for an item to
// arrive. It returns early with ok=false when ctx is cancelled or the timeout
// elapses.
func (q *DropOldest[T]) Pop(ctx context.Context, timeout time.Duration) (v T, ok bool) {
	return pop(ctx, q.ch, timeout)
}

// Len returns the number of items currently queued.
func (q *DropOldest[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *DropOldest[T]) Cap() int { return cap(q.ch) }

// DropNewest is a bounded FIFO that rejects new items on overflow.
type DropNewest[T any] struct {
	ch chan T
}

// NewDropNewest creates a drop-newest queue with the given capacity.
// Capacity must be at least 1.
func NewDropNewest[T any](capacity int) *DropNewest[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &DropNewest[T]{ch: make(chan T, capacity)}
}

// Push inserts v without blocking. Returns false when the queue is full, in
// which case v is discarded and the existing contents are left untouched.
// The caller is expected to log the rejection — this is the "warn" half of
// drop-and-warn.
func (q *DropNewest[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Pop removes the head of the queue, waiting up to timeout for an item to
// arrive. It returns early with ok=false when ctx is cancelled or the timeout
// elapses.
func (q *DropNewest[T]) Pop(ctx context.Context, timeout time.Duration) (v T, ok bool) {
	return pop(ctx, q.ch, timeout)
}

// Len returns the number of items currently queued.
func (q *DropNewest[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *DropNewest[T]) Cap() int { return cap(q.ch) }

// pop implements the timeout-bounded, cancellation-aware dequeue shared by
// both queue flavours. An item already buffered is preferred over reporting
// cancellation, so queued work is not lost to a racing ctx.Done().
func pop[T any](ctx context.Context, ch <-chan T, timeout time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-ch:
		return v, ok
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case v, ok = <-ch:
		return v, ok
	case <-ctx.Done():
		return v, false
	case <-t.C:
		return v, false
	}
}
