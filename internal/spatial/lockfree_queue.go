package spatial

// This file implements a bounded lock-free MPSC ring buffer (Vyukov style)
// with cache-line padding to prevent false sharing between producers and
// the consumer. Network goroutines push client commands; the tick thread
// is the single consumer.

import (
	"runtime"
	"sync/atomic"
)

// CacheLineSize is the typical CPU cache line size (64 bytes on x86-64)
const CacheLineSize = 64

// Padding ensures variables don't share cache lines (prevents false sharing)
type Padding [CacheLineSize]byte

type slot[T any] struct {
	seq  atomic.Uint64
	item T
}

// LockFreeQueue is a bounded MPSC ring buffer.
//
// Each slot carries a sequence number so a consumer never observes a slot
// that a producer has claimed but not yet written.
//
// Memory Layout (prevents false sharing):
// [Padding][head][Padding][tail][Padding][slots...]
type LockFreeQueue[T any] struct {
	_pad0 Padding

	head atomic.Uint64 // next write position (producers)
	_pad1 Padding

	tail atomic.Uint64 // next read position (consumer)
	_pad2 Padding

	mask  uint64
	slots []slot[T]
}

// NewLockFreeQueue creates a new lock-free queue.
// capacity is rounded up to a power of 2.
func NewLockFreeQueue[T any](capacity int) *LockFreeQueue[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}

	q := &LockFreeQueue[T]{
		mask:  uint64(size - 1),
		slots: make([]slot[T], size),
	}
	for i := range q.slots {
		q.slots[i].seq.Store(uint64(i))
	}
	return q
}

// TryPush adds an item. Returns false if the queue is full.
// Safe for multiple concurrent producers.
func (q *LockFreeQueue[T]) TryPush(item T) bool {
	for {
		head := q.head.Load()
		s := &q.slots[head&q.mask]
		seq := s.seq.Load()

		switch {
		case seq == head:
			if q.head.CompareAndSwap(head, head+1) {
				s.item = item
				s.seq.Store(head + 1)
				return true
			}
		case seq < head:
			return false
		}

		// Another producer won the slot, retry
		runtime.Gosched()
	}
}

// TryPop removes an item. Returns (zero, false) if the queue is empty or
// the next slot is still being written.
// Must only be called by a single consumer.
func (q *LockFreeQueue[T]) TryPop() (T, bool) {
	var zero T

	tail := q.tail.Load()
	s := &q.slots[tail&q.mask]
	if s.seq.Load() != tail+1 {
		return zero, false
	}

	item := s.item
	s.item = zero
	s.seq.Store(tail + q.mask + 1)
	q.tail.Store(tail + 1)
	return item, true
}

// Len returns the approximate number of items in the queue.
func (q *LockFreeQueue[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// Cap returns the queue capacity
func (q *LockFreeQueue[T]) Cap() int {
	return int(q.mask + 1)
}

// DrainTo pops available items into buf (zero-alloc batch) and returns
// the number written.
func (q *LockFreeQueue[T]) DrainTo(buf []T) int {
	count := 0
	for count < len(buf) {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		buf[count] = item
		count++
	}
	return count
}
