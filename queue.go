// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

import (
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/mpmc/internal/hint"
)

// Queue is a bounded multi-producer multi-consumer FIFO queue.
//
// Every slot carries a sequence number. For the slot at cursor position pos:
//
//	seq == pos          slot is free for the producer claiming pos
//	seq == pos+1        slot holds the value written at pos
//	seq == pos+capacity slot is free for the next lap
//
// A producer claims pos by CAS on tail, writes the payload, then publishes
// with a release store of pos+1. A consumer claims pos by CAS on head,
// reads the payload after an acquire load of seq, then frees the slot with
// a release store of pos+capacity. The per-slot sequence is the only
// channel between producers and consumers.
//
// Memory: capacity slots; padded layout adds one cache line per slot.
type Queue[T any] struct {
	_          pad
	tail       atomix.Uint64 // Producer cursor
	_          pad
	head       atomix.Uint64 // Consumer cursor
	_          pad
	ring       ring[T]
	capacity   uint64
	prefetch   uint64 // Slots ahead to prefetch, 0 disables
	stallLimit int    // Consecutive stale-cursor retries, 0 is unbounded
	layout     Layout
}

// NewPadded creates a queue with the padded layout.
// Capacity rounds up to the next power of 2 (minimum 2).
// Panics if capacity < 1.
func NewPadded[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity))
}

// NewCompact creates a queue with the compact layout.
// Capacity is used as requested (minimum 2).
// Panics if capacity < 1.
func NewCompact[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity).Compact())
}

func newQueue[T any](o Options) *Queue[T] {
	n := physicalCapacity(o.capacity, o.layout)
	return &Queue[T]{
		ring:       newRing[T](n, o.layout),
		capacity:   n,
		prefetch:   uint64(o.prefetchDistance()),
		stallLimit: o.stallLimit,
		layout:     o.layout,
	}
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full, or ErrStalled if a stall
// limit is configured and exceeded.
func (q *Queue[T]) Enqueue(elem *T) error {
	var st stall
	tail := q.tail.LoadRelaxed()
	for {
		s := q.ring.at(tail)
		seq := s.seq.LoadAcquire()
		diff := int64(seq - tail)

		switch {
		case diff == 0:
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				s.data = *elem
				s.seq.StoreRelease(tail + 1)
				q.prefetchAhead(tail)
				return nil
			}
			// Lost to another producer: contention, not a stall.
			tail = q.tail.LoadRelaxed()
			st.reset()
		case diff < 0:
			return ErrWouldBlock
		default:
			tail = q.tail.LoadRelaxed()
			if !st.wait(q.stallLimit) {
				return ErrStalled
			}
		}
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty, or
// (zero-value, ErrStalled) if a stall limit is configured and exceeded.
func (q *Queue[T]) Dequeue() (T, error) {
	var st stall
	head := q.head.LoadRelaxed()
	for {
		s := q.ring.at(head)
		seq := s.seq.LoadAcquire()
		diff := int64(seq - (head + 1))

		switch {
		case diff == 0:
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := s.data
				var zero T
				s.data = zero
				s.seq.StoreRelease(head + q.capacity)
				q.prefetchAhead(head)
				return elem, nil
			}
			head = q.head.LoadRelaxed()
			st.reset()
		case diff < 0:
			var zero T
			return zero, ErrWouldBlock
		default:
			head = q.head.LoadRelaxed()
			if !st.wait(q.stallLimit) {
				var zero T
				return zero, ErrStalled
			}
		}
	}
}

// Push adds v to the queue and reports whether it was accepted.
// A false return means the queue is full right now.
func (q *Queue[T]) Push(v T) bool {
	return q.Enqueue(&v) == nil
}

// Pop removes the oldest element and reports whether one was available.
func (q *Queue[T]) Pop() (T, bool) {
	v, err := q.Dequeue()
	return v, err == nil
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

// Layout returns the memory layout the queue was built with.
func (q *Queue[T]) Layout() Layout {
	return q.layout
}

func (q *Queue[T]) prefetchAhead(pos uint64) {
	if q.prefetch == 0 {
		return
	}
	hint.Prefetch(unsafe.Pointer(q.ring.at(pos + q.prefetch)))
}
