// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpmc provides a bounded lock-free multi-producer multi-consumer
// FIFO queue built on per-slot sequence numbers.
//
// Any number of goroutines may enqueue and dequeue concurrently. Capacity is
// fixed at construction. Every successful Enqueue is delivered to exactly one
// successful Dequeue.
//
// # Quick Start
//
//	q := mpmc.NewPadded[Event](1024)   // power-of-2, cache-line padded
//	q := mpmc.NewCompact[Event](1000)  // exact capacity, no padding
//
// Builder API:
//
//	q := mpmc.Build[Event](mpmc.New(1024))
//	q := mpmc.Build[Event](mpmc.New(1000).Compact())
//	q := mpmc.Build[Event](mpmc.New(1024).Prefetch(8).StallLimit(10000))
//
// # Basic Usage
//
//	q := mpmc.NewPadded[int](1024)
//
//	// Enqueue (non-blocking)
//	value := 42
//	err := q.Enqueue(&value)
//	if mpmc.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking)
//	elem, err := q.Dequeue()
//	if mpmc.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Boolean forms are available when the caller only needs accepted/rejected:
//
//	ok := q.Push(42)
//	v, ok := q.Pop()
//
// # Algorithm
//
// The ring holds capacity slots, each with a sequence number. Head and tail
// are 64-bit cursors that never wrap; the slot for cursor pos is pos&mask
// (padded) or pos%capacity (compact). Slot i starts with sequence i.
//
// Enqueue at tail:
//
//	seq - tail == 0  slot free: CAS tail -> tail+1, write, publish seq = tail+1
//	seq - tail <  0  slot still holds last lap's value: full, ErrWouldBlock
//	seq - tail >  0  another producer already used tail: reload, back off
//
// Dequeue at head compares seq against head+1 the same way and frees the
// slot with seq = head+capacity, which makes it writable on the next lap.
//
// The acquire load of seq pairs with the release store that published it,
// so a consumer that sees the published sequence sees the whole payload,
// and a producer never overwrites a slot a consumer is still reading.
//
// # Layouts
//
// Both layouts run the same protocol:
//
//	LayoutPadded   capacity rounded to 2^k, mask indexing, one cache line of
//	               padding per slot, prefetch 4 slots ahead on success
//	LayoutCompact  capacity as requested, remainder indexing, no per-slot
//	               padding, no prefetch
//
// Head and tail live on separate cache lines in both layouts. The minimum
// capacity is 2: a single slot cannot distinguish a written value from a
// free slot.
//
// # Waiting
//
// Enqueue and Dequeue never wait on full or empty. A lost CAS retries at
// once. Only when the local cursor is stale does the call back off: a CPU
// pause for the first retries, then a scheduler yield, then a 50ns sleep.
//
// By default this stale-cursor wait is unbounded. A goroutine descheduled
// between winning its CAS and publishing its slot delays every later
// claimant of that slot. [Builder.StallLimit] bounds the wait and returns
// [ErrStalled] instead.
//
// For bounded waiting on full or empty, compose a retry loop:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !mpmc.IsWouldBlock(err) {
//	        return err
//	    }
//	    if time.Now().After(deadline) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Race Detection
//
// Go's race detector cannot observe happens-before edges established
// through acquire-release orderings on a separate sequence variable, and
// may report false positives for the payload field. Concurrent tests are
// skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package mpmc
