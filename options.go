// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

// Options configures queue creation and layout selection.
type Options struct {
	layout Layout

	// Performance hints
	prefetch    int
	prefetchSet bool

	// Liveness bound for the stale-cursor retry path (0 = unbounded)
	stallLimit int

	// Requested capacity (padded layout rounds up to next power of 2)
	capacity int
}

// prefetchDistance resolves the prefetch distance, applying the layout
// default when none was set explicitly.
func (o Options) prefetchDistance() int {
	if o.prefetchSet {
		return o.prefetch
	}
	if o.layout == LayoutPadded {
		return defaultPrefetch
	}
	return 0
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Padded layout (default): power-of-2 capacity, masked indexing
//	q := mpmc.Build[Event](mpmc.New(1024))
//
//	// Compact layout: exact capacity, no per-slot padding
//	q := mpmc.Build[Event](mpmc.New(1000).Compact())
//
//	// Bound the stale-cursor wait
//	q := mpmc.Build[Event](mpmc.New(1024).StallLimit(10000))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// With the default padded layout, capacity rounds up to the next power
// of 2: capacity=10 results in actual capacity=16. A capacity of 1 is
// raised to 2 in every layout.
//
// Panics if capacity < 1.
func New(capacity int) *Builder {
	if capacity < 1 {
		panic("mpmc: capacity must be >= 1")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// Padded selects the padded layout (the default).
//
// Capacity rounds up to a power of 2 and indexing uses a mask. Every slot
// is followed by a cache line of padding, and after each successful claim
// the slot a few positions ahead is prefetched.
func (b *Builder) Padded() *Builder {
	b.opts.layout = LayoutPadded
	return b
}

// Compact selects the compact layout.
//
// Capacity is kept as requested and indexing uses remainder. Slots are
// stored back to back without padding.
//
// Trade-off: smallest footprint, more false sharing between neighbouring
// slots under contention.
func (b *Builder) Compact() *Builder {
	b.opts.layout = LayoutCompact
	return b
}

// Prefetch sets how many slots ahead of a claimed slot to prefetch.
// Zero disables prefetching. Defaults: 4 for padded, 0 for compact.
//
// Panics if distance < 0.
func (b *Builder) Prefetch(distance int) *Builder {
	if distance < 0 {
		panic("mpmc: prefetch distance must be >= 0")
	}
	b.opts.prefetch = distance
	b.opts.prefetchSet = true
	return b
}

// StallLimit bounds how many consecutive times Enqueue or Dequeue waits on
// a stale cursor before giving up with [ErrStalled]. Zero (the default)
// retries until the cursor catches up.
//
// Panics if n < 0.
func (b *Builder) StallLimit(n int) *Builder {
	if n < 0 {
		panic("mpmc: stall limit must be >= 0")
	}
	b.opts.stallLimit = n
	return b
}

// Build creates a Queue[T] from the builder configuration.
//
// Panics if the capacity cannot be represented in the selected layout.
func Build[T any](b *Builder) *Queue[T] {
	return newQueue[T](b.opts)
}
