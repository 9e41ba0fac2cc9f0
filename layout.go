// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

import (
	"math/bits"
	"unsafe"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// Layout selects how the ring is laid out in memory.
//
// Both layouts run the identical sequence protocol. Layout affects
// performance only, never correctness.
type Layout uint8

const (
	// LayoutPadded rounds capacity up to a power of 2, indexes by mask,
	// pads every slot with a cache line and prefetches ahead on success.
	LayoutPadded Layout = iota

	// LayoutCompact keeps the requested capacity, indexes by remainder and
	// stores slots back to back.
	LayoutCompact
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutPadded:
		return "padded"
	case LayoutCompact:
		return "compact"
	default:
		return "unknown"
	}
}

// ParseLayout returns the layout named s ("padded" or "compact").
func ParseLayout(s string) (Layout, bool) {
	switch s {
	case "padded":
		return LayoutPadded, true
	case "compact":
		return LayoutCompact, true
	}
	return 0, false
}

// defaultPrefetch is how many slots ahead the padded layout prefetches.
const defaultPrefetch = 4

// maxCapacity is the largest capacity whose power-of-2 rounding and
// generation arithmetic still fit the cursor width.
const maxCapacity = 1 << (bits.UintSize - 2)

// pad isolates cursors and padded slots on their own cache lines.
type pad = cpu.CacheLinePad

// cacheLineSize is the padding unit of the current architecture.
const cacheLineSize = unsafe.Sizeof(pad{})

// slot is one ring cell: the sequence counter and the payload it guards.
type slot[T any] struct {
	seq  atomix.Uint64
	data T
}

// paddedSlot trails a slot with a full cache line so the seq and data of
// neighbouring slots never share a line.
type paddedSlot[T any] struct {
	slot[T]
	_ pad
}

// ring is the slot array seen through a base pointer and a stride, so one
// protocol implementation serves both layouts.
type ring[T any] struct {
	base   unsafe.Pointer
	stride uintptr
	n      uint64
	mask   uint64 // n-1 when masked, 0 otherwise
	masked bool
}

// newRing allocates n slots in layout l with sequence i stored in slot i.
// The backing array stays reachable through base.
func newRing[T any](n uint64, l Layout) ring[T] {
	r := ring[T]{n: n}
	switch l {
	case LayoutPadded:
		buf := make([]paddedSlot[T], n)
		r.base = unsafe.Pointer(unsafe.SliceData(buf))
		r.stride = unsafe.Sizeof(paddedSlot[T]{})
		r.masked = n&(n-1) == 0
	default:
		buf := make([]slot[T], n)
		r.base = unsafe.Pointer(unsafe.SliceData(buf))
		r.stride = unsafe.Sizeof(slot[T]{})
	}
	if r.masked {
		r.mask = n - 1
	}
	for i := uint64(0); i < n; i++ {
		r.at(i).seq.StoreRelaxed(i)
	}
	return r
}

// index maps a cursor to its physical slot position.
func (r *ring[T]) index(pos uint64) uint64 {
	if r.masked {
		return pos & r.mask
	}
	return pos % r.n
}

// at returns the slot the cursor pos maps to.
func (r *ring[T]) at(pos uint64) *slot[T] {
	// index(pos) < n, so the result stays inside the backing array.
	return (*slot[T])(unsafe.Add(r.base, uintptr(r.index(pos))*r.stride))
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	return 1 << bits.Len(uint(n-1))
}

// physicalCapacity returns the slot count used for a requested capacity.
func physicalCapacity(capacity int, l Layout) uint64 {
	if capacity < 1 {
		panic("mpmc: capacity must be >= 1")
	}
	if capacity > maxCapacity {
		panic("mpmc: capacity exceeds index width")
	}
	switch l {
	case LayoutPadded:
		return uint64(roundToPow2(capacity))
	case LayoutCompact:
		// One slot cannot tell "written" from "writable".
		return uint64(max(capacity, 2))
	default:
		panic("mpmc: unknown layout")
	}
}
