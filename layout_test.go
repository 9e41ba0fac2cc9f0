// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

import (
	"errors"
	"reflect"
	"testing"
	"time"
	"unsafe"
)

func TestQueueCursorLayout(t *testing.T) {
	typ := reflect.TypeFor[Queue[int]]()

	offset := func(name string) uintptr {
		field, ok := typ.FieldByName(name)
		if !ok {
			t.Fatalf("missing field %q", name)
		}
		return field.Offset
	}

	tail, head, r := offset("tail"), offset("head"), offset("ring")
	if tail < cacheLineSize {
		t.Fatalf("tail offset %d: want >= %d", tail, cacheLineSize)
	}
	if head-tail < cacheLineSize {
		t.Fatalf("head-tail distance %d: want >= %d", head-tail, cacheLineSize)
	}
	if r-head < cacheLineSize {
		t.Fatalf("ring-head distance %d: want >= %d", r-head, cacheLineSize)
	}
}

func TestPaddedSlotStride(t *testing.T) {
	check := func(name string, hot, stride uintptr) {
		t.Helper()
		if stride-hot < cacheLineSize {
			t.Fatalf("%s: stride %d leaves %d bytes after the %d-byte slot, want >= %d",
				name, stride, stride-hot, hot, cacheLineSize)
		}
	}

	check("int", unsafe.Sizeof(slot[int]{}), unsafe.Sizeof(paddedSlot[int]{}))
	check("[40]byte", unsafe.Sizeof(slot[[40]byte]{}), unsafe.Sizeof(paddedSlot[[40]byte]{}))
	check("[200]byte", unsafe.Sizeof(slot[[200]byte]{}), unsafe.Sizeof(paddedSlot[[200]byte]{}))

	q := NewPadded[int](8)
	if q.ring.stride != unsafe.Sizeof(paddedSlot[int]{}) {
		t.Fatalf("padded stride: got %d, want %d", q.ring.stride, unsafe.Sizeof(paddedSlot[int]{}))
	}

	c := NewCompact[int](8)
	if c.ring.stride != unsafe.Sizeof(slot[int]{}) {
		t.Fatalf("compact stride: got %d, want %d", c.ring.stride, unsafe.Sizeof(slot[int]{}))
	}
}

func TestRingIndexing(t *testing.T) {
	p := newRing[int](8, LayoutPadded)
	if !p.masked || p.mask != 7 {
		t.Fatalf("padded ring: masked=%v mask=%d, want true, 7", p.masked, p.mask)
	}

	c := newRing[int](8, LayoutCompact)
	if c.masked {
		t.Fatalf("compact ring: masked, want remainder indexing")
	}

	odd := newRing[int](6, LayoutCompact)
	for pos := uint64(0); pos < 100; pos++ {
		if got, want := p.index(pos), pos%8; got != want {
			t.Fatalf("padded index(%d): got %d, want %d", pos, got, want)
		}
		if got, want := odd.index(pos), pos%6; got != want {
			t.Fatalf("compact index(%d): got %d, want %d", pos, got, want)
		}
	}

	// Cursors are never wrapped, so indexing must hold near the top of the range.
	top := ^uint64(0) - 3
	for pos := top; pos >= top; pos++ {
		if got, want := odd.index(pos), pos%6; got != want {
			t.Fatalf("compact index(%d): got %d, want %d", pos, got, want)
		}
	}
}

func TestInitialSequences(t *testing.T) {
	for _, l := range []Layout{LayoutPadded, LayoutCompact} {
		r := newRing[int](5, l)
		for i := uint64(0); i < r.n; i++ {
			if seq := r.at(i).seq.Load(); seq != i {
				t.Fatalf("%v: slot %d seq: got %d, want %d", l, i, seq, i)
			}
		}
	}
}

// TestSequenceGenerations walks one slot through several laps and checks the
// writable/readable sequence values.
func TestSequenceGenerations(t *testing.T) {
	q := NewCompact[int](3)
	s := q.ring.at(1)

	for lap := uint64(0); lap < 4; lap++ {
		pos := lap*3 + 1
		for i := range 3 {
			q.Push(int(lap)*3 + i)
		}
		if seq := s.seq.Load(); seq != pos+1 {
			t.Fatalf("lap %d after write: seq %d, want %d", lap, seq, pos+1)
		}
		for range 3 {
			q.Pop()
		}
		if seq := s.seq.Load(); seq != pos+3 {
			t.Fatalf("lap %d after read: seq %d, want %d", lap, seq, pos+3)
		}
	}
}

// TestDequeueClearsSlot checks that a consumed slot drops its reference.
func TestDequeueClearsSlot(t *testing.T) {
	q := NewPadded[*int](4)
	v := 7
	if !q.Push(&v) {
		t.Fatalf("Push: rejected")
	}
	got, ok := q.Pop()
	if !ok || got != &v {
		t.Fatalf("Pop: got (%p, %v), want (%p, true)", got, ok, &v)
	}
	if q.ring.at(0).data != nil {
		t.Fatalf("slot 0 still references the dequeued value")
	}
}

func TestPrefetchDistance(t *testing.T) {
	tests := []struct {
		b    *Builder
		want uint64
	}{
		{New(8), defaultPrefetch},
		{New(8).Compact(), 0},
		{New(8).Prefetch(0), 0},
		{New(8).Compact().Prefetch(2), 2},
		{New(8).Prefetch(100), 100},
	}
	for i, tt := range tests {
		q := Build[int](tt.b)
		if q.prefetch != tt.want {
			t.Fatalf("case %d: prefetch %d, want %d", i, q.prefetch, tt.want)
		}
		// A distance beyond capacity must still map inside the ring.
		for pos := range uint64(20) {
			q.Push(int(pos))
			q.Pop()
		}
	}
}

// =============================================================================
// Stale Cursor Path
// =============================================================================

// TestStallLimitEnqueue fakes a slot already published for the current tail,
// which the producer can only read as a stale cursor.
func TestStallLimitEnqueue(t *testing.T) {
	q := Build[int](New(4).StallLimit(5))
	q.ring.at(0).seq.StoreRelease(1)

	v := 1
	if err := q.Enqueue(&v); !errors.Is(err, ErrStalled) {
		t.Fatalf("Enqueue: got %v, want ErrStalled", err)
	}
	if q.Push(2) {
		t.Fatalf("Push: accepted, want stalled")
	}
}

// TestStallLimitDequeue fakes a slot freed for the next lap while head still
// points at it.
func TestStallLimitDequeue(t *testing.T) {
	q := Build[int](New(4).Compact().StallLimit(3))
	q.ring.at(0).seq.StoreRelease(4)

	if _, err := q.Dequeue(); !errors.Is(err, ErrStalled) {
		t.Fatalf("Dequeue: got %v, want ErrStalled", err)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop: succeeded, want stalled")
	}
}

// TestStaleCursorResolves checks that an unbounded Enqueue waits out a stale
// tail and succeeds once the shared cursor moves on.
func TestStaleCursorResolves(t *testing.T) {
	q := NewPadded[int](4)
	// Another producer claimed position 0 and published it, but the tail
	// advance is not visible yet.
	q.ring.at(0).data = 41
	q.ring.at(0).seq.StoreRelease(1)

	done := make(chan error, 1)
	go func() {
		v := 42
		done <- q.Enqueue(&v)
	}()

	select {
	case err := <-done:
		t.Fatalf("Enqueue returned %v before the tail advanced", err)
	case <-time.After(20 * time.Millisecond):
	}

	q.tail.StoreRelease(1)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Enqueue did not return after the tail advanced")
	}

	for _, want := range []int{41, 42} {
		v, ok := q.Pop()
		if !ok || v != want {
			t.Fatalf("Pop: got (%d, %v), want (%d, true)", v, ok, want)
		}
	}
}

// =============================================================================
// Backoff
// =============================================================================

func TestStallEscalation(t *testing.T) {
	var st stall

	for i := 1; i < 200; i++ {
		want := 3
		switch {
		case i < stallSpin:
			want = 1
		case i < stallYield:
			want = 2
		}
		if got := st.stage(); got != want {
			t.Fatalf("wait %d: stage %d, want %d", i, got, want)
		}
		if !st.wait(0) {
			t.Fatalf("wait %d: unbounded stall gave up", i)
		}
	}

	st.reset()
	if got := st.stage(); got != 1 {
		t.Fatalf("after reset: stage %d, want 1", got)
	}
}

func TestStallLimit(t *testing.T) {
	var st stall
	for i := range 7 {
		if !st.wait(7) {
			t.Fatalf("wait %d: gave up before limit", i+1)
		}
	}
	if st.wait(7) {
		t.Fatalf("wait 8: continued past limit 7")
	}
}

func TestPhysicalCapacity(t *testing.T) {
	tests := []struct {
		capacity int
		layout   Layout
		want     uint64
	}{
		{1, LayoutPadded, 2},
		{1, LayoutCompact, 2},
		{5, LayoutPadded, 8},
		{5, LayoutCompact, 5},
		{maxCapacity, LayoutPadded, maxCapacity},
	}
	for _, tt := range tests {
		if got := physicalCapacity(tt.capacity, tt.layout); got != tt.want {
			t.Fatalf("physicalCapacity(%d, %v): got %d, want %d", tt.capacity, tt.layout, got, tt.want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("unknown layout: expected panic")
		}
	}()
	physicalCapacity(4, Layout(9))
}
