// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs on the
// call. The queue stores a copy of the pointed-to value, so the original
// can be modified after Enqueue returns.
//
// T must be copyable by plain assignment. The protocol copies values into
// and out of slots under the claim, not behind a lock.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The slot is cleared afterwards so the
// queue does not keep referenced objects alive.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// Pusher is the boolean form of [Producer], for callers that only need
// accepted or rejected.
type Pusher[T any] interface {
	Push(v T) bool
}

// Popper is the boolean form of [Consumer].
type Popper[T any] interface {
	Pop() (T, bool)
}

var (
	_ Producer[int] = (*Queue[int])(nil)
	_ Consumer[int] = (*Queue[int])(nil)
	_ Pusher[int]   = (*Queue[int])(nil)
	_ Popper[int]   = (*Queue[int])(nil)
)
