// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue: the queue is full (no room right now)
// For Dequeue: the queue is empty (nothing available right now)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller decides
// whether to retry, back off or drop the element.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrStalled is returned instead of spinning forever when a queue built with
// [Builder.StallLimit] observes a stale cursor for more consecutive retries
// than the configured limit.
//
// ErrStalled wraps [ErrWouldBlock]: the condition is transient and
// [IsWouldBlock] reports true for it.
var ErrStalled = fmt.Errorf("mpmc: stale cursor retry limit exceeded: %w", iox.ErrWouldBlock)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
