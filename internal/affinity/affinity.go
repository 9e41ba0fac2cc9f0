// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package affinity pins the calling goroutine's OS thread to a CPU.
//
// Pinning is a capability applied around queue users. It never changes
// queue semantics.
package affinity

import "errors"

// ErrUnsupported is returned by Pin and Allowed on platforms without a
// thread affinity API.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// Assign returns the CPU for worker i, spreading workers round-robin over
// cpus. Returns -1 if cpus is empty.
func Assign(cpus []int, i int) int {
	if len(cpus) == 0 {
		return -1
	}
	return cpus[i%len(cpus)]
}
