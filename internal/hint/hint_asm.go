// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64

package hint

import "unsafe"

// Available reports whether Prefetch issues a real instruction.
const Available = true

// Prefetch asks the CPU to pull the cache line holding addr into L1.
//
// amd64: PREFETCHT0
// arm64: PRFM PLDL1KEEP
//
// The address is never dereferenced, so any pointer into a live
// allocation is safe.
//
//go:noescape
func Prefetch(addr unsafe.Pointer)
