// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package affinity

// Pin is not supported on this platform. release is a no-op.
func Pin(cpu int) (release func(), err error) {
	return func() {}, ErrUnsupported
}

// Allowed is not supported on this platform.
func Allowed() ([]int, error) {
	return nil, ErrUnsupported
}
