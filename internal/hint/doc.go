// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hint provides non-binding processor hints for queue hot paths.
//
// Hints affect performance only. Every hint has a no-op fallback on
// architectures without a matching instruction, and callers must not
// depend on a hint having any effect.
package hint
