// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpmc

import (
	"runtime"
	"time"

	"code.hybscloud.com/spin"
)

// Stall escalation thresholds, counted in consecutive stale-cursor retries.
const (
	stallSpin  = 10
	stallYield = 100
	stallSleep = 50 * time.Nanosecond
)

// stall is the per-call wait policy used while another goroutine finishes
// its half of a slot handoff.
//
// It escalates from CPU pause to scheduler yield to a short sleep. It is only
// used on the stale-cursor path: full and empty return at once, and a lost
// CAS retries immediately.
type stall struct {
	n  int
	sw spin.Wait
}

// wait blocks for one escalation step and reports whether the caller may
// keep retrying under limit (0 means unbounded).
func (s *stall) wait(limit int) bool {
	s.n++
	if limit > 0 && s.n > limit {
		return false
	}
	switch {
	case s.n < stallSpin:
		s.sw.Once()
	case s.n < stallYield:
		runtime.Gosched()
	default:
		time.Sleep(stallSleep)
	}
	return true
}

// reset restarts escalation after progress was observed.
func (s *stall) reset() {
	s.n = 0
	s.sw = spin.Wait{}
}

// stage reports the escalation step the next wait will take:
// 1 pause, 2 yield, 3 sleep.
func (s *stall) stage() int {
	switch n := s.n + 1; {
	case n < stallSpin:
		return 1
	case n < stallYield:
		return 2
	default:
		return 3
	}
}
