// Copyright 2024 The numastress Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package numa

import (
	"sync/atomic"
	"time"
)

// TimeoutGuard cancels the exercise loop when the run deadline expires.
// It is an explicit cancellation token set by a timer: the loop polls
// Expired at iteration and phase boundaries and unwinds in place. The
// token is one-shot, a second expiry of a re-armed timer cannot
// re-trigger an already delivered cancellation.
//
// A very long individual kernel call is not preemptible this way; the
// engine bounds that by capping the region size per call.
type TimeoutGuard struct {
	timer *time.Timer
	fired atomic.Bool
}

// NewTimeoutGuard returns an unarmed guard.
func NewTimeoutGuard() *TimeoutGuard {
	return &TimeoutGuard{}
}

// Arm starts the deadline timer. A non-positive duration leaves the
// guard unarmed. Re-arming replaces the previous deadline.
func (g *TimeoutGuard) Arm(d time.Duration) {
	g.Disarm()
	if d <= 0 {
		return
	}
	g.timer = time.AfterFunc(d, g.fire)
}

// Disarm stops the deadline timer. Called on both the normal and the
// interrupted exit path.
func (g *TimeoutGuard) Disarm() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Expired returns true once the deadline has fired.
func (g *TimeoutGuard) Expired() bool {
	return g.fired.Load()
}

func (g *TimeoutGuard) fire() {
	// one-shot: only the first expiry flips the token
	g.fired.CompareAndSwap(false, true)
}
