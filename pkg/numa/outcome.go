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
)

// Tally counts classified kernel call outcomes over one run. All
// classification is local per call, nothing unwinds the loop; the final
// run status only depends on the reported-failure count. The counters
// are atomic because a metrics scrape may read them while the engine
// loop is running.
type Tally struct {
	skipped   atomic.Uint64 // ENOSYS, feature absent on this kernel
	tolerated atomic.Uint64 // expected errnos on legitimate calls
	reported  atomic.Uint64 // unexpected outcomes, fail the run
}

// Skipped returns the number of calls skipped because the kernel lacks
// the feature.
func (t *Tally) Skipped() uint64 {
	return t.skipped.Load()
}

// Tolerated returns the number of legitimate calls that failed with an
// expected errno.
func (t *Tally) Tolerated() uint64 {
	return t.tolerated.Load()
}

// Reported returns the number of reported failures.
func (t *Tally) Reported() uint64 {
	return t.reported.Load()
}
