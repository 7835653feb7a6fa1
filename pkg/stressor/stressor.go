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

// Package stressor defines the contract between a stressor engine and the
// harness driving it: run arguments, the bogo-operation counter, the final
// run status, and the named-metric sink.
package stressor

import (
	"errors"
	"sync/atomic"
)

// Status is the final result of one stressor run.
type Status int

const (
	// Success means the run completed without reported failures.
	Success Status = iota
	// NoResource means a required resource was missing and the whole
	// exercise was skipped. Not a failure.
	NoResource
	// Failure means at least one legitimate call failed unexpectedly
	// or a verification check did not hold.
	Failure
)

// String returns a human readable run status.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case NoResource:
		return "skipped (no resource)"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// ErrNoResource marks init errors that should skip the run instead of
// failing it.
var ErrNoResource = errors.New("no resource")

// Stressor is the engine contract exposed to the harness.
type Stressor interface {
	// Init discovers resources and prepares the run. An error wrapping
	// ErrNoResource turns the run into a skip.
	Init() error
	// Run executes the exercise loop until the continue predicate goes
	// false or the run deadline fires.
	Run() Status
	// Teardown releases all resources. Safe to call on any path out of
	// Init or Run.
	Teardown() error
}

// Args carries the per-instance run context given by the harness.
type Args struct {
	// Name is the stressor name used in diagnostics.
	Name string
	// Instance is the index of this instance, 0..Instances-1.
	Instance int
	// Instances is the total number of concurrently run instances.
	Instances int
	// Pid is the process id the engine operates on.
	Pid int
	// PageSize is the system page size in bytes.
	PageSize int
	// Continue is evaluated at loop boundaries; the loop drains once it
	// returns false.
	Continue func() bool
	// Metrics receives named run metrics, may be nil.
	Metrics Sink

	bogoOps atomic.Uint64
}

// BogoInc counts one completed exercise iteration.
func (a *Args) BogoInc() {
	a.bogoOps.Add(1)
}

// BogoOps returns the number of completed iterations so far.
func (a *Args) BogoOps() uint64 {
	return a.bogoOps.Load()
}
