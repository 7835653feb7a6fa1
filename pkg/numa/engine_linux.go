//go:build linux
// +build linux

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
	"fmt"
	"math/rand"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	logger "github.com/stress-tools/numastress/pkg/log"
	"github.com/stress-tools/numastress/pkg/stressor"
)

// moveRounds is the number of batched page-move rounds per iteration.
const moveRounds = 16

// runState tracks the engine through one run.
type runState int

const (
	stateInit runState = iota
	stateTopologyReady
	stateLooping
	stateDraining    // continue predicate went false
	stateInterrupted // run deadline fired
	stateTeardown
)

// Engine is one single-threaded NUMA stressor instance. It mutates the
// placement policy of its own stressed region and migrates the region's
// pages between the allowed nodes, classifying every kernel call
// outcome. Instances share no in-process state; only the kernel and the
// read-only statistics files are shared with other processes.
type Engine struct {
	args   *stressor.Args
	config Config
	log    logger.Logger

	topo       *Topology
	mask       NodeMask
	oldMask    NodeMask
	region     *Region
	batch      *PageBatch
	guard      *TimeoutGuard
	rnd        *rand.Rand
	choices    []policyChoice
	capSysNice bool
	nodeIdx    int // page-assignment node cycle position within one iteration

	state runState
	tally Tally
}

// New creates an engine instance for the given run context and options.
func New(args *stressor.Args, config Config) *Engine {
	if args.Continue == nil {
		args.Continue = func() bool { return true }
	}
	return &Engine{
		args:   args,
		config: config,
		log:    logger.NewLogger(args.Name),
		guard:  NewTimeoutGuard(),
		rnd: rand.New(rand.NewSource(
			time.Now().UnixNano() ^ int64(args.Instance)<<32)),
	}
}

// Tally returns the per-run outcome counters.
func (e *Engine) Tally() *Tally {
	return &e.tally
}

// Init discovers the node topology and maps the stressed region. Any
// failure here wraps stressor.ErrNoResource: a machine without usable
// NUMA state skips the exercise instead of failing it.
func (e *Engine) Init() error {
	e.state = stateInit

	topo, err := DiscoverTopology()
	if err != nil {
		return fmt.Errorf("%w: %v", stressor.ErrNoResource, err)
	}
	if topo.NodeCount() < 1 {
		return fmt.Errorf("%w: no NUMA nodes found", stressor.ErrNoResource)
	}
	e.topo = topo

	size := regionBytes(e.config.Bytes, e.args.Instances, e.args.PageSize)
	if e.args.Instance == 0 {
		e.log.Info("system has %d of a maximum %d memory NUMA nodes, using %d MB mappings per instance",
			topo.NodeCount(), topo.MaxNodes(), size/(1024*1024))
	}

	e.mask = NewNodeMask(topo.MaxNodes())
	e.oldMask = NewNodeMask(topo.MaxNodes())

	region, err := mapRegion(size, e.args.PageSize)
	if err != nil {
		return fmt.Errorf("%w: %v", stressor.ErrNoResource, err)
	}
	e.region = region
	e.batch = newPageBatch(region.Pages())

	e.choices = policyChoices()
	e.capSysNice = hasCapability(capSysNice)

	e.state = stateTopologyReady
	return nil
}

// Run executes the exercise loop until the continue predicate goes
// false or the deadline fires, then derives the hit/miss rates and the
// final status. Partial metrics are reported even on the interrupted
// path.
func (e *Engine) Run() stressor.Status {
	if e.state != stateTopologyReady {
		e.log.Error("run attempted before successful init")
		return stressor.Failure
	}

	e.guard.Arm(e.config.Timeout)
	defer e.guard.Disarm()

	statsBegin := ReadCounters()
	started := time.Now()
	e.state = stateLooping

	for e.checkContinue() {
		if !e.exercisePolicy() {
			break
		}
		if !e.exerciseMigration() {
			break
		}
		e.args.BogoInc()
	}

	elapsed := time.Since(started).Seconds()
	statsEnd := ReadCounters()

	if e.args.Metrics != nil {
		e.args.Metrics.Set("NUMA hits per sec",
			Rate(statsBegin.Hit, statsEnd.Hit, elapsed), stressor.GeometricMean)
		e.args.Metrics.Set("NUMA misses per sec",
			Rate(statsBegin.Miss, statsEnd.Miss, elapsed), stressor.GeometricMean)
	}

	if e.state == stateInterrupted {
		e.log.Info("run deadline fired after %d ops, unwinding", e.args.BogoOps())
	}
	e.log.Debug("outcomes: %d skipped (ENOSYS), %d tolerated, %d reported failures",
		e.tally.Skipped(), e.tally.Tolerated(), e.tally.Reported())

	if e.tally.Reported() > 0 {
		return stressor.Failure
	}
	return stressor.Success
}

// Teardown releases the mapped region and all auxiliary arrays. It is
// safe on every path out of Init and Run.
func (e *Engine) Teardown() error {
	e.state = stateTeardown

	var errs *multierror.Error
	if e.region != nil {
		errs = multierror.Append(errs, e.region.Unmap())
		e.region = nil
	}
	e.batch = nil
	e.mask = nil
	e.oldMask = nil
	e.topo = nil
	return errs.ErrorOrNil()
}

// checkContinue polls the cancellation token and the harness predicate
// at iteration and phase boundaries.
func (e *Engine) checkContinue() bool {
	if e.guard.Expired() {
		e.state = stateInterrupted
		return false
	}
	if !e.args.Continue() {
		e.state = stateDraining
		return false
	}
	return true
}

// classify folds the outcome of a legitimate kernel call into the run
// tally: nil is success, ENOSYS means the feature is absent on this
// kernel and is skipped silently, listed errnos are tolerated, anything
// else is a reported failure. The loop always continues.
func (e *Engine) classify(call string, err error, expected ...unix.Errno) bool {
	if err == nil {
		return true
	}
	errno, ok := err.(unix.Errno)
	if !ok {
		e.reportFailure("%s failed: %v", call, err)
		return false
	}
	if errno == unix.ENOSYS {
		e.tally.skipped.Add(1)
		return true
	}
	for _, want := range expected {
		if errno == want {
			e.tally.tolerated.Add(1)
			return true
		}
	}
	e.reportFailure("%s failed, errno=%d (%v)", call, int(errno), errno)
	return false
}

// reportFailure logs and tallies an unexpected outcome without
// aborting the run.
func (e *Engine) reportFailure(format string, args ...interface{}) {
	e.tally.reported.Add(1)
	e.log.Error(format, args...)
}

// discard drops the result of a deliberately malformed call. These
// calls only exist to confirm the kernel rejects bad input gracefully;
// their errors are expected and logged at debug level only.
func (e *Engine) discard(call string, err error) {
	if err != nil {
		e.log.Debug("%s: %v (discarded)", call, err)
	}
}
