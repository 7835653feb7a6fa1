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

// exerciseMigration migrates the whole page set toward the current
// traversal node, runs the batched page-move rounds and finishes with
// the malformed move_pages matrix. It returns false when the loop
// should drain.
func (e *Engine) exerciseMigration() bool {
	pid := e.args.Pid
	maxNodes := e.topo.MaxNodes()
	node := e.topo.Nodes().Current()

	// the page-assignment cycle restarts at the traversal node every
	// iteration; only the batch's rotating cursor carries over
	e.anchorNodeIdx()

	// migrate everything away from "all nodes" toward the current node;
	// not strictly important, so failure is only reported
	e.oldMask.Fill(0xff)
	e.mask.Clear()
	e.mask.Set(node)
	e.classify("migrate_pages", migratePages(pid, maxNodes, e.oldMask, e.mask))

	e.discard("migrate_pages invalid pid",
		migratePages(-1, maxNodes, e.oldMask, e.mask))
	e.discard("migrate_pages saturated maxnode",
		migratePages(pid, ^uint64(0), e.oldMask, e.mask))
	e.discard("migrate_pages zero maxnode",
		migratePages(pid, 0, e.oldMask, e.mask))

	if !e.checkContinue() {
		return false
	}

	if !e.movePageRounds() {
		return false
	}

	e.exerciseMalformedMoves()
	return true
}

// anchorNodeIdx restarts the page-assignment node cycle at the current
// traversal node.
func (e *Engine) anchorNodeIdx() {
	e.nodeIdx = e.topo.Nodes().Position()
}

// movePageRounds reassigns every page to the next node in cyclic order
// and issues one batched move per round. The node cycle starts at the
// current traversal node and persists across the rounds of one
// iteration.
func (e *Engine) movePageRounds() bool {
	base := e.region.Addr()
	nodes := e.topo.Nodes().Nodes()
	count := uint64(e.batch.Len())

	for round := 0; round < moveRounds; round++ {
		e.nodeIdx = e.batch.assign(base, e.args.PageSize, nodes, e.nodeIdx)

		if e.config.ShuffleAddr {
			e.batch.shufflePages(e.rnd)
		}
		if e.config.ShuffleNode {
			e.batch.shuffleNodes(e.rnd)
		}

		// bump the cursor so the next round pairs pages differently
		e.batch.bump()

		e.batch.clearStatus()
		err := movePages(e.args.Pid, count, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE)
		e.classify("move_pages", err)

		e.region.TouchLight()
		e.region.Rehint()

		if !e.checkContinue() {
			return false
		}
	}
	return true
}

// exerciseMalformedMoves issues the deliberately bad move_pages
// parameter matrix; all results are discarded.
func (e *Engine) exerciseMalformedMoves() {
	pid := e.args.Pid
	count := uint64(e.batch.Len())

	// MPOL_MF_MOVE_ALL needs privilege, best effort only
	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages MPOL_MF_MOVE_ALL",
		movePages(pid, count, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE_ALL))

	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages invalid pid",
		movePages(-1, 1, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE))

	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages zero count",
		movePages(pid, 0, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE))

	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages invalid flags",
		movePages(pid, 1, e.batch.pages, e.batch.dest, e.batch.status, ^0))

	// zero flags are legal, the call queries placement and must succeed
	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages zero flags",
		movePages(pid, 1, e.batch.pages, e.batch.dest, e.batch.status, 0))

	e.batch.clearStatus()
	e.batch.pages[0] = ^uintptr(0) &^ uintptr(e.args.PageSize-1)
	e.discard("move_pages invalid addr",
		movePages(pid, 1, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE))

	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.batch.dest[0] = -1
	e.discard("move_pages invalid dest node",
		movePages(pid, 1, e.batch.pages, e.batch.dest, e.batch.status, MPOL_MF_MOVE))

	e.batch.clearStatus()
	e.batch.pages[0] = e.region.Addr()
	e.discard("move_pages NULL nodes",
		movePages(pid, 1, e.batch.pages, nil, e.batch.status, MPOL_MF_MOVE))
}
