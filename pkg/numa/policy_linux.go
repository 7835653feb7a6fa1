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
	"golang.org/x/sys/unix"
)

// exercisePolicy runs the per-iteration policy mutation matrix against
// the stressed region and advances the topology cursor. It returns
// false when the loop should drain.
func (e *Engine) exercisePolicy() bool {
	addr := e.region.Addr()
	size := e.region.Size()
	maxNodes := e.topo.MaxNodes()
	node := e.topo.Nodes().Current()

	var mode int32
	e.mask.Clear()

	// current policy and node mask of the stressed region
	err := getMempolicy(&mode, e.mask, maxNodes, addr, MPOL_F_ADDR)
	e.classify("get_mempolicy", err)

	// deliberately malformed queries, results discarded
	e.discard("get_mempolicy zero maxnode",
		getMempolicy(&mode, e.mask, 0, addr, MPOL_F_NODE))
	e.discard("get_mempolicy invalid flags",
		getMempolicy(&mode, e.mask, maxNodes, addr, ^uint(0)))
	e.discard("get_mempolicy NULL addr",
		getMempolicy(&mode, e.mask, maxNodes, 0, MPOL_F_ADDR))
	e.discard("get_mempolicy MPOL_F_NODE",
		getMempolicy(&mode, e.mask, maxNodes, addr, MPOL_F_NODE))
	e.discard("get_mempolicy MPOL_F_MEMS_ALLOWED",
		getMempolicy(&mode, e.mask, maxNodes, addr, MPOL_F_MEMS_ALLOWED))
	e.discard("get_mempolicy MPOL_F_MEMS_ALLOWED|MPOL_F_NODE",
		getMempolicy(&mode, e.mask, maxNodes, addr, MPOL_F_MEMS_ALLOWED|MPOL_F_NODE))

	if !e.checkContinue() {
		return false
	}

	// reset to preferred placement with no explicit mask
	err = setMempolicy(MPOL_PREFERRED, nil, maxNodes)
	e.classify("set_mempolicy", err)

	e.region.TouchLight()
	if !e.checkContinue() {
		return false
	}

	e.applyRandomPolicy()

	// fetch cpu and node purely for stress; the second call passes a
	// non-nil tcache pointer in case a future kernel starts using it
	_, _, _ = getcpu(nil)
	var cache getcpuCache
	_, _, _ = getcpu(&cache)

	if !e.bindToNode(node) {
		return false
	}

	e.exerciseMalformedBinds()

	// mbind with MPOL_MF_MOVE_ALL needs CAP_SYS_NICE; succeeding
	// without it is a kernel misbehavior worth flagging
	if !e.capSysNice {
		if err := mbind(addr, size, MPOL_BIND, e.mask, maxNodes, MPOL_MF_MOVE_ALL); err == nil {
			e.reportFailure("mbind with MPOL_MF_MOVE_ALL unexpectedly succeeded without CAP_SYS_NICE")
		}
	}

	// next iteration targets the next node
	e.topo.Nodes().Next()
	return true
}

// applyRandomPolicy picks one entry of the policy matrix uniformly at
// random and applies it as the new process policy, optionally combined
// with independently chosen static/relative node modifier flags. All
// results are discarded: invalid entries are expected to be rejected
// and kernel-dependent ones may be.
func (e *Engine) applyRandomPolicy() {
	choice := e.choices[e.rnd.Intn(len(e.choices))]

	mode := choice.mode
	if !choice.noModifiers {
		if e.rnd.Intn(2) == 1 {
			mode |= MPOL_F_STATIC_NODES
		}
		if e.rnd.Intn(2) == 1 {
			mode |= MPOL_F_RELATIVE_NODES
		}
	}

	mask := e.mask
	if !choice.useMask {
		mask = nil
	}
	e.discard("set_mempolicy "+choice.name,
		setMempolicy(mode, mask, e.topo.MaxNodes()))
}

// bindToNode binds the stressed region to the given node, first with
// strict placement and then with the default flag. Strict placement may
// legitimately fail with EIO when pages cannot be moved; either variant
// succeeding also sets the region's home node.
func (e *Engine) bindToNode(node Node) bool {
	addr := e.region.Addr()
	size := e.region.Size()
	maxNodes := e.topo.MaxNodes()

	e.mask.Clear()
	e.mask.Set(node)
	err := mbind(addr, size, MPOL_BIND, e.mask, maxNodes, MPOL_MF_STRICT)
	if err != nil {
		e.classify("mbind MPOL_MF_STRICT", err, unix.EIO)
	} else {
		e.discard("set_mempolicy_home_node",
			setMempolicyHomeNode(addr, size, uint64(node), 0))
		e.region.TouchLight()
	}
	if !e.checkContinue() {
		return false
	}

	// exercise set_mempolicy_home_node with edge parameters
	e.discard("set_mempolicy_home_node maxnode-1",
		setMempolicyHomeNode(addr, size, maxNodes-1, 0))
	e.discard("set_mempolicy_home_node node 1",
		setMempolicyHomeNode(addr, size, 1, 0))
	e.discard("set_mempolicy_home_node zero length",
		setMempolicyHomeNode(addr, 0, uint64(node), 0))
	e.discard("set_mempolicy_home_node",
		setMempolicyHomeNode(addr, size, uint64(node), 0))

	e.mask.Clear()
	e.mask.Set(node)
	err = mbind(addr, size, MPOL_BIND, e.mask, maxNodes, MPOL_DEFAULT)
	if err != nil {
		e.classify("mbind MPOL_DEFAULT", err, unix.EIO)
	} else {
		e.discard("set_mempolicy_home_node",
			setMempolicyHomeNode(addr, size, uint64(node), 0))
		e.region.TouchLight()
	}
	return e.checkContinue()
}

// exerciseMalformedBinds issues the deliberately bad mbind parameter
// matrix. Every result is discarded; the calls only probe that the
// kernel rejects them without misbehaving.
func (e *Engine) exerciseMalformedBinds() {
	addr := e.region.Addr()
	size := e.region.Size()
	maxNodes := e.topo.MaxNodes()
	pageSize := uint64(e.args.PageSize)

	e.discard("mbind misaligned addr",
		mbind(addr+7, size, MPOL_BIND, e.mask, maxNodes, MPOL_MF_STRICT))

	// a range wrapping the top of the address space
	wrapAddr := ^uintptr(0) &^ uintptr(pageSize-1)
	e.discard("mbind wrapping range",
		mbind(wrapAddr, pageSize*2, MPOL_BIND, e.mask, maxNodes, MPOL_MF_STRICT))

	e.discard("mbind oversized length",
		mbind(addr, ^uint64(0), MPOL_BIND, e.mask, maxNodes, MPOL_MF_STRICT))

	// zero length is allowed, a legal no-op
	e.discard("mbind zero length",
		mbind(addr, 0, MPOL_BIND, e.mask, maxNodes, MPOL_MF_STRICT))

	e.discard("mbind zero maxnode",
		mbind(addr, size, MPOL_BIND, e.mask, 0, MPOL_MF_STRICT))
	e.discard("mbind saturated maxnode",
		mbind(addr, size, MPOL_BIND, e.mask, 0xffffffff, MPOL_MF_STRICT))

	e.discard("mbind invalid flags",
		mbind(addr, size, MPOL_BIND, e.mask, maxNodes, ^uint(0)))
}
