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

const maskWordBits = 64

// NodeMask is a node-count-sized bit vector describing "which nodes" to
// the policy and migration calls. Bit 0 of word 0 is node 0.
type NodeMask []uint64

// NewNodeMask returns a mask with capacity for maxNodes node ids.
func NewNodeMask(maxNodes uint64) NodeMask {
	words := (maxNodes + maskWordBits - 1) / maskWordBits
	if words == 0 {
		words = 1
	}
	return make(NodeMask, words)
}

// Capacity returns the number of node ids the mask can hold.
func (m NodeMask) Capacity() uint64 {
	return uint64(len(m)) * maskWordBits
}

// Clear zeroes all bits.
func (m NodeMask) Clear() {
	for i := range m {
		m[i] = 0
	}
}

// Fill sets every byte of every word to the given value.
func (m NodeMask) Fill(value byte) {
	word := uint64(0)
	for shift := 0; shift < maskWordBits; shift += 8 {
		word |= uint64(value) << shift
	}
	for i := range m {
		m[i] = word
	}
}

// Set sets the bit of the given node id. Ids beyond the mask capacity
// are rejected and leave the mask unchanged: passing them through would
// be undefined behavior on the kernel side.
func (m NodeMask) Set(node Node) bool {
	if node < 0 || uint64(node) >= m.Capacity() {
		return false
	}
	m[node/maskWordBits] |= uint64(1) << (uint64(node) % maskWordBits)
	return true
}

// IsSet returns true if the bit of the given node id is set.
func (m NodeMask) IsSet(node Node) bool {
	if node < 0 || uint64(node) >= m.Capacity() {
		return false
	}
	return m[node/maskWordBits]&(uint64(1)<<(uint64(node)%maskWordBits)) != 0
}
