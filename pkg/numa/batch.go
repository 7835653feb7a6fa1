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
	"math/rand"
)

// PageBatch holds one bulk page-move request: per-page addresses into the
// stressed region, destination node ids and kernel-reported status codes,
// all of the same length. The rotating cursor persists across rounds so
// successive rounds reassign pages to different nodes.
type PageBatch struct {
	pages  []uintptr
	dest   []int32
	status []int32
	cursor int
}

func newPageBatch(numPages int) *PageBatch {
	return &PageBatch{
		pages:  make([]uintptr, numPages),
		dest:   make([]int32, numPages),
		status: make([]int32, numPages),
	}
}

// Len returns the number of pages in the batch.
func (b *PageBatch) Len() int {
	return len(b.pages)
}

// assign gives every page of the region its address and the next node in
// cyclic order, starting from node index nodeIdx and writing through the
// rotating cursor. It returns the node index where the next round should
// continue.
func (b *PageBatch) assign(base uintptr, pageSize int, nodes []Node, nodeIdx int) int {
	for i := 0; i < len(b.pages); i++ {
		b.pages[b.cursor] = base + uintptr(i)*uintptr(pageSize)
		b.dest[b.cursor] = int32(nodes[nodeIdx])
		b.cursor = (b.cursor + 1) % len(b.pages)
		nodeIdx = (nodeIdx + 1) % len(nodes)
	}
	return nodeIdx
}

// bump advances the rotating cursor one extra slot so the next assign
// pass pairs pages with different nodes.
func (b *PageBatch) bump() {
	b.cursor = (b.cursor + 1) % len(b.pages)
}

// shufflePages permutes the page address list uniformly at random.
func (b *PageBatch) shufflePages(rnd *rand.Rand) {
	rnd.Shuffle(len(b.pages), func(i, j int) {
		b.pages[i], b.pages[j] = b.pages[j], b.pages[i]
	})
}

// shuffleNodes permutes the destination node list uniformly at random,
// independently of the page addresses.
func (b *PageBatch) shuffleNodes(rnd *rand.Rand) {
	rnd.Shuffle(len(b.dest), func(i, j int) {
		b.dest[i], b.dest[j] = b.dest[j], b.dest[i]
	})
}

// clearStatus zeroes the per-page status codes before a move call.
func (b *PageBatch) clearStatus() {
	for i := range b.status {
		b.status[i] = 0
	}
}

// Status returns the kernel-reported per-page status codes of the last
// move call.
func (b *PageBatch) Status() []int32 {
	return b.status
}
