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
	"sort"
	"testing"
)

const testPageSize = 4096

func TestPageBatchAssign(t *testing.T) {
	const numPages = 8
	nodes := []Node{0, 2, 5}
	base := uintptr(0x7f0000000000)

	b := newPageBatch(numPages)
	next := b.assign(base, testPageSize, nodes, 0)

	if b.Len() != numPages {
		t.Fatalf("batch length %d, expected %d", b.Len(), numPages)
	}
	if len(b.status) != numPages {
		t.Fatalf("status length %d, expected %d", len(b.status), numPages)
	}

	// every page covered once, every destination a discovered node
	allowed := map[int32]bool{}
	for _, n := range nodes {
		allowed[int32(n)] = true
	}
	seen := map[uintptr]bool{}
	for i := 0; i < numPages; i++ {
		if !allowed[b.dest[i]] {
			t.Errorf("destination %d is not a discovered node", b.dest[i])
		}
		seen[b.pages[i]] = true
	}
	for i := 0; i < numPages; i++ {
		addr := base + uintptr(i)*testPageSize
		if !seen[addr] {
			t.Errorf("page %#x missing from the batch", addr)
		}
	}

	// nodes are assigned in cyclic order, so after 8 pages over 3
	// nodes the next round continues at index 8 % 3
	if next != numPages%len(nodes) {
		t.Errorf("next node index %d, expected %d", next, numPages%len(nodes))
	}
}

func TestPageBatchCursorRotation(t *testing.T) {
	const numPages = 4
	nodes := []Node{0, 1}
	base := uintptr(0x1000)

	b := newPageBatch(numPages)
	b.assign(base, testPageSize, nodes, 0)
	first := append([]int32{}, b.dest...)

	// the extra bump makes the next round pair pages differently
	b.bump()
	b.assign(base, testPageSize, nodes, 0)

	same := true
	for i := range first {
		if first[i] != b.dest[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("cursor rotation did not change the page/node pairing")
	}
}

func TestPageBatchShuffle(t *testing.T) {
	const numPages = 64
	nodes := []Node{0, 1, 2}
	base := uintptr(0x1000)

	b := newPageBatch(numPages)
	b.assign(base, testPageSize, nodes, 0)

	origPages := append([]uintptr{}, b.pages...)
	origDest := append([]int32{}, b.dest...)

	rnd := rand.New(rand.NewSource(42))
	b.shufflePages(rnd)
	b.shuffleNodes(rnd)

	// a permutation preserves the multiset of both lists
	sortUintptrs(origPages)
	gotPages := append([]uintptr{}, b.pages...)
	sortUintptrs(gotPages)
	for i := range origPages {
		if origPages[i] != gotPages[i] {
			t.Fatal("page shuffle is not a permutation")
		}
	}

	sortInt32s(origDest)
	gotDest := append([]int32{}, b.dest...)
	sortInt32s(gotDest)
	for i := range origDest {
		if origDest[i] != gotDest[i] {
			t.Fatal("node shuffle is not a permutation")
		}
	}
}

func TestPageBatchClearStatus(t *testing.T) {
	b := newPageBatch(4)
	for i := range b.status {
		b.status[i] = -14
	}
	b.clearStatus()
	for i, s := range b.Status() {
		if s != 0 {
			t.Errorf("status[%d] = %d after clear", i, s)
		}
	}
}

func sortUintptrs(s []uintptr) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}

func sortInt32s(s []int32) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
