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
	"testing"
)

func TestNodeMaskRoundTrip(t *testing.T) {
	mask := NewNodeMask(130)

	if len(mask) != 3 {
		t.Fatalf("expected 3 words for 130 nodes, got %d", len(mask))
	}

	for node := Node(0); uint64(node) < mask.Capacity(); node++ {
		if mask.IsSet(node) {
			t.Fatalf("untouched bit %d is set", node)
		}
	}

	for _, node := range []Node{0, 1, 63, 64, 127, 128} {
		if !mask.Set(node) {
			t.Errorf("Set(%d) rejected a valid node", node)
		}
		if !mask.IsSet(node) {
			t.Errorf("bit %d not set after Set", node)
		}
	}

	if mask.IsSet(2) {
		t.Error("bit 2 set without Set")
	}
}

func TestNodeMaskOutOfRange(t *testing.T) {
	mask := NewNodeMask(64)

	if mask.Set(Node(mask.Capacity())) {
		t.Error("Set beyond capacity was accepted")
	}
	if mask.Set(-1) {
		t.Error("Set of a negative node was accepted")
	}
	for i := range mask {
		if mask[i] != 0 {
			t.Errorf("word %d modified by a rejected Set", i)
		}
	}
}

func TestNodeMaskFillClear(t *testing.T) {
	mask := NewNodeMask(64)

	mask.Fill(0xff)
	for node := Node(0); uint64(node) < mask.Capacity(); node++ {
		if !mask.IsSet(node) {
			t.Fatalf("bit %d clear after Fill(0xff)", node)
		}
	}

	mask.Fill(0x01)
	if mask[0] != 0x0101010101010101 {
		t.Errorf("Fill(0x01) produced %#x", mask[0])
	}

	mask.Clear()
	for i := range mask {
		if mask[i] != 0 {
			t.Errorf("word %d not zero after Clear", i)
		}
	}
}

func TestNodeMaskZeroNodes(t *testing.T) {
	// even a zero-node mask keeps one word so the kernel always gets
	// a valid pointer
	mask := NewNodeMask(0)
	if len(mask) != 1 {
		t.Errorf("expected 1 word, got %d", len(mask))
	}
}
