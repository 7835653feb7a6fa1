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
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Node is one NUMA memory node id.
type Node int

// procStatusPath is the status pseudo-file the allowed node set is read
// from. A variable so tests can point it at a fixture.
var procStatusPath = "/proc/self/status"

const memsAllowedPrefix = "Mems_allowed:"

// NodeList is the ordered collection of nodes the process is allowed to
// use, traversed cyclically with a rotating cursor.
type NodeList struct {
	nodes  []Node
	cursor int
}

func newNodeList(nodes []Node) *NodeList {
	return &NodeList{nodes: nodes}
}

// Count returns the number of nodes in the list.
func (nl *NodeList) Count() int {
	return len(nl.nodes)
}

// Nodes returns the node ids in discovery order.
func (nl *NodeList) Nodes() []Node {
	return nl.nodes
}

// Current returns the node under the cursor.
func (nl *NodeList) Current() Node {
	return nl.nodes[nl.cursor]
}

// Position returns the cursor index of the current node.
func (nl *NodeList) Position() int {
	return nl.cursor
}

// Next advances the cursor one node, wrapping at the end of the list,
// and returns the new current node.
func (nl *NodeList) Next() Node {
	nl.cursor = (nl.cursor + 1) % len(nl.nodes)
	return nl.nodes[nl.cursor]
}

// Topology is the discovered memory node topology of the process.
type Topology struct {
	list     *NodeList
	maxNodes uint64
}

// NodeCount returns the number of allowed nodes.
func (t *Topology) NodeCount() int {
	return t.list.Count()
}

// MaxNodes returns the highest scanned node id + 1, the maxnode argument
// for the policy and migration calls.
func (t *Topology) MaxNodes() uint64 {
	return t.maxNodes
}

// Nodes returns the traversal structure over the allowed nodes.
func (t *Topology) Nodes() *NodeList {
	return t.list
}

// DiscoverTopology reads the process-wide allowed memory node set and
// returns it together with the maximum node count. It runs once at
// engine startup.
func DiscoverTopology() (*Topology, error) {
	f, err := os.Open(procStatusPath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", procStatusPath)
	}
	defer f.Close()

	var field string
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, memsAllowedPrefix) {
			field = strings.TrimSpace(line[len(memsAllowedPrefix):])
			found = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", procStatusPath)
	}
	if !found {
		return nil, errors.Errorf("no %q field in %s", memsAllowedPrefix, procStatusPath)
	}

	nodes, maxNodes, err := parseMemsAllowed(field)
	if err != nil {
		return nil, err
	}
	return &Topology{
		list:     newNodeList(nodes),
		maxNodes: maxNodes,
	}, nil
}

// parseMemsAllowed parses the hex node bitmask of a Mems_allowed field.
// The least significant node bit is the rightmost character, so the
// field is scanned from its last character backward toward its start.
func parseMemsAllowed(field string) ([]Node, uint64, error) {
	reversed := make([]byte, 0, len(field))
	for i := len(field) - 1; i >= 0; i-- {
		reversed = append(reversed, field[i])
	}
	return parseNodeDigits(string(reversed))
}

// parseNodeDigits decodes a node bitmask from hex digits given in scan
// order, least significant digit first. One digit encodes 4 consecutive
// node ids, bit 0 being the lowest id of the nibble. Commas are group
// separators and are skipped; a zero nibble contributes no nodes but
// still advances the running node id by 4.
func parseNodeDigits(digits string) ([]Node, uint64, error) {
	nodes := []Node{}
	nodeID := uint64(0)
	for i := 0; i < len(digits); i++ {
		ch := digits[i]
		if ch == ',' {
			continue
		}
		val := hexToInt(ch)
		if val < 0 {
			return nil, 0, errors.Errorf("invalid hex digit %q in node mask", ch)
		}
		for bit := 0; bit < 4; bit++ {
			if val&(1<<bit) != 0 {
				nodes = append(nodes, Node(nodeID))
			}
			nodeID++
		}
	}
	return nodes, nodeID, nil
}

func hexToInt(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}
