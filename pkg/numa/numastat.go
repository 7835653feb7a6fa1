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
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// sysNodePath is the sysfs directory enumerating per-node statistics.
// A variable so tests can point it at a fixture tree.
var sysNodePath = "/sys/devices/system/node"

var nodeDirRegexp = regexp.MustCompile(`^node(\d+)$`)

// Counters is one sample of the kernel-reported allocation counters.
type Counters struct {
	Hit  uint64
	Miss uint64
}

func (c *Counters) add(other Counters) {
	c.Hit += other.Hit
	c.Miss += other.Miss
}

// ReadCounters sums numa_hit and numa_miss over all node directories.
// A missing directory or statistics file yields zero counters, never an
// error: the sampling is best effort.
func ReadCounters() Counters {
	_, total := ReadNodeCounters()
	return total
}

// ReadNodeCounters returns the per-node counters and their sum.
func ReadNodeCounters() (map[int]Counters, Counters) {
	perNode := map[int]Counters{}
	total := Counters{}

	entries, err := os.ReadDir(sysNodePath)
	if err != nil {
		return perNode, total
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := nodeDirRegexp.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		// the regexp guarantees a valid non-negative integer
		nodeID, _ := strconv.Atoi(m[1])

		c, ok := readNumastat(filepath.Join(sysNodePath, e.Name(), "numastat"))
		if !ok {
			continue
		}
		perNode[nodeID] = c
		total.add(c)
	}
	return perNode, total
}

// readNumastat accumulates the numa_hit and numa_miss counters from one
// numastat file by line-prefix matching.
func readNumastat(path string) (Counters, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Counters{}, false
	}
	defer f.Close()

	c := Counters{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "numa_hit "):
			c.Hit += parseCounter(line[len("numa_hit "):])
		case strings.HasPrefix(line, "numa_miss "):
			c.Miss += parseCounter(line[len("numa_miss "):])
		}
	}
	return c, true
}

func parseCounter(s string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Rate derives a per-second rate from two counter samples. A non-positive
// elapsed time or a counter that went backwards yields 0, never NaN or a
// negative rate.
func Rate(begin, end uint64, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 || end < begin {
		return 0.0
	}
	return float64(end-begin) / elapsedSeconds
}
