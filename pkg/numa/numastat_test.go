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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// sysNodeFixture builds a fake sysfs node tree and points sysNodePath at
// it for the duration of the test.
func sysNodeFixture(t *testing.T, numastats map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range numastats {
		nodeDir := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(nodeDir, 0o755))
		if content != "" {
			require.NoError(t, os.WriteFile(filepath.Join(nodeDir, "numastat"), []byte(content), 0o644))
		}
	}
	orig := sysNodePath
	sysNodePath = dir
	t.Cleanup(func() { sysNodePath = orig })
}

func TestReadNodeCounters(t *testing.T) {
	sysNodeFixture(t, map[string]string{
		"node0": "numa_hit 100\nnuma_miss 5\nnuma_foreign 2\nlocal_node 98\n",
		"node1": "numa_hit 40\nnuma_miss 1\n",
		// not a node directory, must be skipped
		"cpu0": "numa_hit 999\nnuma_miss 999\n",
		// node directory without a numastat file, must be skipped
		"node2": "",
	})

	perNode, total := ReadNodeCounters()

	want := map[int]Counters{
		0: {Hit: 100, Miss: 5},
		1: {Hit: 40, Miss: 1},
	}
	if diff := cmp.Diff(want, perNode); diff != "" {
		t.Errorf("per-node counters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Counters{Hit: 140, Miss: 6}, total); diff != "" {
		t.Errorf("total counters mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCountersMissingRoot(t *testing.T) {
	orig := sysNodePath
	sysNodePath = filepath.Join(t.TempDir(), "no-such-dir")
	t.Cleanup(func() { sysNodePath = orig })

	if diff := cmp.Diff(Counters{}, ReadCounters()); diff != "" {
		t.Errorf("missing sysfs tree should yield zero counters:\n%s", diff)
	}
}

func TestReadCountersMalformedLines(t *testing.T) {
	sysNodeFixture(t, map[string]string{
		"node0": "numa_hit notanumber\nnuma_miss 3\nnuma_hitx 7\n",
	})

	total := ReadCounters()
	if diff := cmp.Diff(Counters{Hit: 0, Miss: 3}, total); diff != "" {
		t.Errorf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestRate(t *testing.T) {
	tcases := []struct {
		name    string
		begin   uint64
		end     uint64
		elapsed float64
		want    float64
	}{
		{"normal", 100, 350, 5.0, 50.0},
		{"no progress", 100, 100, 5.0, 0.0},
		{"zero elapsed", 100, 350, 0.0, 0.0},
		{"negative elapsed", 100, 350, -1.0, 0.0},
		{"counter went backwards", 350, 100, 5.0, 0.0},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Rate(tc.begin, tc.end, tc.elapsed); got != tc.want {
				t.Errorf("Rate(%d, %d, %v) = %v, expected %v",
					tc.begin, tc.end, tc.elapsed, got, tc.want)
			}
		})
	}
}
