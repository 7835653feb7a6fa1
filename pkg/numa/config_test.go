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

func TestRegionBytes(t *testing.T) {
	tcases := []struct {
		name      string
		requested uint64
		instances int
		want      uint64
	}{
		{"zero selects default", 0, 1, DefaultRegionBytes},
		{"exact size kept", 8 << 20, 1, 8 << 20},
		{"divided between instances", 8 << 20, 4, 2 << 20},
		{"rounded down to page size", 8<<20 + 123, 1, 8 << 20},
		{"clamped to minimum", 4096, 1, MinRegionBytes},
		{"clamped after division", 2 << 20, 4, MinRegionBytes},
		{"clamped to maximum", 1 << 40, 1, MaxRegionBytes},
		{"zero instances leaves size alone", 8 << 20, 0, 8 << 20},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := regionBytes(tc.requested, tc.instances, testPageSize)
			if got != tc.want {
				t.Errorf("regionBytes(%d, %d) = %d, expected %d",
					tc.requested, tc.instances, got, tc.want)
			}
			if got%testPageSize != 0 {
				t.Errorf("regionBytes(%d, %d) = %d is not page-aligned",
					tc.requested, tc.instances, got)
			}
		})
	}
}
