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
	"time"
)

const (
	// MinRegionBytes is the smallest allowed stressed region size.
	MinRegionBytes = 1 << 20
	// MaxRegionBytes is the largest allowed stressed region size.
	MaxRegionBytes = 1 << 34
	// DefaultRegionBytes is the region size used when none is configured.
	DefaultRegionBytes = 4 << 20
)

// Config are the recognized stressor options.
type Config struct {
	// Bytes is the target region size. Zero selects the default. The
	// value is shared between instances, rounded to page size and
	// clamped to the platform minimum and maximum.
	Bytes uint64
	// ShuffleAddr permutes the page address list before each move call.
	ShuffleAddr bool
	// ShuffleNode permutes the destination node list before each move call.
	ShuffleNode bool
	// Timeout bounds the whole run; zero means no deadline.
	Timeout time.Duration
}

// regionBytes resolves the configured target size into the actual
// mapping size of one instance.
func regionBytes(requested uint64, instances int, pageSize int) uint64 {
	if requested == 0 {
		return DefaultRegionBytes
	}
	if requested > MaxRegionBytes {
		requested = MaxRegionBytes
	}
	if instances > 0 {
		requested /= uint64(instances)
	}
	requested &^= uint64(pageSize) - 1
	if requested < MinRegionBytes {
		requested = MinRegionBytes
	}
	return requested
}
