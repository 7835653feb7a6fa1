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
	"strconv"
	"strings"
)

// capSysNice is the CAP_SYS_NICE capability bit, the privilege gating
// MPOL_MF_MOVE_ALL page moves.
const capSysNice = 23

// hasCapability reports whether the effective capability set of the
// process includes the given capability bit. Parse failures count as
// "not capable".
func hasCapability(capBit uint) bool {
	f, err := os.Open(procStatusPath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "CapEff:") {
			continue
		}
		capEff, err := strconv.ParseUint(strings.TrimSpace(line[len("CapEff:"):]), 16, 64)
		if err != nil {
			return false
		}
		return capEff&(uint64(1)<<capBit) != 0
	}
	return false
}
