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

// policyChoice is one entry of the policy application matrix. The
// exerciser picks one entry uniformly at random per iteration; the
// matrix deliberately contains invalid combinations whose only purpose
// is to confirm the kernel rejects them gracefully.
type policyChoice struct {
	name string
	mode int
	// useMask passes the node mask to set_mempolicy, otherwise nil.
	useMask bool
	// noModifiers suppresses the random static/relative node modifier
	// flags for entries whose mode field already is a flag combination.
	noModifiers bool
	// invalid marks combinations the kernel is expected to reject.
	invalid bool
}

// policyChoices builds the explicit list of policy modes exercised on
// this platform. Modes the running kernel does not implement are simply
// rejected at call time and the result discarded; unlike the mode
// constants, the list itself does not vary per platform.
func policyChoices() []policyChoice {
	return []policyChoice{
		{name: "default", mode: MPOL_DEFAULT},
		{name: "bind", mode: MPOL_BIND, useMask: true},
		{name: "interleave", mode: MPOL_INTERLEAVE, useMask: true},
		{name: "preferred", mode: MPOL_PREFERRED, useMask: true},
		{name: "local", mode: MPOL_LOCAL, useMask: true},
		// accepted by kernels >= 5.15 only
		{name: "preferred-many", mode: MPOL_PREFERRED_MANY, useMask: true},
		// accepted by kernels >= 6.9 only
		{name: "weighted-interleave", mode: MPOL_WEIGHTED_INTERLEAVE, useMask: true},
		{name: "zero-mode", mode: 0, useMask: true, noModifiers: true},
		{name: "modifiers-only", mode: 0, useMask: true},
		{name: "static-and-relative", mode: MPOL_F_STATIC_NODES | MPOL_F_RELATIVE_NODES,
			useMask: true, invalid: true},
		{name: "balancing-local", mode: MPOL_F_NUMA_BALANCING | MPOL_LOCAL,
			useMask: true, noModifiers: true, invalid: true},
		{name: "all-ones", mode: ^0, useMask: true, noModifiers: true, invalid: true},
	}
}
