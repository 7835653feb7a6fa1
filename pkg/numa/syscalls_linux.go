//go:build linux
// +build linux

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
	"unsafe"

	"golang.org/x/sys/unix"
)

// The wrappers below issue the raw syscalls on purpose: the engine
// exercises the kernel interface bit-exactly, including parameter
// combinations no libc wrapper would let through.

func maskPtr(mask NodeMask) unsafe.Pointer {
	if len(mask) == 0 {
		return nil
	}
	return unsafe.Pointer(&mask[0])
}

// getMempolicy wraps get_mempolicy(2):
// long get_mempolicy(int *mode, unsigned long *nodemask,
//                    unsigned long maxnode, void *addr, unsigned long flags);
func getMempolicy(mode *int32, mask NodeMask, maxNode uint64, addr uintptr, flags uint) error {
	_, _, en := unix.Syscall6(unix.SYS_GET_MEMPOLICY,
		uintptr(unsafe.Pointer(mode)), uintptr(maskPtr(mask)), uintptr(maxNode),
		addr, uintptr(flags), 0)
	if en != 0 {
		return en
	}
	return nil
}

// setMempolicy wraps set_mempolicy(2):
// long set_mempolicy(int mode, const unsigned long *nodemask, unsigned long maxnode);
func setMempolicy(mode int, mask NodeMask, maxNode uint64) error {
	_, _, en := unix.Syscall(unix.SYS_SET_MEMPOLICY,
		uintptr(mode), uintptr(maskPtr(mask)), uintptr(maxNode))
	if en != 0 {
		return en
	}
	return nil
}

// mbind wraps mbind(2):
// long mbind(void *addr, unsigned long len, int mode,
//            const unsigned long *nodemask, unsigned long maxnode, unsigned flags);
func mbind(addr uintptr, length uint64, mode int, mask NodeMask, maxNode uint64, flags uint) error {
	_, _, en := unix.Syscall6(unix.SYS_MBIND,
		addr, uintptr(length), uintptr(mode),
		uintptr(maskPtr(mask)), uintptr(maxNode), uintptr(flags))
	if en != 0 {
		return en
	}
	return nil
}

// migratePages wraps migrate_pages(2):
// long migrate_pages(int pid, unsigned long maxnode,
//                    const unsigned long *old_nodes, const unsigned long *new_nodes);
func migratePages(pid int, maxNode uint64, oldNodes, newNodes NodeMask) error {
	_, _, en := unix.Syscall6(unix.SYS_MIGRATE_PAGES,
		uintptr(pid), uintptr(maxNode),
		uintptr(maskPtr(oldNodes)), uintptr(maskPtr(newNodes)), 0, 0)
	if en != 0 {
		return en
	}
	return nil
}

// movePages wraps move_pages(2):
// long move_pages(int pid, unsigned long count, void **pages,
//                 const int *nodes, int *status, int flags);
// The kernel side int is 32 bits, hence the int32 slices. A nil nodes
// slice passes a NULL pointer, which queries current placement into
// status instead of moving anything.
func movePages(pid int, count uint64, pages []uintptr, nodes, status []int32, flags int) error {
	var pagesPtr, nodesPtr, statusPtr unsafe.Pointer
	if len(pages) > 0 {
		pagesPtr = unsafe.Pointer(&pages[0])
	}
	if nodes != nil {
		nodesPtr = unsafe.Pointer(&nodes[0])
	}
	if len(status) > 0 {
		statusPtr = unsafe.Pointer(&status[0])
	}
	_, _, en := unix.Syscall6(unix.SYS_MOVE_PAGES,
		uintptr(pid), uintptr(count), uintptr(pagesPtr),
		uintptr(nodesPtr), uintptr(statusPtr), uintptr(flags))
	if en != 0 {
		return en
	}
	return nil
}

// setMempolicyHomeNode wraps set_mempolicy_home_node(2), kernel >= 5.17:
// long set_mempolicy_home_node(unsigned long start, unsigned long len,
//                              unsigned long home_node, unsigned long flags);
func setMempolicyHomeNode(addr uintptr, length uint64, homeNode uint64, flags uint64) error {
	_, _, en := unix.Syscall6(unix.SYS_SET_MEMPOLICY_HOME_NODE,
		addr, uintptr(length), uintptr(homeNode), uintptr(flags), 0, 0)
	if en != 0 {
		return en
	}
	return nil
}

// getcpuCache is a placeholder for the unused tcache argument of
// getcpu(2); current kernels ignore it but the engine exercises the
// call with a non-nil pointer as well.
type getcpuCache struct {
	blob [16]uint64 //nolint:unused
}

// getcpu wraps getcpu(2) and returns the cpu and node the caller
// currently runs on.
func getcpu(tcache *getcpuCache) (uint32, uint32, error) {
	var cpu, node uint32
	_, _, en := unix.Syscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)),
		uintptr(unsafe.Pointer(tcache)))
	if en != 0 {
		return 0, 0, en
	}
	return cpu, node, nil
}
