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

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Region is the stressed memory region: one anonymous page-aligned
// mapping exclusively owned by the engine for the lifetime of a run.
type Region struct {
	buf      []byte
	pageSize int
}

// mapRegion maps an anonymous populated region of the given size.
func mapRegion(size uint64, pageSize int) (*Region, error) {
	buf, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_POPULATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap of %d bytes failed", size)
	}
	r := &Region{buf: buf, pageSize: pageSize}
	r.Rehint()
	return r, nil
}

// Addr returns the start address of the mapping.
func (r *Region) Addr() uintptr {
	return uintptr(unsafe.Pointer(&r.buf[0]))
}

// Size returns the mapping size in bytes.
func (r *Region) Size() uint64 {
	return uint64(len(r.buf))
}

// Pages returns the number of pages in the mapping.
func (r *Region) Pages() int {
	return len(r.buf) / r.pageSize
}

// TouchLight writes one byte per page to keep every page resident and
// generate allocation traffic without rewriting the whole region.
func (r *Region) TouchLight() {
	for off := 0; off < len(r.buf); off += r.pageSize {
		r.buf[off]++
	}
}

// Rehint tells the kernel the mapping may be merged with identical
// pages. A cooperative hint, failures are ignored.
func (r *Region) Rehint() {
	_ = unix.Madvise(r.buf, unix.MADV_MERGEABLE)
}

// Unmap releases the mapping. The Region must not be used afterwards.
func (r *Region) Unmap() error {
	buf := r.buf
	r.buf = nil
	if buf == nil {
		return nil
	}
	if err := unix.Munmap(buf); err != nil {
		return errors.Wrap(err, "munmap failed")
	}
	return nil
}
