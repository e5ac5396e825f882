// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package heap

import "unsafe"

// newMapping falls back to a plain Go-allocated slice on platforms
// without the unix mmap primitives used by region_unix.go. The backing
// array is still a single contiguous span; it is simply subject to the
// host process's own (unrelated) allocator instead of a raw OS mapping.
func newMapping(size int64) ([]byte, func() error, error) {
	mem := make([]byte, size)
	return mem, func() error { return nil }, nil
}

func baseOf(mem []byte) unsafe.Pointer {
	if len(mem) == 0 {
		return nil
	}
	return unsafe.Pointer(&mem[0])
}
