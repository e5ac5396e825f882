// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collector

import "teavmgc/internal/heap"

// DefaultHeapSize is the source's compile-time constant (16 MiB),
// exposed here as a configurable default rather than a hardcoded bound
// (spec.md §6, "implementations should expose it as a configurable bound
// at initialisation").
const DefaultHeapSize int64 = 16 * 1024 * 1024

// classTableBase is where synthetic class-descriptor addresses begin.
// It must be nonzero (address 0 would encode to tag 0, colliding with
// EmptyTag) and 8-byte aligned; it is never read as heap memory, so it
// cannot collide with the heap region regardless of the region's base.
const classTableBase = heap.Address(0x1000)

// Options configures a new Collector.
type Options struct {
	// HeapSize is the total byte size of the heap region. Zero selects
	// DefaultHeapSize.
	HeapSize int64
	// Arch selects the pointer width and header field widths. The zero
	// value selects heap.Word64.
	Arch heap.Arch
	// Roots is consulted by CollectGarbage for the mutator's current
	// root set. If nil, a fresh gcobj.StaticRoots is used, which the
	// caller can still reach via Collector.Roots().
	Roots RootProvider
}
