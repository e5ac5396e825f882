// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import (
	"sort"

	"teavmgc/internal/heap"
)

// FreeChunk is one entry in the free-chunk index (spec.md §3, §4.4): a
// free record's address and byte length, including its header.
type FreeChunk struct {
	Addr heap.Address
	Size int64
}

// FreeList is the free-chunk index: a size-sorted view of free chunks
// discovered by the last sweep, consumed by the allocator front-end via
// an advancing cursor (spec.md §4.4). It is entirely rebuilt by each
// sweep, never incrementally updated.
type FreeList struct {
	chunks []FreeChunk
	cursor int
}

// newFreeList sorts chunks by descending size (spec.md §4.3, "the
// allocator prefers large chunks to minimise splitting waste and pointer
// churn") and returns a fresh index positioned at the front.
//
// sort.Slice is used rather than a stable sort because the source's
// qsort-based compareFreeChunks is not stable either, and no invariant
// in spec.md depends on the tie-break order of equal-size chunks
// (spec.md §9, "compareFreeChunks... qsort's non-stability").
func newFreeList(chunks []FreeChunk) *FreeList {
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Size > chunks[j].Size })
	return &FreeList{chunks: chunks}
}

// Len returns the number of chunks remaining at or after the cursor.
func (f *FreeList) Len() int {
	return len(f.chunks) - f.cursor
}

// Chunks returns the chunks from the cursor to the end, for inspection
// (used by tests).
func (f *FreeList) Chunks() []FreeChunk {
	return append([]FreeChunk(nil), f.chunks[f.cursor:]...)
}

// TotalFree returns the sum of all chunk sizes at or after the cursor.
func (f *FreeList) TotalFree() int64 {
	var total int64
	for _, c := range f.chunks[f.cursor:] {
		total += c.Size
	}
	return total
}

// Find implements findAvailableChunk(n) from spec.md §4.4: the chunk at
// the front of the index is usable if splitting it would leave a
// remainder large enough to carry its own header (chunk.Size >= n +
// headerSize), or it is an exact fit (chunk.Size == n); otherwise the
// cursor advances past it. These are kept as two separate conditions,
// not folded into a single >= comparison, because folding them would
// allow a split leaving a remainder smaller than a header — precisely
// the corruption spec.md §4.4 warns against.
func (f *FreeList) Find(n int64, headerSize int64) (FreeChunk, bool) {
	for f.cursor < len(f.chunks) {
		c := f.chunks[f.cursor]
		if c.Size-headerSize >= n || c.Size == n {
			return c, true
		}
		f.cursor++
	}
	return FreeChunk{}, false
}
