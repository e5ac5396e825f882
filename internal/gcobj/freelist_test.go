// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import "testing"

func TestFreeListSortedDescending(t *testing.T) {
	f := newFreeList([]FreeChunk{
		{Addr: 0, Size: 10},
		{Addr: 100, Size: 50},
		{Addr: 200, Size: 30},
	})
	got := f.Chunks()
	want := []int64{50, 30, 10}
	for i, c := range got {
		if c.Size != want[i] {
			t.Fatalf("chunk[%d].Size = %d, want %d", i, c.Size, want[i])
		}
	}
}

func TestFreeListFindExactFit(t *testing.T) {
	f := newFreeList([]FreeChunk{{Addr: 10, Size: 64}})
	c, ok := f.Find(64, 8)
	if !ok || c.Addr != 10 {
		t.Fatalf("Find(64) = %v, %v; want {10,64}, true", c, ok)
	}
}

func TestFreeListFindRequiresSplitRoom(t *testing.T) {
	// A chunk only 4 bytes bigger than n cannot be split (remainder
	// would be smaller than an 8-byte header) and is not an exact fit,
	// so it must be skipped.
	f := newFreeList([]FreeChunk{{Addr: 10, Size: 68}})
	if _, ok := f.Find(64, 8); ok {
		t.Fatal("Find(64) against a 68-byte chunk: want false (unsplittable remainder)")
	}
}

func TestFreeListFindSkipsFrontChunksToReachFit(t *testing.T) {
	// Sorted descending, the 70- and 65-byte chunks land ahead of the
	// 64-byte one; neither is splittable for a 64-byte request (size-8
	// < 64) nor an exact fit, so Find must advance its cursor past both.
	f := newFreeList([]FreeChunk{
		{Addr: 10, Size: 65}, // 65-8=57 < 64, and 65 != 64: must be skipped
		{Addr: 60, Size: 70}, // 70-8=62 < 64, and 70 != 64: must be skipped
		{Addr: 500, Size: 64}, // exact fit
	})
	c, ok := f.Find(64, 8)
	if !ok || c.Addr != 500 {
		t.Fatalf("Find(64) = %v, %v; want {500,64}, true", c, ok)
	}
	if f.Len() != 1 {
		t.Fatalf("Len() = %d after skipping two undersized chunks, want 1", f.Len())
	}
}

func TestFreeListExhausted(t *testing.T) {
	f := newFreeList([]FreeChunk{{Addr: 10, Size: 4}})
	if _, ok := f.Find(64, 8); ok {
		t.Fatal("Find on an index with no usable chunk: want false")
	}
	if f.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", f.Len())
	}
}

func TestFreeListTotalFree(t *testing.T) {
	f := newFreeList([]FreeChunk{{Size: 10}, {Size: 20}, {Size: 30}})
	if got := f.TotalFree(); got != 60 {
		t.Fatalf("TotalFree() = %d, want 60", got)
	}
}
