// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcobj decodes and mutates the inline object records that make up
// teavmgc's heap: tags, class descriptors, array layout, the mark-and-sweep
// tracer, and the free-chunk index. It is the object layout decoder and
// tracer of spec.md §4.1–§4.4, grounded on the teacher's
// internal/gocore (object.go, root.go, type.go) and on
// original_source/llvm/src/main/native/gc.c.
package gcobj

import "teavmgc/internal/heap"

// Tag is the per-record tag word described in spec.md §3 and §6: bit 31
// is the mark bit, bits 30..0 hold a class descriptor address shifted
// right by 3 (descriptors are 8-byte aligned), and two values are
// reserved: EmptyTag marks a free chunk, EndTag marks the heap's
// sentinel record.
type Tag int32

const (
	// EmptyTag marks an inline record as a free chunk; its size field
	// holds the chunk's byte length including the header.
	EmptyTag Tag = 0
	// EndTag marks the heap's terminating sentinel record.
	EndTag Tag = -1

	markBit Tag = -1 << 31
)

// MakeTag encodes a class descriptor's address as a live-object tag
// (mark bit clear).
func MakeTag(classAddr heap.Address) Tag {
	return Tag(int32(classAddr) >> 3)
}

// Marked reports whether t's mark bit is set.
func (t Tag) Marked() bool {
	return t&markBit != 0
}

// Mark returns t with the mark bit set.
func (t Tag) Mark() Tag {
	return t | markBit
}

// Unmarked returns t with the mark bit cleared.
func (t Tag) Unmarked() Tag {
	return t &^ markBit
}

// ClassAddr reconstructs the class descriptor address this tag points to.
// The caller must have already excluded EmptyTag and EndTag.
func (t Tag) ClassAddr() heap.Address {
	return heap.Address(int32(t.Unmarked()) << 3)
}
