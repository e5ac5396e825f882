// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import (
	"fmt"

	"teavmgc/internal/heap"
)

// Layout reads class descriptors out of a ClassTable and the array
// header fields (element class, depth) out of a Region, to answer the
// one question every other component needs: how many bytes does the
// record at this address occupy?
type Layout struct {
	Region *heap.Region
	Table  *ClassTable
}

// elementClassOffset/depthOffset locate the Array-specific fields
// immediately after the plain tag+size header (spec.md §3, "Array
// object": header + element_class pointer + one byte of depth + payload).
func (l *Layout) elementClassOffset() int64 { return l.Region.HeaderSize() }
func (l *Layout) depthOffset() int64 {
	return l.Region.HeaderSize() + int64(l.Region.Arch().PointerSize)
}

// PayloadOffset returns the byte offset, from an array's base, at which
// its element payload begins.
func (l *Layout) PayloadOffset() int64 {
	return arrayHeaderSize(l.Region.Arch())
}

// Size returns the byte length to advance past the record at addr, the
// size(record) function of spec.md §4.1.
//
// Known source anomaly (spec.md §9, item 2): the original objectSize's
// double-precision branch compares against the float-array class twice
// and never selects the double-array class, so doubleArrayAlloc'd arrays
// would be sized using the pointer-stride fallback. This implementation
// uses the correct double-array class for the 8-byte stride.
func (l *Layout) Size(addr heap.Address) (int64, error) {
	tag := Tag(l.Region.ReadTag(addr))
	if tag == EmptyTag {
		return int64(l.Region.ReadSize(addr)), nil
	}
	if tag == EndTag {
		return 0, fmt.Errorf("gcobj: Size called on END sentinel at %v", addr)
	}
	class, ok := l.Table.Lookup(tag.ClassAddr())
	if !ok {
		return 0, fmt.Errorf("gcobj: malformed tag %#x at %v: no class at %v", int32(tag), addr, tag.ClassAddr())
	}
	if l.Table.IsArray(class) {
		return l.arraySize(addr)
	}
	return class.ByteSize, nil
}

func (l *Layout) arraySize(addr heap.Address) (int64, error) {
	depth := l.Region.ReadByte(addr.Add(l.depthOffset()))
	count := int64(l.Region.ReadSize(addr))
	if count < 0 {
		return 0, fmt.Errorf("gcobj: negative element count %d at %v", count, addr)
	}
	elemAddr := l.Region.ReadPointer(addr.Add(l.elementClassOffset()))
	stride := int64(l.Region.Arch().PointerSize)
	if depth == 0 {
		elemClass, ok := l.Table.Lookup(elemAddr)
		if !ok {
			return 0, fmt.Errorf("gcobj: malformed array element class %v at %v", elemAddr, addr)
		}
		k, err := l.primitiveKindOf(elemClass)
		if err != nil {
			return 0, err
		}
		stride = k.Stride()
	}
	return l.PayloadOffset() + count*stride, nil
}

func (l *Layout) primitiveKindOf(c *Class) (PrimitiveKind, error) {
	for k := Boolean; k <= Double; k++ {
		if l.Table.Primitive(k) == c {
			return k, nil
		}
	}
	return 0, fmt.Errorf("gcobj: class %q is not a primitive array element class", c.Name)
}

// IsReference reports whether the array at addr holds reference
// elements (depth > 0) rather than primitives.
func (l *Layout) IsReference(addr heap.Address) bool {
	return l.Region.ReadByte(addr.Add(l.depthOffset())) > 0
}

// ElementCount returns an array record's element count (the overloaded
// size header field, spec.md §3).
func (l *Layout) ElementCount(addr heap.Address) int64 {
	return int64(l.Region.ReadSize(addr))
}
