// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import (
	"encoding/binary"
	"fmt"
)

// A Region is the collector's single contiguous byte span (spec.md §3,
// "Heap region"). It is allocated once, at first use, and never freed or
// resized: every byte belongs to exactly one inline record, and the last
// bytes hold a sentinel END record.
//
// Region's Read/Write operations panic on out-of-range access, the same
// contract the teacher's core.Process documents for its Read* family:
// "The Read* operations all panic with an error ... if the inferior is
// not readable at the address requested." A malformed access here is a
// bug in the collector itself (or in the mutator's contract violation),
// never a recoverable condition — spec.md §7 classifies it as a bug to
// abort on, not an error to propagate.
type Region struct {
	arch Arch
	base Address
	size int64
	mem  []byte // backing storage; mem[0] is at address base
	close func() error
}

// NewRegion allocates a Region of the given size backed by platform memory
// (an anonymous mmap on unix, see region_unix.go; a plain Go slice
// elsewhere, see region_other.go).
func NewRegion(arch Arch, size int64) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap: invalid region size %d", size)
	}
	mem, closer, err := newMapping(size)
	if err != nil {
		return nil, fmt.Errorf("heap: failed to map %d bytes: %w", size, err)
	}
	return &Region{
		arch:  arch,
		base:  Address(uintptr(baseOf(mem))),
		size:  size,
		mem:   mem,
		close: closer,
	}, nil
}

// Close releases the region's backing memory. The collector never calls
// this during normal operation (the region lives for the process
// lifetime); it exists for tests that create many short-lived regions.
func (r *Region) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Base returns the address of the first byte of the region.
func (r *Region) Base() Address { return r.base }

// Size returns the total byte length of the region.
func (r *Region) Size() int64 { return r.size }

// End returns the address one past the last byte of the region.
func (r *Region) End() Address { return r.base.Add(r.size) }

// Arch returns the architecture this region's header fields are encoded for.
func (r *Region) Arch() Arch { return r.arch }

func (r *Region) off(a Address, n int64) []byte {
	i := a.Sub(r.base)
	if i < 0 || i+n > r.size {
		panic(fmt.Errorf("heap: out-of-range access at %v, length %d, region is [%v,%v)", a, n, r.base, r.End()))
	}
	return r.mem[i : i+n]
}

// ReadTag reads the tag word at a.
func (r *Region) ReadTag(a Address) int32 {
	return int32(binary.LittleEndian.Uint32(r.off(a, int64(r.arch.TagSize))))
}

// WriteTag writes the tag word at a.
func (r *Region) WriteTag(a Address, tag int32) {
	binary.LittleEndian.PutUint32(r.off(a, int64(r.arch.TagSize)), uint32(tag))
}

// ReadSize reads the size/element-count word at a+TagSize.
func (r *Region) ReadSize(a Address) int32 {
	off := a.Add(int64(r.arch.TagSize))
	return int32(binary.LittleEndian.Uint32(r.off(off, int64(r.arch.SizeSize))))
}

// WriteSize writes the size/element-count word at a+TagSize.
func (r *Region) WriteSize(a Address, size int32) {
	off := a.Add(int64(r.arch.TagSize))
	binary.LittleEndian.PutUint32(r.off(off, int64(r.arch.SizeSize)), uint32(size))
}

// ReadByte reads a single byte at a.
func (r *Region) ReadByte(a Address) byte {
	return r.off(a, 1)[0]
}

// WriteByte writes a single byte at a.
func (r *Region) WriteByte(a Address, b byte) {
	r.off(a, 1)[0] = b
}

// ReadPointer reads a pointer-width field at a, interpreted as an Address.
// A zero value represents a null reference.
func (r *Region) ReadPointer(a Address) Address {
	b := r.off(a, int64(r.arch.PointerSize))
	switch r.arch.PointerSize {
	case 4:
		return Address(binary.LittleEndian.Uint32(b))
	case 8:
		return Address(binary.LittleEndian.Uint64(b))
	default:
		panic(fmt.Errorf("heap: unsupported pointer size %d", r.arch.PointerSize))
	}
}

// WritePointer writes a pointer-width field at a.
func (r *Region) WritePointer(a Address, v Address) {
	b := r.off(a, int64(r.arch.PointerSize))
	switch r.arch.PointerSize {
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	default:
		panic(fmt.Errorf("heap: unsupported pointer size %d", r.arch.PointerSize))
	}
}

// Zero clears n bytes starting at a.
func (r *Region) Zero(a Address, n int64) {
	b := r.off(a, n)
	clear(b)
}

// HeaderSize is the byte length of the tag+size object header.
func (r *Region) HeaderSize() int64 {
	return int64(r.arch.TagSize + r.arch.SizeSize)
}
