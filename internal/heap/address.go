// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heap owns the collector's single contiguous byte span and the
// low-level record header operations (tag/size reads and writes) that the
// object layout decoder, tracer, and sweeper build on.
package heap

import "fmt"

// Address is the address of a byte inside a Region's mapping (Region.Base
// is the mapping's own address, not zero). Unlike a Go pointer it is never
// moved by the runtime, which is the whole point: the collector does not
// relocate objects.
type Address uintptr

// Add returns a+n.
func (a Address) Add(n int64) Address {
	return a + Address(n)
}

// Sub returns a-b.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uintptr(a))
}

// Arch describes the machine word sizes the tag/pointer encoding depends
// on. Adapted from the teacher's arch.Architecture: trimmed of the
// ptrace-only breakpoint-instruction fields, which have no analog in an
// in-process collector, and kept to the sizes the object header and
// pointer-width array stride actually need.
type Arch struct {
	// PointerSize is the width, in bytes, of a reference field and of a
	// pointer-stride array element.
	PointerSize int
	// TagSize and SizeSize are the widths of the two header words.
	TagSize, SizeSize int
}

// Word64 is the architecture of the runtime this module targets: 64-bit
// pointers, 32-bit tag and size header words (spec.md's object header is
// two machine-word-sized fields, and the tag is specified as a 32-bit
// signed integer regardless of pointer width).
var Word64 = Arch{PointerSize: 8, TagSize: 4, SizeSize: 4}
