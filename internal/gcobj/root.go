// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import "teavmgc/internal/heap"

// RootProvider is the contract the runtime's stack scanner must obey
// (spec.md §1, "Out of scope: the root provider", and §6,
// "Runtime-provided"). The tracer consumes exactly these two sources, in
// this order: the globally pinned root table, then the chain of stack
// frames, newest first.
//
// This is the abstract interface spec.md §9 asks for in place of the
// original's C-specific stack-frame layout ("an abstract interface
// rootsOfFrame(frame) → slice<Object*> is sufficient"), adapted from the
// teacher's Root/Frame split in internal/gocore/root.go.
type RootProvider interface {
	// StackRoots returns the globally pinned root table (spec.md §6's
	// StackRoots descriptor).
	StackRoots() []heap.Address
	// StackTop returns the head of the singly linked list of stack
	// frames, or nil if the mutator has no live frames.
	StackTop() *StackFrame
}

// StackFrame mirrors spec.md §6's StackFrame: a frame carries Size
// object slots immediately following the header, reached by walking
// Next pointers starting from RootProvider.StackTop.
type StackFrame struct {
	// Slots holds the frame's spilled object-pointer slots. A nil entry
	// represents a currently-null or dead slot.
	Slots []heap.Address
	Next  *StackFrame
}

// StaticRoots is a minimal, in-memory RootProvider: a pinned root slice
// plus a mutable stack-frame chain. It is the module's stand-in for the
// compiled mutator's real stack scanner (out of scope per spec.md §1),
// used by the test suite, the demo mutator in cmd/heapsh, and by
// embedders that don't yet have a code generator wired up.
type StaticRoots struct {
	pinned []heap.Address
	top    *StackFrame
}

// NewStaticRoots creates an empty root set.
func NewStaticRoots() *StaticRoots {
	return &StaticRoots{}
}

// Pin adds a global root, e.g. a static field.
func (s *StaticRoots) Pin(a heap.Address) {
	s.pinned = append(s.pinned, a)
}

// Unpin removes the first pinned occurrence of a, if present. It is a
// no-op if a was never pinned.
func (s *StaticRoots) Unpin(a heap.Address) {
	for i, p := range s.pinned {
		if p == a {
			s.pinned = append(s.pinned[:i], s.pinned[i+1:]...)
			return
		}
	}
}

// PushFrame pushes a new stack frame with the given slots onto the
// frame chain, simulating a mutator call.
func (s *StaticRoots) PushFrame(slots ...heap.Address) *StackFrame {
	f := &StackFrame{Slots: append([]heap.Address(nil), slots...), Next: s.top}
	s.top = f
	return f
}

// PopFrame removes the top stack frame, simulating a mutator return.
func (s *StaticRoots) PopFrame() {
	if s.top != nil {
		s.top = s.top.Next
	}
}

func (s *StaticRoots) StackRoots() []heap.Address { return s.pinned }
func (s *StaticRoots) StackTop() *StackFrame       { return s.top }
