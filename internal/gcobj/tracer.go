// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import (
	"fmt"

	"teavmgc/internal/heap"
)

// stackFrameCapacity is the traversal stack's per-frame slot capacity
// (spec.md §4.2, "an explicit chunked stack (a linked list of
// fixed-capacity frames, e.g. 4096 slots each)"). Kept at the original's
// exact TraversalStackStruct.data[4096] rather than rounded to a "nicer"
// number, so frame-chaining behavior at the boundary matches the source
// this was ported from. Named after the runtime work-buffer chunking
// idiom (cf. the teacher family's mgcwork-style getempty/putfull split),
// not a slice, because a plain growable slice would never exercise the
// chunk-boundary push/pop behavior spec.md asks tests to pin.
const stackFrameCapacity = 4096

// traversalFrame is one fixed-capacity link in the mark phase's explicit
// stack (spec.md §4.2 / §9 "Explicit traversal stack").
type traversalFrame struct {
	data     [stackFrameCapacity]heap.Address
	location int
	next     *traversalFrame
}

// traversalStack is the chunked stack a single mark phase acquires at
// its start and releases at its end (spec.md §5, "Shared resources").
type traversalStack struct {
	top *traversalFrame
}

func newTraversalStack() *traversalStack {
	return &traversalStack{top: &traversalFrame{}}
}

// push appends a pending object, allocating and linking a new frame if
// the current one is full.
func (s *traversalStack) push(a heap.Address) {
	if s.top.location >= stackFrameCapacity {
		s.top = &traversalFrame{next: s.top}
	}
	s.top.data[s.top.location] = a
	s.top.location++
}

// pop removes and returns the top pending object, unlinking an emptied
// frame and returning the zero address when the whole stack is empty.
//
// Known source bug (spec.md §9, item 3): the original popObject
// decrements `location` a second time after unlinking an emptied frame,
// which can drive the new top frame's location negative. This
// implementation simply returns the popped slot of the now-current
// frame, without a second decrement.
func (s *traversalStack) pop() (heap.Address, bool) {
	if s.top.location == 0 {
		if s.top.next == nil {
			return 0, false
		}
		s.top = s.top.next
		if s.top.location == 0 {
			return 0, false
		}
	}
	s.top.location--
	return s.top.data[s.top.location], true
}

// Tracer performs the mark phase (spec.md §4.2) over a Region using a
// Layout to decode object sizes and field offsets, and a ClassTable to
// resolve tags to class descriptors.
type Tracer struct {
	Region *heap.Region
	Layout *Layout
	Table  *ClassTable
}

// ClearMarks masks off the mark bit on every non-EMPTY, non-END record,
// preparing the heap for a fresh mark phase (spec.md §4.5).
func (t *Tracer) ClearMarks() error {
	addr := t.Region.Base()
	end := t.Region.End()
	for addr < end {
		tag := Tag(t.Region.ReadTag(addr))
		if tag == EndTag {
			return nil
		}
		if tag != EmptyTag {
			t.Region.WriteTag(addr, int32(tag.Unmarked()))
		}
		size, err := t.Layout.Size(addr)
		if err != nil {
			return err
		}
		addr = addr.Add(size)
	}
	return fmt.Errorf("gcobj: heap walk in ClearMarks ran past region end without hitting END")
}

// Mark traces every object reachable from roots, setting each one's
// mark bit exactly once (spec.md §4.2).
func (t *Tracer) Mark(roots RootProvider) error {
	stack := newTraversalStack()

	for _, a := range roots.StackRoots() {
		if err := t.markObject(stack, a); err != nil {
			return err
		}
	}
	for f := roots.StackTop(); f != nil; f = f.Next {
		for _, a := range f.Slots {
			if err := t.markObject(stack, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// markObject implements the contract of spec.md §4.2's mark(object):
// null input is a no-op, an already-marked input is a no-op, and
// otherwise the mark bit is set before descending into the object's
// reference fields.
//
// Known source bug (spec.md §9, item 1): the original markObject
// descends into a field only when it IS already marked
// ((field->tag & GC_MARK) != 0), the opposite of the documented intent,
// which would terminate tracing almost immediately and leave live
// objects unmarked. This implementation descends only when the field is
// NOT yet marked, which is the documented and tested semantics.
func (t *Tracer) markObject(stack *traversalStack, root heap.Address) error {
	if root == 0 {
		return nil
	}
	stack.push(root)
	for {
		addr, ok := stack.pop()
		if !ok {
			return nil
		}
		tag := Tag(t.Region.ReadTag(addr))
		if tag == EmptyTag || tag == EndTag {
			return fmt.Errorf("gcobj: root or field %v points at a non-object record (tag %d)", addr, tag)
		}
		if tag.Marked() {
			continue
		}
		t.Region.WriteTag(addr, int32(tag.Mark()))

		class, ok := t.Table.Lookup(tag.ClassAddr())
		if !ok {
			return fmt.Errorf("gcobj: malformed tag %#x at %v", int32(tag), addr)
		}
		for _, field := range t.fieldsOf(addr, class) {
			ref := t.Region.ReadPointer(addr.Add(field))
			if ref == 0 {
				continue
			}
			fieldTag := Tag(t.Region.ReadTag(ref))
			if !fieldTag.Marked() {
				stack.push(ref)
			}
		}
	}
}

// fieldsOf returns the byte offsets of class's managed reference fields,
// or, for a reference array, the offsets of every element slot.
func (t *Tracer) fieldsOf(addr heap.Address, class *Class) []int64 {
	if !t.Table.IsArray(class) {
		return class.Fields
	}
	if !t.Layout.IsReference(addr) {
		return nil
	}
	count := t.Layout.ElementCount(addr)
	offsets := make([]int64, count)
	base := t.Layout.PayloadOffset()
	stride := int64(t.Region.Arch().PointerSize)
	for i := range offsets {
		offsets[i] = base + int64(i)*stride
	}
	return offsets
}
