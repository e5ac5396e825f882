// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collector is the allocation front-end and collection
// orchestration of spec.md §4.4–§4.5 (the sweep itself is
// internal/gcobj's Sweeper), and the module's top-level facade over internal/heap and
// internal/gcobj: a single Collector value (spec.md §9, "A clean
// re-architecture in a safer language models them as fields of a
// Collector value constructed at runtime initialisation; the mutator
// holds a handle") replaces the source's process-wide singleton state.
package collector

import (
	"teavmgc/internal/gcobj"
	"teavmgc/internal/heap"
)

// Tag re-exports gcobj.Tag so mutator code need not import the internal
// package directly.
type Tag = gcobj.Tag

// RootProvider re-exports gcobj.RootProvider: the contract spec.md §1
// assigns to the runtime's root scanner.
type RootProvider = gcobj.RootProvider

// StackFrame re-exports gcobj.StackFrame.
type StackFrame = gcobj.StackFrame

// StaticRoots re-exports gcobj.StaticRoots, the module's default
// RootProvider implementation.
type StaticRoots = gcobj.StaticRoots

// PrimitiveKind re-exports gcobj.PrimitiveKind.
type PrimitiveKind = gcobj.PrimitiveKind

// Collector owns the heap region, the class metadata table, the
// free-chunk index, and (transiently, per mark phase) the traversal
// stack (spec.md §5, "Shared resources"). It is not safe for concurrent
// use: spec.md's scheduling model is single-threaded, stop-the-world,
// and adding a mutex here would imply a concurrency story the spec
// explicitly disclaims as a non-goal.
type Collector struct {
	region  *heap.Region
	table   *gcobj.ClassTable
	layout  *gcobj.Layout
	tracer  *gcobj.Tracer
	sweeper *gcobj.Sweeper
	roots   RootProvider

	free  *gcobj.FreeList
	stats gcobj.SweepStats
}

// New constructs a Collector: it maps the heap region, writes the
// initial single free chunk and END sentinel, and performs a first
// (degenerate) sweep so the free-chunk index is populated without a
// special-cased bootstrap path.
func New(opts Options) (*Collector, error) {
	arch := opts.Arch
	if arch == (heap.Arch{}) {
		arch = heap.Word64
	}
	size := opts.HeapSize
	if size == 0 {
		size = DefaultHeapSize
	}

	region, err := heap.NewRegion(arch, size)
	if err != nil {
		return nil, err
	}
	table, err := gcobj.NewClassTable(arch, classTableBase)
	if err != nil {
		return nil, err
	}

	header := region.HeaderSize()
	region.WriteTag(region.Base(), int32(gcobj.EmptyTag))
	region.WriteSize(region.Base(), int32(size-header))
	region.WriteTag(region.End().Add(-header), int32(gcobj.EndTag))

	layout := &gcobj.Layout{Region: region, Table: table}
	c := &Collector{
		region:  region,
		table:   table,
		layout:  layout,
		tracer:  &gcobj.Tracer{Region: region, Layout: layout, Table: table},
		sweeper: &gcobj.Sweeper{Region: region, Layout: layout},
		roots:   opts.Roots,
	}
	if c.roots == nil {
		c.roots = gcobj.NewStaticRoots()
	}

	free, stats, err := c.sweeper.Sweep()
	if err != nil {
		return nil, err
	}
	c.free = free
	c.stats = stats
	return c, nil
}

// Close releases the collector's backing memory (for short-lived test
// collectors; production use lets the process exit reclaim it).
func (c *Collector) Close() error {
	return c.region.Close()
}

// Roots returns the collector's RootProvider, primarily so a caller
// using the default StaticRoots can pin and unpin roots.
func (c *Collector) Roots() RootProvider { return c.roots }

// Define registers a new scalar class with the given byte size
// (including header) and managed reference-field offsets, and returns
// its tag (spec.md §3, "Class descriptor (external)"). In a real
// mutator these tables are produced by the compiler; this is the
// module's stand-in registry (see gcobj.ClassTable).
func (c *Collector) Define(name string, byteSize int64, fieldOffsets ...int64) Tag {
	return c.table.Define(name, byteSize, fieldOffsets...)
}

// Alloc allocates and zeroes a scalar object of the class encoded by
// tag (spec.md §6, alloc(tag)).
func (c *Collector) Alloc(tag Tag) heap.Address {
	class, ok := c.table.Lookup(tag.ClassAddr())
	if !ok {
		fatalf("alloc", "malformed tag %#x", int32(tag))
	}
	chunk := c.getAvailableChunk(class.ByteSize)
	c.splitAndZero(chunk, class.ByteSize)
	c.region.WriteTag(chunk.Addr, int32(tag))
	return chunk.Addr
}

// ObjectArrayAlloc allocates a reference array of the given element
// class, nesting depth, and length (spec.md §6,
// objectArrayAlloc(elementClassTag, depth, length)).
func (c *Collector) ObjectArrayAlloc(elementClassTag Tag, depth byte, length int32) heap.Address {
	return c.arrayAlloc(elementClassTag.ClassAddr(), depth, length, int64(c.region.Arch().PointerSize))
}

func (c *Collector) primitiveArrayAlloc(k PrimitiveKind, length int32) heap.Address {
	return c.arrayAlloc(c.table.Primitive(k).Addr, 0, length, k.Stride())
}

func (c *Collector) BooleanArrayAlloc(length int32) heap.Address { return c.primitiveArrayAlloc(gcobj.Boolean, length) }
func (c *Collector) ByteArrayAlloc(length int32) heap.Address    { return c.primitiveArrayAlloc(gcobj.Byte, length) }
func (c *Collector) ShortArrayAlloc(length int32) heap.Address   { return c.primitiveArrayAlloc(gcobj.Short, length) }
func (c *Collector) CharArrayAlloc(length int32) heap.Address    { return c.primitiveArrayAlloc(gcobj.Char, length) }
func (c *Collector) IntArrayAlloc(length int32) heap.Address     { return c.primitiveArrayAlloc(gcobj.Int, length) }
func (c *Collector) LongArrayAlloc(length int32) heap.Address    { return c.primitiveArrayAlloc(gcobj.Long, length) }
func (c *Collector) FloatArrayAlloc(length int32) heap.Address   { return c.primitiveArrayAlloc(gcobj.Float, length) }
func (c *Collector) DoubleArrayAlloc(length int32) heap.Address  { return c.primitiveArrayAlloc(gcobj.Double, length) }

// arrayAlloc implements spec.md §4.4's array sizing: total size =
// sizeof(Array header) + elemSize*length. Unlike the C original's
// teavm_arrayAlloc, the depth byte has its own dedicated field in
// PayloadOffset's header layout (arrayHeaderSize), not a byte borrowed
// from the first payload element, so there is no extra trailing element
// to reserve; Layout.arraySize computes the exact same total, and the
// two must stay in lockstep or every heap walk after an array
// allocation undercounts the record by one stride.
func (c *Collector) arrayAlloc(elementClassAddr heap.Address, depth byte, length int32, elemSize int64) heap.Address {
	if length < 0 {
		fatalf("arrayAlloc", "negative length %d", length)
	}
	total := c.layout.PayloadOffset() + elemSize*int64(length)
	chunk := c.getAvailableChunk(total)
	c.splitAndZero(chunk, total)

	arrayTag := gcobj.MakeTag(c.table.Array().Addr)
	c.region.WriteTag(chunk.Addr, int32(arrayTag))
	c.region.WriteSize(chunk.Addr, length)
	c.region.WritePointer(chunk.Addr.Add(c.region.HeaderSize()), elementClassAddr)
	c.region.WriteByte(chunk.Addr.Add(c.region.HeaderSize()+int64(c.region.Arch().PointerSize)), depth)
	return chunk.Addr
}

// splitAndZero implements the split-if-larger and zero-then-write-tag
// sequence shared by alloc and arrayAlloc (spec.md §4.4): if the chunk
// is larger than needed, the remainder becomes a new EMPTY record; the
// allocated prefix is zeroed (the tag itself is written by the caller,
// after zeroing, so the zero pass never clobbers it).
func (c *Collector) splitAndZero(chunk gcobj.FreeChunk, size int64) {
	if chunk.Size > size {
		rem := chunk.Addr.Add(size)
		c.region.WriteTag(rem, int32(gcobj.EmptyTag))
		c.region.WriteSize(rem, int32(chunk.Size-size))
	}
	c.region.Zero(chunk.Addr, size)
}

// getAvailableChunk implements spec.md §4.4's getAvailableChunk: try the
// free-chunk index, and on a miss run a collection and retry once. A
// second miss is out-of-memory, which has no recovery path back into
// the mutator and is therefore fatal (spec.md §7, item 1).
func (c *Collector) getAvailableChunk(size int64) gcobj.FreeChunk {
	header := c.region.HeaderSize()
	if chunk, ok := c.free.Find(size, header); ok {
		return chunk
	}
	c.CollectGarbage()
	if chunk, ok := c.free.Find(size, header); ok {
		return chunk
	}
	fatalf("alloc", "out of memory: no chunk available for %d bytes after collection", size)
	panic("unreachable")
}

// CollectGarbage runs one full clearMarks → mark → sweep cycle (spec.md
// §4.5). It is not interruptible and takes no locks: the caller is
// assumed to be the sole mutator thread, paused for the duration.
func (c *Collector) CollectGarbage() {
	if err := c.tracer.ClearMarks(); err != nil {
		fatalf("collect", "%v", err)
	}
	if err := c.tracer.Mark(c.roots); err != nil {
		fatalf("collect", "%v", err)
	}
	free, stats, err := c.sweeper.Sweep()
	if err != nil {
		fatalf("collect", "%v", err)
	}
	c.free = free
	c.stats = stats
}
