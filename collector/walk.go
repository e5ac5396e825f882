// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collector

import (
	"fmt"

	"teavmgc/internal/gcobj"
	"teavmgc/internal/heap"
)

// ObjectInfo describes one live or free record encountered by
// ForEachRecord, grounded on the teacher's ForEachObject
// (internal/gocore/object.go), rehomed from "objects found in a core
// dump" to "records found by walking the live heap region directly".
type ObjectInfo struct {
	Addr  heap.Address
	Size  int64
	Free  bool
	Tag   Tag // zero (EmptyTag) when Free
}

// ForEachRecord calls fn once for every record in the heap, live or
// free, in address order, stopping early if fn returns false. It
// exercises invariant 1 of spec.md §3 as a side effect: if the walk
// doesn't land exactly on the END sentinel, it returns an error instead
// of silently stopping.
func (c *Collector) ForEachRecord(fn func(ObjectInfo) bool) error {
	addr := c.region.Base()
	end := c.region.End()
	for addr < end {
		tag := gcobj.Tag(c.region.ReadTag(addr))
		if tag == gcobj.EndTag {
			return nil
		}
		size, err := c.layout.Size(addr)
		if err != nil {
			return err
		}
		info := ObjectInfo{Addr: addr, Size: size, Free: tag == gcobj.EmptyTag, Tag: tag}
		if !fn(info) {
			return nil
		}
		addr = addr.Add(size)
	}
	return fmt.Errorf("teavmgc: heap walk ran past region end without hitting END")
}
