// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collector

import "teavmgc/internal/heap"

// Stats summarizes the heap's state as of the last sweep (either from
// the most recent CollectGarbage, or from the bootstrap sweep New
// performs). It does not reflect allocations made since that sweep
// beyond what the free-chunk index's cursor has already consumed.
type Stats struct {
	LiveObjects int
	LiveBytes   int64
	FreeBytes   int64
	FreeChunks  int
	HeapSize    int64
}

// Stats returns a snapshot of the collector's bookkeeping.
func (c *Collector) Stats() Stats {
	return Stats{
		LiveObjects: c.stats.LiveObjects,
		LiveBytes:   c.stats.LiveBytes,
		FreeBytes:   c.free.TotalFree(),
		FreeChunks:  c.free.Len(),
		HeapSize:    c.region.Size(),
	}
}

// Base returns the heap region's base address, mostly for diagnostics.
func (c *Collector) Base() heap.Address { return c.region.Base() }
