// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcobj

import (
	"fmt"

	"teavmgc/internal/heap"
)

// SweepStats summarizes one sweep, for cmd/gcstat and tests.
type SweepStats struct {
	LiveObjects int
	LiveBytes   int64
	FreeBytes   int64
}

// Sweeper walks the heap coalescing free space and rebuilding the
// free-chunk index (spec.md §4.3).
type Sweeper struct {
	Region *heap.Region
	Layout *Layout
}

// Sweep walks the heap from base to END. EMPTY records and records
// whose mark bit is clear are merged into the current coalesced run;
// live records close any open run (writing its total size and EMPTY tag
// into the run's first record, and recording it in the index) and have
// their mark bit cleared. The returned FreeList is sorted by descending
// size.
func (s *Sweeper) Sweep() (*FreeList, SweepStats, error) {
	var stats SweepStats
	var chunks []FreeChunk

	addr := s.Region.Base()
	end := s.Region.End()

	var runStart heap.Address
	var runSize int64
	runOpen := false

	closeRun := func() {
		if !runOpen {
			return
		}
		s.Region.WriteTag(runStart, int32(EmptyTag))
		s.Region.WriteSize(runStart, int32(runSize))
		chunks = append(chunks, FreeChunk{Addr: runStart, Size: runSize})
		stats.FreeBytes += runSize
		runOpen = false
	}

	for addr < end {
		tag := Tag(s.Region.ReadTag(addr))
		if tag == EndTag {
			closeRun()
			return newFreeList(chunks), stats, nil
		}

		size, err := s.Layout.Size(addr)
		if err != nil {
			return nil, stats, err
		}

		free := tag == EmptyTag || !tag.Marked()
		if !free {
			s.Region.WriteTag(addr, int32(tag.Unmarked()))
		}

		if free {
			if !runOpen {
				runOpen = true
				runStart = addr
				runSize = 0
			}
			runSize += size
		} else {
			closeRun()
			stats.LiveObjects++
			stats.LiveBytes += size
		}

		addr = addr.Add(size)
	}
	return nil, stats, fmt.Errorf("gcobj: heap walk in Sweep ran past region end without hitting END")
}
