/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// Stats summarizes a heap's current footprint and utilization, the kind
// of running total the original allocator only ever sketched out in a
// comment ("should stay above 70%").
type Stats struct {
	Footprint    uint64 // total bytes committed from the region, including the root table
	PayloadBytes uint64 // bytes actually usable by allocated blocks (excluding header/footer overhead)
	FreeBytes    uint64 // bytes sitting in free blocks, including the wilderness
	AllocBlocks  int
	FreeBlocks   int
	BinCounts    [numBins]int
}

// Utilization returns the fraction of the heap's footprint doing useful
// work, in [0,1].
func (s Stats) Utilization() float64 {
	if s.Footprint == 0 {
		return 0
	}
	return float64(s.PayloadBytes) / float64(s.Footprint)
}

// Stats walks the heap and tallies occupancy, mirroring Check's walk but
// without validating invariants.
func (h *Heap) Stats() Stats {
	buf := h.buf()
	st := Stats{Footprint: uint64(len(buf))}

	cur := ptr(heapDataOffset)
	for cur != h.epilogue {
		size := blockSize(buf, cur)
		large := isLarge(buf, cur)
		if isAlloc(buf, cur) {
			st.AllocBlocks++
			payload := size - headerBytes(large)
			if hasFooter(large, true) {
				payload -= footerBytes(large)
			}
			st.PayloadBytes += uint64(payload)
		} else {
			st.FreeBlocks++
			st.FreeBytes += uint64(size)
		}
		cur = h.next(cur)
	}

	for i := 0; i < numBins; i++ {
		n := 0
		for b := h.getRoot(i); b != 0; b = linkPrev(buf, b) {
			n++
		}
		st.BinCounts[i] = n
	}

	return st
}
