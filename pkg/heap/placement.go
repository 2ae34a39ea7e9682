/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// findFit locates a free block of at least asize bytes, removing it from
// its bin's list (the wilderness is returned without being touched, since
// it was never a list member). Bins 0-4 hold a single exact size each, so
// any entry satisfies the request and the search is first-fit; bins above
// that hold a size range and are searched best-fit, minimizing leftover
// slack within the bin before falling through to the next one.
func (h *Heap) findFit(asize uint32) (ptr, bool) {
	buf := h.buf()
	start := bin(asize)
	for i := start; i < numBins; i++ {
		if lockoutLargeBins && i >= largeBinLockoutFloor && start <= largeBinLockoutCeil {
			break
		}
		root := h.getRoot(i)
		if root == 0 {
			continue
		}
		if i <= 4 {
			h.removeFree(root)
			return root, true
		}
		var best ptr
		bestSlack := uint32(1<<32 - 1)
		for cur := root; cur != 0; cur = linkPrev(buf, cur) {
			sz := blockSize(buf, cur)
			if sz >= asize && sz-asize < bestSlack {
				bestSlack = sz - asize
				best = cur
				if bestSlack == 0 {
					break
				}
			}
		}
		if best != 0 {
			h.removeFree(best)
			return best, true
		}
	}
	if blockSize(buf, h.wilderness)-minBlockSize >= asize {
		return h.wilderness, true
	}
	return 0, false
}

// place carves asize bytes out of block, splitting off a free remainder
// when there's enough slack left to form a valid block, and leaves the
// allocated fragment's own header/footer and its neighbors' prevAlloc
// bits consistent either way. block may be the wilderness, in which case
// the remainder (or block itself, if it didn't split) becomes the new
// wilderness instead of going on a free list.
func (h *Heap) place(block, asize uint32) {
	buf := h.buf()
	csize := blockSize(buf, block)
	wasWilderness := block == h.wilderness
	prevAlloc := isPrevAlloc(buf, block)

	if csize-asize >= minBlockSize {
		setTags(buf, block, asize, true, prevAlloc)
		rem := block + asize
		setTags(buf, rem, csize-asize, false, true)
		setPrevAllocBit(buf, h.next(rem), false)
		if wasWilderness {
			h.wilderness = rem
		} else {
			h.insertFree(rem)
		}
	} else {
		setTags(buf, block, csize, true, prevAlloc)
		setPrevAllocBit(buf, h.next(block), true)
	}
}
