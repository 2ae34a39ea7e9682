/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// coalesce merges block with whichever free neighbors border it and
// returns the resulting block's start. It does not touch the free list
// membership of the wilderness (the caller is responsible for deciding
// whether the merged result becomes the new wilderness); any other
// absorbed neighbor is unlinked from its bin. block itself must already
// be marked free before this is called.
func (h *Heap) coalesce(block ptr) ptr {
	buf := h.buf()
	prevFree := !isPrevAlloc(buf, block)
	succ := h.next(block)
	nextFree := !isAlloc(buf, succ)
	size := blockSize(buf, block)

	switch {
	case !prevFree && !nextFree:
		return block

	case !prevFree && nextFree:
		nsize := size + blockSize(buf, succ)
		if succ != h.wilderness {
			h.removeFree(succ)
		}
		setTags(buf, block, nsize, false, true)
		return block

	case prevFree && !nextFree:
		pred := h.prev(block)
		predPrevAlloc := isPrevAlloc(buf, pred)
		nsize := blockSize(buf, pred) + size
		if pred != h.wilderness {
			h.removeFree(pred)
		}
		setTags(buf, pred, nsize, false, predPrevAlloc)
		return pred

	default:
		pred := h.prev(block)
		predPrevAlloc := isPrevAlloc(buf, pred)
		nsize := blockSize(buf, pred) + size + blockSize(buf, succ)
		if pred != h.wilderness {
			h.removeFree(pred)
		}
		if succ != h.wilderness {
			h.removeFree(succ)
		}
		setTags(buf, pred, nsize, false, predPrevAlloc)
		return pred
	}
}
