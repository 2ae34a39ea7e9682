/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// bin returns the segregated free-list index for a block of the given
// true size. Bins 0-4 hold exactly one size each (the smallest possible
// block sizes); every bin above that covers a power-of-two-ish range.
func bin(size uint32) int {
	switch {
	case size <= 48:
		return int(size>>3) - 2
	case size <= 72:
		return 5
	case size <= 136:
		return 6
	case size <= 264:
		return 7
	case size <= 520:
		return 8
	case size <= 1032:
		return 9
	case size <= 2056:
		return 10
	case size <= 4104:
		return 11
	case size <= 16392:
		return 12
	case size <= 32774:
		return 13
	case size <= 262152:
		return 14
	default:
		return 15
	}
}

func (h *Heap) rootOffset(i int) ptr {
	return ptr(i * wordSize)
}

func (h *Heap) getRoot(i int) ptr {
	return readU32(h.buf(), h.rootOffset(i))
}

func (h *Heap) setRoot(i int, v ptr) {
	writeU32(h.buf(), h.rootOffset(i), v)
}

// insertFree pushes block onto the head of its bin's list. Insertion is
// always LIFO and O(1); the wilderness is never passed here.
func (h *Heap) insertFree(block ptr) {
	buf := h.buf()
	i := bin(blockSize(buf, block))
	old := h.getRoot(i)
	setLinkPrev(buf, block, old)
	setLinkNext(buf, block, 0)
	if old != 0 {
		setLinkNext(buf, old, block)
	}
	h.setRoot(i, block)
}

// removeFree splices block out of its bin's list in O(1).
func (h *Heap) removeFree(block ptr) {
	buf := h.buf()
	i := bin(blockSize(buf, block))
	p := linkPrev(buf, block)
	n := linkNext(buf, block)
	if n == 0 {
		h.setRoot(i, p)
		if p != 0 {
			setLinkNext(buf, p, 0)
		}
	} else {
		setLinkPrev(buf, n, p)
		if p != 0 {
			setLinkNext(buf, p, n)
		}
	}
}
