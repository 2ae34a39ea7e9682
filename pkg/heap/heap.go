/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "github.com/pkg/errors"

// adjustedSize converts a caller-requested byte count into the true block
// size the allocator will carve out: room for a header, footer, and the
// free-list links a freed copy of this block would need, rounded up to
// the allocator's 8-byte granularity, with extra headroom once the result
// crosses into the large-block encoding.
func adjustedSize(size int) uint32 {
	n := uint32(size)
	asize := roundUp8(n+1) + dblSize
	if n <= dblSize-2 {
		asize += dblSize
	}
	if asize >= largeThreshold {
		asize += 2 * dblSize
	}
	return asize
}

// Allocate reserves at least size bytes and returns a pointer to the
// start of the payload. It returns ErrOutOfMemory if the region can't be
// grown far enough to satisfy the request.
func (h *Heap) Allocate(size int) (Ptr, error) {
	if size <= 0 {
		return 0, errors.New("heap: allocate requires a positive size")
	}
	asize := adjustedSize(size)

	block, ok := h.findFit(asize)
	if !ok {
		wild := blockSize(h.buf(), h.wilderness)
		need := asize
		if wild >= minBlockSize {
			if slack := wild - minBlockSize; asize >= slack {
				need = asize - slack
			} else {
				need = 0
			}
		}
		grow := need
		if grow < h.growthChunk {
			grow = h.growthChunk
		}
		if err := h.extendHeap(int(grow)); err != nil {
			return 0, err
		}
		block, ok = h.findFit(asize)
		if !ok {
			return 0, ErrOutOfMemory
		}
	}

	h.place(block, asize)
	large := isLarge(h.buf(), block)
	return payloadOffset(block, large), nil
}

// Free releases a pointer previously returned by Allocate or Reallocate.
// Freeing the heap's nil pointer is a no-op.
func (h *Heap) Free(p Ptr) {
	if p == 0 {
		return
	}
	buf := h.buf()
	block := blockFromPointer(buf, p)
	size := blockSize(buf, block)
	prevAlloc := isPrevAlloc(buf, block)
	setTags(buf, block, size, false, prevAlloc)

	succWasWilderness := h.next(block) == h.wilderness
	merged := h.coalesce(block)
	setPrevAllocBit(h.buf(), h.next(merged), false)

	if succWasWilderness {
		h.wilderness = merged
	} else {
		h.insertFree(merged)
	}
}

// Reallocate grows or shrinks a previous allocation, copying the
// preserved prefix of the old payload into a fresh block. It implements
// only the allocate-copy-free path: there is no in-place shrink or
// forward-merge with a free successor.
func (h *Heap) Reallocate(p Ptr, size int) (Ptr, error) {
	if size == 0 {
		h.Free(p)
		return 0, nil
	}
	if p == 0 {
		return h.Allocate(size)
	}

	buf := h.buf()
	block := blockFromPointer(buf, p)
	large := isLarge(buf, block)
	oldSize := blockSize(buf, block)
	oldPayload := oldSize - headerBytes(large)
	if hasFooter(large, true) {
		oldPayload -= footerBytes(large)
	}

	newP, err := h.Allocate(size)
	if err != nil {
		return 0, err
	}

	n := oldPayload
	if uint32(size) < n {
		n = uint32(size)
	}
	newBuf := h.buf()
	copy(newBuf[newP:newP+n], newBuf[p:p+n])

	h.Free(p)
	return newP, nil
}

// Write copies data into the payload at p, starting at its first byte.
// Callers are responsible for not writing past the block's usable size.
func (h *Heap) Write(p Ptr, data []byte) {
	copy(h.buf()[p:], data)
}

// Read copies len(into) bytes from the payload at p into into.
func (h *Heap) Read(p Ptr, into []byte) {
	copy(into, h.buf()[p:])
}

// ZeroedAllocate allocates room for nmemb elements of size bytes each,
// zeroing the payload. It does not guard against the nmemb*size
// multiplication overflowing, matching the allocator it's modeled on.
func (h *Heap) ZeroedAllocate(nmemb, size int) (Ptr, error) {
	total := nmemb * size
	if total <= 0 {
		return 0, errors.New("heap: zeroed allocate requires a positive total size")
	}
	p, err := h.Allocate(total)
	if err != nil {
		return 0, err
	}
	buf := h.buf()
	for i := range buf[p : p+uint32(total)] {
		buf[p+ptr(i)] = 0
	}
	return p, nil
}
