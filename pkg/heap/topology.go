/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "github.com/pkg/errors"

// Ptr is a handle returned by Allocate and consumed by Free/Reallocate. It
// is a 32-bit byte offset into the heap's region, never a native pointer.
// The zero value is the heap's nil.
type Ptr = uint32

// Heap is a segregated-fit allocator grown on top of a Region. It is not
// safe for concurrent use; callers serialize their own access, the same
// way the allocator it's modeled on assumes a single thread of execution.
type Heap struct {
	mem         Region
	epilogue    ptr
	wilderness  ptr
	growthChunk uint32
}

// New wraps mem in a Heap, growing it by at least chunkSize bytes whenever
// the wilderness runs short. Callers must call Initialize before any
// other method.
func New(mem Region) *Heap {
	return &Heap{mem: mem, growthChunk: chunkSize}
}

// NewWithGrowthChunk is New, but lets the caller override the default
// chunkSize growth increment — heapctl exposes this as --chunk-size.
func NewWithGrowthChunk(mem Region, growthChunk uint32) *Heap {
	if growthChunk < minBlockSize {
		growthChunk = chunkSize
	}
	return &Heap{mem: mem, growthChunk: growthChunk}
}

func (h *Heap) buf() []byte {
	return h.mem.Bytes()
}

// Initialize lays out the segregated-root table, the prologue, and the
// first wilderness block, and extends the region far enough to hold them.
func (h *Heap) Initialize() error {
	if _, err := h.mem.Extend(initialExtend); err != nil {
		return errors.Wrap(err, "heap: initializing root table and prologue")
	}
	buf := h.buf()

	// Root table [0, rootTableBytes) and the alignment pad are already
	// zero from the freshly extended region.
	prologue := ptr(rootTableBytes + padBytes)
	setTags(buf, prologue, 0, true, false)
	epilogue := prologue + 2*hdrSize
	// Prologue's own footer word lives immediately after its header;
	// setTags can't place it (size 0 degenerates the normal footer
	// offset formula), so it's written directly as a second compact
	// word with identical tags.
	writeU16(buf, prologue+hdrSize, pack16(0, true, false, false))
	writeU16(buf, epilogue, pack16(0, true, true, false))

	h.epilogue = epilogue
	h.wilderness = epilogue

	if err := h.extendHeap(int(h.growthChunk)); err != nil {
		return errors.Wrap(err, "heap: growing initial wilderness block")
	}
	return nil
}

// next returns the block immediately following block, which may be the
// epilogue.
func (h *Heap) next(block ptr) ptr {
	return block + blockSize(h.buf(), block)
}

// prev returns the block immediately preceding block. It is only valid
// when that predecessor carries a footer (i.e. is free, or is an
// allocated large block) — callers only call it from coalescing paths,
// which only ever look backward when the prevAlloc bit says the
// predecessor is free.
func (h *Heap) prev(block ptr) ptr {
	return block - footerSizeBefore(h.buf(), block)
}

// extendHeap grows the region by n bytes and turns the newly available
// space into a single free block, reusing the old epilogue's two header
// bytes as the new block's header (the standard sbrk-epilogue trick: the
// epilogue always occupies exactly the last two bytes of the committed
// region, so growing the region by n bytes and starting the new block at
// the old epilogue's offset leaves the new epilogue landing exactly in
// the newly committed region's last two bytes).
func (h *Heap) extendHeap(n int) error {
	buf0 := h.buf()
	oldEpilogue := h.epilogue
	predAlloc := isPrevAlloc(buf0, oldEpilogue)

	prevHigh, err := h.mem.Extend(n)
	if err != nil {
		return errors.Wrap(ErrOutOfMemory, err.Error())
	}
	if ptr(prevHigh) != oldEpilogue+hdrSize {
		return errors.Wrap(ErrCorrupt, "heap: region grew from an unexpected offset")
	}

	buf := h.buf()
	newBlock := oldEpilogue
	size := uint32(n)
	setTags(buf, newBlock, size, false, predAlloc)

	newEpilogue := newBlock + size
	writeU16(buf, newEpilogue, pack16(0, true, false, false))
	h.epilogue = newEpilogue

	if !predAlloc {
		merged := h.coalesce(newBlock)
		setPrevAllocBit(h.buf(), h.next(merged), false)
		h.wilderness = merged
	} else {
		h.wilderness = newBlock
	}
	return nil
}
