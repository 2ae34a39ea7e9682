/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// blockReport is a human-readable snapshot of one block, used by Check's
// verbose mode.
type blockReport struct {
	Offset    ptr
	Size      uint32
	Alloc     bool
	PrevAlloc bool
	Large     bool
}

// Check walks the entire heap and verifies every invariant the allocator
// depends on: alignment and minimum size, header/footer agreement on
// free blocks, no two consecutive free blocks, the prologue and epilogue
// sentinels, and that every free block reachable by a heap walk is
// reachable from exactly one segregated list (with the wilderness
// accounting for the one block that should never be). When verbose is
// true it logs a line per block via spew, matching the original
// allocator's -DVERBOSE walk.
func (h *Heap) Check(verbose bool) error {
	buf := h.buf()

	prologue := ptr(rootTableBytes + padBytes)
	if blockSize(buf, prologue) != 0 || !isAlloc(buf, prologue) {
		return errors.Wrap(ErrCorrupt, "prologue header malformed")
	}
	if readU16(buf, prologue+hdrSize)&flagAlloc == 0 {
		return errors.Wrap(ErrCorrupt, "prologue footer malformed")
	}

	freeBlockCount := 0
	cur := ptr(heapDataOffset)
	for cur != h.epilogue {
		size := blockSize(buf, cur)
		if size < minBlockSize {
			return errors.Wrapf(ErrCorrupt, "block at %d smaller than minimum size", cur)
		}
		if size%dblSize != 0 {
			return errors.Wrapf(ErrCorrupt, "block at %d not 8-byte aligned", cur)
		}
		alloc := isAlloc(buf, cur)
		large := isLarge(buf, cur)
		if !alloc {
			if hasFooter(large, false) {
				fsize := footerSizeBefore(buf, h.next(cur))
				if fsize != size {
					return errors.Wrapf(ErrCorrupt, "header/footer size mismatch at %d", cur)
				}
			}
			freeBlockCount++
			if !isPrevAlloc(buf, cur) {
				return errors.Wrapf(ErrCorrupt, "two consecutive free blocks at %d", cur)
			}
		}
		if verbose {
			fmt.Println(spew.Sdump(blockReport{
				Offset:    cur,
				Size:      size,
				Alloc:     alloc,
				PrevAlloc: isPrevAlloc(buf, cur),
				Large:     large,
			}))
		}
		cur = h.next(cur)
	}

	if blockSize(buf, h.epilogue) != 0 || !isAlloc(buf, h.epilogue) {
		return errors.Wrap(ErrCorrupt, "epilogue malformed")
	}

	segListCount := 0
	for i := 0; i < numBins; i++ {
		for b := h.getRoot(i); b != 0; b = linkPrev(buf, b) {
			if isAlloc(buf, b) {
				return errors.Wrapf(ErrCorrupt, "allocated block %d found on free list %d", b, i)
			}
			if bin(blockSize(buf, b)) != i {
				return errors.Wrapf(ErrCorrupt, "block %d stored in wrong bin", b)
			}
			if n := linkNext(buf, b); n != 0 && linkPrev(buf, n) != b {
				return errors.Wrapf(ErrCorrupt, "free list %d link inconsistency at %d", i, b)
			}
			segListCount++
		}
	}

	if freeBlockCount != segListCount+1 {
		return errors.Wrapf(ErrCorrupt, "free block count %d does not match seg list count %d + wilderness", freeBlockCount, segListCount)
	}

	return nil
}
