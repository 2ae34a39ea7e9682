/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// Layout constants for the segregated-fit allocator. Sizes are in bytes.
const (
	wordSize  = 4  // WSIZE
	hdrSize   = 2  // compact header/footer word width
	dblSize   = 8  // DSIZE, the allocator's alignment granularity
	minBlockSize = 16 // MINSIZE

	// chunkSize is the minimum number of bytes the heap is grown by
	// whenever the wilderness can't satisfy a request on its own.
	chunkSize = 192

	// numBins is the number of segregated free lists (SEGSIZE).
	numBins = 16

	// largeThreshold is the smallest true block size that gets the
	// extended (8-byte header/footer) encoding.
	largeThreshold = 65536

	// largeSentinel is the value stashed in a large block's compact size
	// field; readers use it to know to go fetch the real size from the
	// extended word instead.
	largeSentinel = 65528

	flagAlloc     = 0x1
	flagPrevAlloc = 0x2
	flagLarge     = 0x4
	flagMask      = 0x7

	rootTableBytes = numBins * wordSize // 64
	padBytes       = 2

	// heapDataOffset is the offset of the first real block (the initial
	// wilderness), right after the root table, the alignment pad, and
	// the prologue's header+footer words.
	heapDataOffset = rootTableBytes + padBytes + hdrSize + hdrSize // 70

	// initialExtend is how much the host must hand over during
	// Initialize before any real block exists: the root table, the pad,
	// the prologue header+footer, and the first epilogue header.
	initialExtend = rootTableBytes + padBytes + hdrSize + hdrSize + hdrSize // 72
)

// lockoutLargeBins mirrors the disabled "large bin lockout" in the source
// this allocator is modeled on: skip bins >= 13 when servicing a request
// whose own bin is <= 5, so small requests don't eat into large free
// blocks. Spec leaves it off by default pending utilization measurements
// that don't exist yet.
const lockoutLargeBins = false

const largeBinLockoutFloor = 13
const largeBinLockoutCeil = 5
