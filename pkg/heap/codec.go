/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "encoding/binary"

// Block offsets and sizes are 32-bit byte offsets from the start of the
// region, never native pointers. Offset 0 is never a valid block (the root
// table lives there) so it doubles as a nil sentinel for free-list links
// and returned pointers.
type ptr = uint32

func readU16(buf []byte, off ptr) uint16 {
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

func writeU16(buf []byte, off ptr, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

func readU32(buf []byte, off ptr) uint32 {
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func writeU32(buf []byte, off ptr, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// pack16 folds size and the three status bits into one compact word. It is
// only meaningful when size < largeThreshold, since larger sizes lose bits
// to the mask.
func pack16(size uint32, alloc, prevAlloc, large bool) uint16 {
	v := uint16(size) &^ flagMask
	if alloc {
		v |= flagAlloc
	}
	if prevAlloc {
		v |= flagPrevAlloc
	}
	if large {
		v |= flagLarge
	}
	return v
}

func pack32(size uint32, alloc, prevAlloc, large bool) uint32 {
	v := size &^ flagMask
	if alloc {
		v |= flagAlloc
	}
	if prevAlloc {
		v |= flagPrevAlloc
	}
	if large {
		v |= flagLarge
	}
	return v
}

// isLarge reports a block's large bit by reading the compact word that
// always sits at block+0.
func isLarge(buf []byte, block ptr) bool {
	return readU16(buf, block)&flagLarge != 0
}

func isAlloc(buf []byte, block ptr) bool {
	return readU16(buf, block)&flagAlloc != 0
}

func isPrevAlloc(buf []byte, block ptr) bool {
	return readU16(buf, block)&flagPrevAlloc != 0
}

// blockSize reads a block's true size from its header, following the
// extended word when the compact word's large bit is set.
func blockSize(buf []byte, block ptr) uint32 {
	if isLarge(buf, block) {
		return readU32(buf, block+hdrSize) &^ flagMask
	}
	return uint32(readU16(buf, block)) &^ flagMask
}

// headerBytes is how many bytes of header precede the payload: 2 for a
// compact-only header, 8 for the extended layout (compact word, 4-byte
// size, and a duplicate compact word immediately before the payload so
// that the large bit can always be read at payload-2 regardless of
// layout).
func headerBytes(large bool) ptr {
	if large {
		return 8
	}
	return hdrSize
}

// hasFooter reports whether a block carries a footer: free blocks always
// do (the free-list links and coalescing both need one), and so do
// allocated large blocks (the 8-byte payload offset needs the same
// duplicate-compact trick at the tail for prev recovery during
// coalescing); allocated small blocks omit it entirely.
func hasFooter(large, alloc bool) bool {
	return !alloc || large
}

func footerBytes(large bool) ptr {
	if large {
		return 8
	}
	return hdrSize
}

func payloadOffset(block ptr, large bool) ptr {
	return block + headerBytes(large)
}

// setTags writes a block's header and, if applicable, footer in one shot.
// size determines the large bit; callers never pass it independently.
func setTags(buf []byte, block ptr, size uint32, alloc, prevAlloc bool) {
	large := size >= largeThreshold
	if large {
		writeU16(buf, block, pack16(largeSentinel, alloc, prevAlloc, true))
		writeU32(buf, block+hdrSize, pack32(size, alloc, prevAlloc, true))
		writeU16(buf, block+hdrSize+4, pack16(largeSentinel, alloc, prevAlloc, true))
	} else {
		writeU16(buf, block, pack16(size, alloc, prevAlloc, false))
	}
	if hasFooter(large, alloc) {
		foff := block + size - footerBytes(large)
		if large {
			writeU16(buf, foff, pack16(largeSentinel, alloc, prevAlloc, true))
			writeU32(buf, foff+hdrSize, pack32(size, alloc, prevAlloc, true))
			writeU16(buf, foff+hdrSize+4, pack16(largeSentinel, alloc, prevAlloc, true))
		} else {
			writeU16(buf, foff, pack16(size, alloc, prevAlloc, false))
		}
	}
}

// setPrevAllocBit flips a block's prevAlloc bit in place, in its header and
// (when present) its footer, without touching size or its own alloc bit.
func setPrevAllocBit(buf []byte, block ptr, prevAlloc bool) {
	size := blockSize(buf, block)
	alloc := isAlloc(buf, block)
	setTags(buf, block, size, alloc, prevAlloc)
}

// footerSizeBefore reads the size encoded in the footer word immediately
// preceding block, used to locate block's predecessor. The duplicate
// compact word at block-2 carries the large bit regardless of layout.
func footerSizeBefore(buf []byte, block ptr) uint32 {
	tag := readU16(buf, block-hdrSize)
	if tag&flagLarge != 0 {
		return readU32(buf, block-hdrSize-4) &^ flagMask
	}
	return uint32(tag) &^ flagMask
}

// blockFromPointer recovers a block's start from the pointer handed back
// by Allocate, using the same duplicate-compact-word trick: the byte pair
// at ptr-2 always carries the large bit, telling us whether 2 or 8 bytes
// of header precede the payload.
func blockFromPointer(buf []byte, p ptr) ptr {
	tag := readU16(buf, p-hdrSize)
	if tag&flagLarge != 0 {
		return p - 8
	}
	return p - hdrSize
}

// linkPrev/linkNext read and write the free-list bookkeeping fields that
// live at the start of a free block's payload. They are only valid while
// the block is free; once allocated this space belongs to the caller.
func linkPrev(buf []byte, block ptr) ptr {
	large := isLarge(buf, block)
	return readU32(buf, payloadOffset(block, large))
}

func linkNext(buf []byte, block ptr) ptr {
	large := isLarge(buf, block)
	return readU32(buf, payloadOffset(block, large)+4)
}

func setLinkPrev(buf []byte, block, v ptr) {
	large := isLarge(buf, block)
	writeU32(buf, payloadOffset(block, large), v)
}

func setLinkNext(buf []byte, block, v ptr) {
	large := isLarge(buf, block)
	writeU32(buf, payloadOffset(block, large)+4, v)
}

func roundUp8(n uint32) uint32 {
	return (n + 7) &^ 7
}
