/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "testing"

func TestSetTagsRoundTripSmall(t *testing.T) {
	buf := make([]byte, 256)
	setTags(buf, 16, 64, true, false)

	if got := blockSize(buf, 16); got != 64 {
		t.Fatalf("blockSize = %d, want 64", got)
	}
	if !isAlloc(buf, 16) {
		t.Fatalf("isAlloc = false, want true")
	}
	if isPrevAlloc(buf, 16) {
		t.Fatalf("isPrevAlloc = true, want false")
	}
	if isLarge(buf, 16) {
		t.Fatalf("isLarge = true, want false")
	}
}

func TestSetTagsRoundTripLarge(t *testing.T) {
	buf := make([]byte, 200000)
	const size = 131072
	setTags(buf, 100, size, false, true)

	if !isLarge(buf, 100) {
		t.Fatalf("isLarge = false, want true")
	}
	if got := blockSize(buf, 100); got != size {
		t.Fatalf("blockSize = %d, want %d", got, size)
	}
	if isAlloc(buf, 100) {
		t.Fatalf("isAlloc = true, want false")
	}
	if !isPrevAlloc(buf, 100) {
		t.Fatalf("isPrevAlloc = false, want true")
	}

	// Footer (free block, so present) must agree with the header.
	foff := ptr(100) + size - footerBytes(true)
	if got := blockSize(buf[:foff+8], foff); got != size {
		t.Fatalf("footer size = %d, want %d", got, size)
	}
}

func TestBlockFromPointerSmall(t *testing.T) {
	buf := make([]byte, 256)
	setTags(buf, 16, 64, true, false)
	p := payloadOffset(16, false)
	if got := blockFromPointer(buf, p); got != 16 {
		t.Fatalf("blockFromPointer(%d) = %d, want 16", p, got)
	}
}

func TestBlockFromPointerLarge(t *testing.T) {
	buf := make([]byte, 200000)
	const size = 100000
	setTags(buf, 100, size, true, false)
	p := payloadOffset(100, true)
	if got := blockFromPointer(buf, p); got != 100 {
		t.Fatalf("blockFromPointer(%d) = %d, want 100", p, got)
	}
}

func TestFooterSizeBefore(t *testing.T) {
	buf := make([]byte, 256)
	setTags(buf, 16, 48, false, true)
	next := ptr(16 + 48)
	if got := footerSizeBefore(buf, next); got != 48 {
		t.Fatalf("footerSizeBefore = %d, want 48", got)
	}
}

func TestAllocatedSmallBlockHasNoFooter(t *testing.T) {
	buf := make([]byte, 256)
	// Poison the region so a stray footer write would be detectable.
	for i := range buf {
		buf[i] = 0xAA
	}
	setTags(buf, 16, 32, true, false)
	// Only the header word (2 bytes) should have been touched; the rest,
	// including where a footer would have landed, stays poisoned.
	if buf[16+30] != 0xAA || buf[16+31] != 0xAA {
		t.Fatalf("allocated small block wrote into footer-sized tail")
	}
}

func TestAdjustedSize(t *testing.T) {
	tests := []struct {
		size int
		min  uint32
	}{
		{1, minBlockSize},
		{8, 24},
		{100, 112},
	}
	for _, tt := range tests {
		got := adjustedSize(tt.size)
		if got%dblSize != 0 {
			t.Errorf("adjustedSize(%d) = %d, not 8-byte aligned", tt.size, got)
		}
		if got < tt.min {
			t.Errorf("adjustedSize(%d) = %d, want >= %d", tt.size, got, tt.min)
		}
	}
}

func TestAdjustedSizeCrossesLargeThreshold(t *testing.T) {
	got := adjustedSize(largeThreshold)
	if got < largeThreshold+2*dblSize {
		t.Fatalf("adjustedSize(%d) = %d, want extra headroom past the large threshold", largeThreshold, got)
	}
}
