/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
)

func newHeap(t *testing.T) *heap.Heap {
	t.Helper()
	h := heap.New(region.New())
	require.NoError(t, h.Initialize())
	require.NoError(t, h.Check(false))
	return h
}

func TestAllocateFreePair(t *testing.T) {
	h := newHeap(t)
	p, err := h.Allocate(64)
	require.NoError(t, err)
	require.NotZero(t, p)
	require.NoError(t, h.Check(false))

	h.Free(p)
	require.NoError(t, h.Check(false))
}

func TestAllocateWritePersists(t *testing.T) {
	h := newHeap(t)
	p, err := h.Allocate(32)
	require.NoError(t, err)

	// Payload bytes round-trip; nothing else in the allocator clobbers
	// them on a subsequent, unrelated allocation.
	h.Write(p, []byte("hello world, this is fine"))
	other, err := h.Allocate(16)
	require.NoError(t, err)
	require.NotEqual(t, p, other)

	got := make([]byte, len("hello world, this is fine"))
	h.Read(p, got)
	require.Equal(t, "hello world, this is fine", string(got))
}

func TestFragmentationAndCoalescing(t *testing.T) {
	h := newHeap(t)

	var ptrs []heap.Ptr
	for i := 0; i < 8; i++ {
		p, err := h.Allocate(40)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.NoError(t, h.Check(false))

	// Free every other block, fragmenting the heap, then free the rest
	// and expect everything to coalesce back down.
	for i := 0; i < len(ptrs); i += 2 {
		h.Free(ptrs[i])
	}
	require.NoError(t, h.Check(false))
	for i := 1; i < len(ptrs); i += 2 {
		h.Free(ptrs[i])
	}
	require.NoError(t, h.Check(false))

	stats := h.Stats()
	require.Equal(t, 0, stats.AllocBlocks)
}

func TestBestFitSelection(t *testing.T) {
	h := newHeap(t)

	a, err := h.Allocate(200)
	require.NoError(t, err)
	b, err := h.Allocate(40)
	require.NoError(t, err)
	c, err := h.Allocate(200)
	require.NoError(t, err)

	h.Free(a)
	h.Free(c)
	require.NoError(t, h.Check(false))

	// c borders the wilderness, so freeing it merges it into the
	// wilderness; a's block is then the only segregated-list entry. A
	// 180-byte request must be served from that list entry rather than
	// from the wilderness fallback.
	d, err := h.Allocate(180)
	require.NoError(t, err)
	require.NoError(t, h.Check(false))
	require.NotEqual(t, b, d)
	require.Equal(t, a, d)
}

func TestLargeBlockPath(t *testing.T) {
	h := newHeap(t)
	p, err := h.Allocate(200000)
	require.NoError(t, err)
	require.NoError(t, h.Check(false))

	h.Write(p, []byte("large block payload"))
	got := make([]byte, len("large block payload"))
	h.Read(p, got)
	require.Equal(t, "large block payload", string(got))

	h.Free(p)
	require.NoError(t, h.Check(false))
}

func TestReallocateGrow(t *testing.T) {
	h := newHeap(t)
	p, err := h.Allocate(32)
	require.NoError(t, err)
	h.Write(p, []byte("0123456789abcdef0123456789abcdef"))

	p2, err := h.Reallocate(p, 512)
	require.NoError(t, err)
	require.NoError(t, h.Check(false))

	got := make([]byte, 32)
	h.Read(p2, got)
	require.Equal(t, "0123456789abcdef0123456789abcdef", string(got))
}

func TestReallocateToZeroFrees(t *testing.T) {
	h := newHeap(t)
	p, err := h.Allocate(32)
	require.NoError(t, err)

	p2, err := h.Reallocate(p, 0)
	require.NoError(t, err)
	require.Zero(t, p2)
	require.NoError(t, h.Check(false))
}

func TestReallocateFromNilAllocates(t *testing.T) {
	h := newHeap(t)
	p, err := h.Reallocate(0, 48)
	require.NoError(t, err)
	require.NotZero(t, p)
}

func TestZeroedAllocate(t *testing.T) {
	h := newHeap(t)
	p, err := h.ZeroedAllocate(8, 16)
	require.NoError(t, err)

	got := make([]byte, 128)
	h.Read(p, got)
	for _, b := range got {
		require.Zero(t, b)
	}
}

func TestWildernessGrowth(t *testing.T) {
	h := newHeap(t)

	var ptrs []heap.Ptr
	for i := 0; i < 64; i++ {
		p, err := h.Allocate(400)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.NoError(t, h.Check(false))

	for _, p := range ptrs {
		h.Free(p)
	}
	require.NoError(t, h.Check(false))
}

func TestFreeNilIsNoOp(t *testing.T) {
	h := newHeap(t)
	h.Free(0)
	require.NoError(t, h.Check(false))
}
