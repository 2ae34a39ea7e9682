/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

// Package region provides the reference host collaborator pkg/heap grows
// into: an in-memory, append-only byte arena standing in for a real
// mmap/sbrk-backed address space.
package region

import "github.com/pkg/errors"

// ErrCapExceeded is returned by Extend when growing would push the region
// past an optional configured cap.
var ErrCapExceeded = errors.New("region: extend would exceed capacity")

// Region is a growable []byte arena. The zero value is a valid, empty,
// uncapped region.
type Region struct {
	buf []byte

	// MaxBytes caps how large the region may grow, simulating a host that
	// refuses to hand over more address space. Zero means uncapped.
	MaxBytes int64
}

// New returns an empty, uncapped region.
func New() *Region {
	return &Region{}
}

// NewCapped returns an empty region that refuses to grow past maxBytes.
func NewCapped(maxBytes int64) *Region {
	return &Region{MaxBytes: maxBytes}
}

// Extend appends n zeroed bytes and returns the offset of the first one.
func (r *Region) Extend(n int) (int64, error) {
	if n < 0 {
		return 0, errors.New("region: negative extend")
	}
	prev := int64(len(r.buf))
	if r.MaxBytes > 0 && prev+int64(n) > r.MaxBytes {
		return 0, errors.Wrapf(ErrCapExceeded, "extend(%d) at length %d exceeds cap %d", n, prev, r.MaxBytes)
	}
	r.buf = append(r.buf, make([]byte, n)...)
	return prev, nil
}

// Low is always 0: the region is a single arena with no preamble.
func (r *Region) Low() int64 {
	return 0
}

// High returns the offset of the last committed byte, or -1 when empty.
func (r *Region) High() int64 {
	return int64(len(r.buf)) - 1
}

// Bytes returns the live backing slice. It must be re-fetched after any
// call to Extend, since append may reallocate.
func (r *Region) Bytes() []byte {
	return r.buf
}
