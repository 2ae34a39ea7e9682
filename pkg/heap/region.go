/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

// Region is the host collaborator a Heap grows into: an sbrk-equivalent
// byte arena. Extend appends n bytes and returns the offset of the first
// newly available byte; Low/High describe the currently committed range
// (both inclusive, as 32-bit-representable offsets — this allocator never
// manages more than 2^31 bytes of region). Bytes exposes the committed
// range directly so the codec can read and write it without copying.
//
// A concrete implementation lives in pkg/region; Heap only depends on
// this interface so tests can substitute a capped or failing host.
type Region interface {
	Extend(n int) (int64, error)
	Low() int64
	High() int64
	Bytes() []byte
}
