/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "github.com/pkg/errors"

// ErrOutOfMemory is returned when the host region refuses to grow far
// enough to satisfy a request.
var ErrOutOfMemory = errors.New("heap: out of memory")

// ErrCorrupt is returned by Check, and by any operation that notices a
// violated invariant while it runs, when the heap's internal bookkeeping
// no longer matches what the codec expects.
var ErrCorrupt = errors.New("heap: corrupt heap state")
