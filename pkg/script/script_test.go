/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package script_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/heapwright/heapwright/pkg/heap"
	"github.com/heapwright/heapwright/pkg/region"
	"github.com/heapwright/heapwright/pkg/script"
)

func TestParseAndRun(t *testing.T) {
	src := `
# a little alloc/free/realloc/calloc trace
a 0 64
a 1 128
c 2 4 16
r 0 256
f 1
`
	ops, err := script.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, ops, 5)

	h := heap.New(region.New())
	require.NoError(t, h.Initialize())

	runner := script.NewRunner(h)
	runner.Check = func() error { return h.Check(false) }

	for _, op := range ops {
		require.NoError(t, runner.Run(op))
	}

	require.Len(t, runner.Live(), 2)
	_, ok := runner.Pointer(1)
	require.False(t, ok, "id 1 was freed and should no longer resolve")
}

func TestParseRejectsMalformedLines(t *testing.T) {
	_, err := script.Parse(strings.NewReader("a 1\n"))
	require.Error(t, err)

	_, err = script.Parse(strings.NewReader("bogus 1 2\n"))
	require.Error(t, err)
}

func TestOpStringRoundTrips(t *testing.T) {
	src := "a 0 64\nf 0\nr 1 32\nc 2 4 8\n"
	ops, err := script.Parse(strings.NewReader(src))
	require.NoError(t, err)

	var out []string
	for _, op := range ops {
		out = append(out, op.String())
	}
	require.Equal(t, strings.TrimRight(src, "\n"), strings.Join(out, "\n"))
}
