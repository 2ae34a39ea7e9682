/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */
package heap

import "testing"

func TestBin(t *testing.T) {
	tests := []struct {
		size uint32
		want int
	}{
		{16, 0},
		{24, 1},
		{32, 2},
		{40, 3},
		{48, 4},
		{49, 5},
		{72, 5},
		{73, 6},
		{136, 6},
		{137, 7},
		{264, 7},
		{265, 8},
		{520, 8},
		{521, 9},
		{1032, 9},
		{1033, 10},
		{2056, 10},
		{2057, 11},
		{4104, 11},
		{4105, 12},
		{16392, 12},
		{16393, 13},
		{32774, 13},
		{32775, 14},
		{262152, 14},
		{262153, 15},
		{1 << 20, 15},
	}
	for _, tt := range tests {
		if got := bin(tt.size); got != tt.want {
			t.Errorf("bin(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
