package images

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1081} {
		var total atomic.Int64
		seen := make([]int32, n)
		Parallel(n, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
				total.Add(1)
			}
		})
		assert.EqualValues(t, n, total.Load())
		for i, v := range seen {
			assert.EqualValuesf(t, 1, v, "index %d visited %d times", i, v)
		}
	}
}

func TestMapCoord(t *testing.T) {
	tests := []struct {
		name     string
		coord    int
		size     int
		mode     EdgeMode
		expected int
	}{
		{"in range", 3, 5, Reflect101EdgeMode, 3},
		{"clamp low", -2, 5, ClampEdgeMode, 0},
		{"clamp high", 7, 5, ClampEdgeMode, 4},
		{"mirror low", -2, 5, MirrorEdgeMode, 1},
		{"mirror high", 6, 5, MirrorEdgeMode, 3},
		{"reflect101 low", -2, 5, Reflect101EdgeMode, 2},
		{"reflect101 high", 6, 5, Reflect101EdgeMode, 2},
		{"reflect101 far", -9, 5, Reflect101EdgeMode, 1},
		{"wrap low", -1, 5, WrapEdgeMode, 4},
		{"wrap high", 12, 5, WrapEdgeMode, 2},
		{"single sample", -3, 1, Reflect101EdgeMode, 0},
		{"unknown mode clamps", -3, 5, EdgeMode("bogus"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapCoord(tt.coord, tt.size, tt.mode))
		})
	}
}
