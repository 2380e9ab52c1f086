package images

import (
	"runtime"
	"sync"
)

// Parallel splits [0, dataSize) into one contiguous partition per CPU and runs
// fn on each partition concurrently.
//
// Arguments:
// - dataSize: The number of rows (or columns) to process.
// - fn: Function called with each partition's [start, end) range.
//
// @example
//
//	Parallel(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(dataSize int, fn func(partStart, partEnd int)) {
	numGoroutines := runtime.NumCPU()

	// Small inputs are not worth the goroutine overhead.
	if dataSize < numGoroutines*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / numGoroutines

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize
		// Last partition takes the remainder.
		if i == numGoroutines-1 {
			partEnd = dataSize
		}
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}
	wg.Wait()
}

// EdgeMode defines how to sample coordinates that fall outside the raster.
type EdgeMode string

const (
	// ClampEdgeMode repeats the edge sample: aaa|abcd|ddd.
	ClampEdgeMode EdgeMode = "clamp"
	// MirrorEdgeMode reflects including the edge sample: cba|abcd|dcb.
	MirrorEdgeMode EdgeMode = "mirror"
	// Reflect101EdgeMode reflects around the edge sample: dcb|abcd|cba.
	// This is OpenCV's BORDER_DEFAULT and the default for blurring.
	Reflect101EdgeMode EdgeMode = "reflect101"
	// WrapEdgeMode tiles the raster: bcd|abcd|abc.
	WrapEdgeMode EdgeMode = "wrap"
)

// MapCoord maps a coordinate into [0, size) according to the edge mode.
//
// Arguments:
// - coord: The coordinate to map.
// - size: The number of samples along the axis. Must be > 0.
// - mode: The edge mode to use. Unknown modes clamp.
//
// Returns:
// - A valid index in [0, size).
//
// @example
// MapCoord(-2, 5, Reflect101EdgeMode) // 2
// MapCoord(-2, 5, MirrorEdgeMode)     // 1
func MapCoord(coord, size int, mode EdgeMode) int {
	if coord >= 0 && coord < size {
		return coord
	}
	if size == 1 {
		return 0
	}
	switch mode {
	case MirrorEdgeMode:
		for coord < 0 || coord >= size {
			if coord < 0 {
				coord = -coord - 1
			} else {
				coord = 2*size - coord - 1
			}
		}
		return coord
	case Reflect101EdgeMode:
		for coord < 0 || coord >= size {
			if coord < 0 {
				coord = -coord
			} else {
				coord = 2*size - coord - 2
			}
		}
		return coord
	case WrapEdgeMode:
		return (coord%size + size) % size
	default:
		if coord < 0 {
			return 0
		}
		return size - 1
	}
}
