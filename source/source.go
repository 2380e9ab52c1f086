// Package source - Frame sources feeding the detection pipeline.
package source

import (
	"context"
	"image"
)

// Source produces the ordered, sampled frame sequence of one clip.
type Source interface {
	// Frames returns every sampled frame in order. The returned images must
	// not be modified by the caller.
	Frames(ctx context.Context) ([]image.Image, error)
}

// SampleInterval returns how many source frames to advance per kept frame
// to approximate targetFPS: int(originalFPS/targetFPS) when the target is
// lower than the original rate, else 1.
//
// @example
// SampleInterval(30, 5) // 6
// SampleInterval(24, 30) // 1
func SampleInterval(originalFPS, targetFPS float64) int {
	if targetFPS <= 0 || originalFPS <= 0 || targetFPS >= originalFPS {
		return 1
	}
	interval := int(originalFPS / targetFPS)
	if interval < 1 {
		return 1
	}
	return interval
}
