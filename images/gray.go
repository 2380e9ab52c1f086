// Package images - Software raster processing used by the motion detector.
//
// The package owns a single-channel 8-bit raster (Gray) and the handful of
// operations the detection pipeline needs on it:
//
//	┌──────────────┐
//	│ Input Frame  │
//	└──────┬───────┘
//	┌──────────────────────────────┐
//	│ Luminance (BT.601)           │
//	└──────┬───────────────────────┘
//	┌──────────────────────────────┐
//	│ Gaussian blur (k×k)          │
//	└──────┬───────────────────────┘
//	┌──────────────────────────────┐
//	│ Absolute difference          │
//	└──────┬───────────────────────┘
//	┌──────────────────────────────┐
//	│ Threshold (binary mask)      │
//	└──────┬───────────────────────┘
//	┌──────────────────────────────┐
//	│ Dilation (k×k, n iterations) │
//	└──────┬───────────────────────┘
//	┌──────────────────────────────┐
//	│ External connected components│
//	└──────────────────────────────┘
//
// Software implements all of them without cgo. The opencv package provides
// the same operations on top of gocv when built with the withcv tag.
package images

import (
	"image"

	"github.com/nvr-ai/go-autopan/common"
)

// Gray is a row-major single-channel 8-bit raster.
//
// It is used for luminance images, difference images and binary masks
// (0 = background, 255 = foreground).
type Gray struct {
	// Width is the number of columns.
	Width int
	// Height is the number of rows.
	Height int
	// Pix holds Width*Height samples, row-major with no padding.
	Pix []uint8
}

// NewGray allocates a zeroed raster of the given dimensions.
//
// Arguments:
// - width: Number of columns.
// - height: Number of rows.
//
// Returns:
// - A zero-filled *Gray.
//
// @example
// mask := NewGray(640, 360)
func NewGray(width, height int) *Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// FromImage copies an *image.Gray into a Gray, dropping any bounds offset.
func FromImage(src *image.Gray) *Gray {
	b := src.Bounds()
	dst := NewGray(b.Dx(), b.Dy())
	for y := 0; y < dst.Height; y++ {
		srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], src.Pix[srcOff:srcOff+dst.Width])
	}
	return dst
}

// At returns the sample at (x, y). Coordinates must be in range.
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set writes the sample at (x, y). Coordinates must be in range.
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Size returns the raster dimensions.
func (g *Gray) Size() common.Size {
	return common.Size{W: g.Width, H: g.Height}
}

// Clone returns a deep copy.
func (g *Gray) Clone() *Gray {
	dst := &Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	copy(dst.Pix, g.Pix)
	return dst
}

// CountNonZero returns the number of non-zero samples.
func (g *Gray) CountNonZero() int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Image returns the raster as an *image.Gray sharing no memory with g.
// Useful for writing masks to disk while debugging.
func (g *Gray) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// Fill sets every sample inside box to v; the box is clipped to the raster.
func (g *Gray) Fill(box common.BoundingBox, v uint8) {
	r := box.Rect().Intersect(image.Rect(0, 0, g.Width, g.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := g.Pix[y*g.Width : (y+1)*g.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}
