package images

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-autopan/common"
)

// ErrSizeMismatch is returned when two rasters that must share dimensions do not.
var ErrSizeMismatch = common.ErrSizeMismatch

// AbsDiff computes |a - b| per sample.
//
// Arguments:
// - a, b: Rasters of identical dimensions.
//
// Returns:
// - A new difference raster.
// - ErrSizeMismatch (wrapped) if the dimensions differ.
//
// @example
// delta, err := AbsDiff(prevBlurred, currBlurred)
func AbsDiff(a, b *Gray) (*Gray, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return nil, errors.Wrapf(ErrSizeMismatch, "%v vs %v", a.Size(), b.Size())
	}

	dst := NewGray(a.Width, a.Height)
	for i, av := range a.Pix {
		bv := b.Pix[i]
		if av > bv {
			dst.Pix[i] = av - bv
		} else {
			dst.Pix[i] = bv - av
		}
	}
	return dst, nil
}

// Threshold binarizes a raster: samples strictly greater than t become 255,
// everything else becomes 0.
//
// @example
// mask := Threshold(delta, 25)
func Threshold(src *Gray, t uint8) *Gray {
	dst := NewGray(src.Width, src.Height)
	for i, v := range src.Pix {
		if v > t {
			dst.Pix[i] = 255
		}
	}
	return dst
}

// Dilate grows foreground regions with a ksize×ksize rectangular structuring
// element, applied iterations times.
//
// The anchor sits at ksize/2 like OpenCV's default anchor. Samples outside
// the raster never contribute, so regions do not bleed in from the border.
// A rectangular element is separable, so each iteration is a horizontal
// running max followed by a vertical one.
//
// Arguments:
// - src: The binary mask to dilate.
// - ksize: Side of the structuring element (5 in the default pipeline).
// - iterations: Number of times the dilation is applied.
//
// Returns:
// - A new dilated mask. ksize < 2 or iterations < 1 returns a copy.
//
// @example
// merged := Dilate(mask, 5, 2)
func Dilate(src *Gray, ksize, iterations int) *Gray {
	dst := src.Clone()
	if ksize < 2 || iterations < 1 || src.Width == 0 || src.Height == 0 {
		return dst
	}

	lo := -(ksize / 2)
	hi := ksize - 1 - ksize/2
	width, height := src.Width, src.Height
	tmp := NewGray(width, height)

	for it := 0; it < iterations; it++ {
		// Horizontal max.
		Parallel(height, func(start, end int) {
			for y := start; y < end; y++ {
				in := dst.Pix[y*width : (y+1)*width]
				out := tmp.Pix[y*width : (y+1)*width]
				for x := 0; x < width; x++ {
					var m uint8
					for dx := lo; dx <= hi; dx++ {
						sx := x + dx
						if sx < 0 || sx >= width {
							continue
						}
						if in[sx] > m {
							m = in[sx]
						}
					}
					out[x] = m
				}
			}
		})

		// Vertical max.
		Parallel(width, func(start, end int) {
			for x := start; x < end; x++ {
				for y := 0; y < height; y++ {
					var m uint8
					for dy := lo; dy <= hi; dy++ {
						sy := y + dy
						if sy < 0 || sy >= height {
							continue
						}
						if v := tmp.Pix[sy*width+x]; v > m {
							m = v
						}
					}
					dst.Pix[y*width+x] = m
				}
			}
		})
	}

	return dst
}
