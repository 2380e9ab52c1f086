package images

import (
	"image"
)

// BT.601 luma weights in 14-bit fixed point, the same coefficients OpenCV
// uses for COLOR_BGR2GRAY: 0.299 R + 0.587 G + 0.114 B.
const (
	lumaShift = 14
	lumaRed   = 4899
	lumaGreen = 9617
	lumaBlue  = 1868
	lumaRound = 1 << (lumaShift - 1)
)

func luma(r, g, b uint32) uint8 {
	return uint8((r*lumaRed + g*lumaGreen + b*lumaBlue + lumaRound) >> lumaShift)
}

// Luminance converts a frame to a single-channel luminance raster.
//
// Fast paths exist for the image types produced by the standard decoders
// (*image.YCbCr from JPEG, *image.RGBA / *image.NRGBA from PNG and WebP,
// *image.Gray). Any other image goes through the color.Color interface.
// Alpha is ignored: frames are treated as opaque.
//
// Arguments:
// - img: The frame to convert.
//
// Returns:
// - A new *Gray with the frame's dimensions.
//
// @example
// gray := Luminance(frame)
func Luminance(img image.Image) *Gray {
	b := img.Bounds()
	dst := NewGray(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		return FromImage(src)
	case *image.YCbCr:
		// JFIF luma is already the BT.601 weighted sum.
		Parallel(dst.Height, func(start, end int) {
			for y := start; y < end; y++ {
				row := dst.Pix[y*dst.Width : (y+1)*dst.Width]
				for x := range row {
					row[x] = src.Y[src.YOffset(b.Min.X+x, b.Min.Y+y)]
				}
			}
		})
	case *image.RGBA:
		Parallel(dst.Height, func(start, end int) {
			for y := start; y < end; y++ {
				row := dst.Pix[y*dst.Width : (y+1)*dst.Width]
				off := src.PixOffset(b.Min.X, b.Min.Y+y)
				for x := range row {
					p := src.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
					row[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
				}
			}
		})
	case *image.NRGBA:
		Parallel(dst.Height, func(start, end int) {
			for y := start; y < end; y++ {
				row := dst.Pix[y*dst.Width : (y+1)*dst.Width]
				off := src.PixOffset(b.Min.X, b.Min.Y+y)
				for x := range row {
					p := src.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
					row[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
				}
			}
		})
	default:
		Parallel(dst.Height, func(start, end int) {
			for y := start; y < end; y++ {
				row := dst.Pix[y*dst.Width : (y+1)*dst.Width]
				for x := range row {
					r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
					row[x] = luma(r>>8, g>>8, bl>>8)
				}
			}
		})
	}

	return dst
}
