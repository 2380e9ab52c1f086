package motion

import (
	"image"

	"github.com/nvr-ai/go-autopan/images"
)

// Raster is the set of image operations the detector is built from.
//
// images.Software is the default pure-Go backend, kernels.BoxRaster trades
// the Gaussian for a box blur, and opencv.Raster (withcv build tag) runs the
// same steps through OpenCV. Implementations must be safe for concurrent use.
type Raster interface {
	Luminance(img image.Image) *images.Gray
	Blur(g *images.Gray, kernel int) *images.Gray
	AbsDiff(a, b *images.Gray) (*images.Gray, error)
	Threshold(g *images.Gray, t uint8) *images.Gray
	Dilate(mask *images.Gray, kernel, iterations int) *images.Gray
	ConnectedComponents(mask *images.Gray) []images.Component
}
