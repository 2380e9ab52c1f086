package kernels

import (
	"github.com/nvr-ai/go-autopan/images"
)

// BoxRaster is the software backend with the Gaussian blur swapped for a
// sliding-window box blur of radius kernel/2.
type BoxRaster struct {
	images.Software

	pool Pool
}

// NewBoxRaster returns a BoxRaster with reflect-101 edges.
func NewBoxRaster() *BoxRaster {
	return &BoxRaster{Software: images.Software{Edge: images.Reflect101EdgeMode}}
}

// Blur applies a kernel×kernel box blur.
func (b *BoxRaster) Blur(g *images.Gray, kernel int) *images.Gray {
	edge := b.Edge
	if edge == "" {
		edge = images.Reflect101EdgeMode
	}
	// Only the intermediate buffer is recycled; the result belongs to the caller.
	return BoxBlur(g, Options{Radius: kernel / 2, Edge: edge, Pool: &b.pool, Parallel: true})
}
