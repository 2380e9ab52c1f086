package images

import (
	"image"
)

// Software is the pure-Go raster backend. The zero value blurs with
// Reflect101EdgeMode, OpenCV's default border handling.
type Software struct {
	// Edge selects how the blur samples outside the frame.
	Edge EdgeMode
}

// NewSoftware returns a Software backend with OpenCV-compatible edges.
func NewSoftware() *Software {
	return &Software{Edge: Reflect101EdgeMode}
}

func (s *Software) edge() EdgeMode {
	if s == nil || s.Edge == "" {
		return Reflect101EdgeMode
	}
	return s.Edge
}

// Luminance converts a frame to BT.601 luminance.
func (s *Software) Luminance(img image.Image) *Gray {
	return Luminance(img)
}

// Blur applies a kernel×kernel Gaussian blur.
func (s *Software) Blur(g *Gray, kernel int) *Gray {
	return GaussianBlur(g, kernel, s.edge())
}

// AbsDiff computes |a - b| per sample.
func (s *Software) AbsDiff(a, b *Gray) (*Gray, error) {
	return AbsDiff(a, b)
}

// Threshold binarizes g at t.
func (s *Software) Threshold(g *Gray, t uint8) *Gray {
	return Threshold(g, t)
}

// Dilate grows the mask with a kernel×kernel rectangle.
func (s *Software) Dilate(mask *Gray, kernel, iterations int) *Gray {
	return Dilate(mask, kernel, iterations)
}

// ConnectedComponents extracts external regions in scan order.
func (s *Software) ConnectedComponents(mask *Gray) []Component {
	return ConnectedComponents(mask)
}
