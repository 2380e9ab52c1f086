// Package render - Visual output of a processed clip: annotated frames,
// viewport crops, still images, videos and the trajectory chart.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	// BoxColor outlines motion regions.
	BoxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// ViewportColor outlines the virtual camera.
	ViewportColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	// LabelColor is used for frame labels.
	LabelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	boxThickness      = 2
	viewportThickness = 3
)

// LabelOrigin is the baseline origin of frame labels.
var LabelOrigin = image.Pt(10, 30)

// toRGBA returns a fresh *image.RGBA copy of src with its origin at (0, 0).
func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// drawRect outlines the rectangle with corners p0 and p1 (both inclusive),
// the stroke centered on the edges. Pixels outside dst are skipped.
func drawRect(dst *image.RGBA, p0, p1 image.Point, c color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	lo := -(thickness / 2)
	hi := lo + thickness // exclusive

	fill := func(r image.Rectangle) {
		draw.Draw(dst, r.Intersect(dst.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
	// Top and bottom edges.
	fill(image.Rect(p0.X+lo, p0.Y+lo, p1.X+hi, p0.Y+hi))
	fill(image.Rect(p0.X+lo, p1.Y+lo, p1.X+hi, p1.Y+hi))
	// Left and right edges.
	fill(image.Rect(p0.X+lo, p0.Y+lo, p0.X+hi, p1.Y+hi))
	fill(image.Rect(p1.X+lo, p0.Y+lo, p1.X+hi, p1.Y+hi))
}

// drawLabel writes text with its baseline starting at origin.
func drawLabel(dst *image.RGBA, text string, origin image.Point) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(LabelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(text)
}
